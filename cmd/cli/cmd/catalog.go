package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"panelquote/core/catalog"
	"panelquote/core/validate"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog maintenance commands",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check a catalog document for integrity problems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := catalog.LoadFile(args[0])
		if err != nil {
			// structural problems fail the load itself
			return err
		}

		report := validate.CatalogIntegrity(snap)
		if err := printJSON(report); err != nil {
			return err
		}
		if !report.Valid {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "catalog %s: %d entries, %d warning(s)\n",
			snap.Version(), len(snap.Entries()), len(report.Warnings))
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list <path>",
	Short: "List the entries of a catalog document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}
		for _, entry := range snap.Entries() {
			thickness := "-"
			if entry.ThicknessMM != nil {
				thickness = fmt.Sprintf("%dmm", *entry.ThicknessMM)
			}
			fmt.Printf("%-20s %-10s %-8s %s\n", entry.SKU, entry.Type, thickness, entry.Name)
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogListCmd)
}
