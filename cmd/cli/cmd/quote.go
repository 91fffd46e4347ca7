package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"panelquote/core/catalog"
	"panelquote/core/lookup"
	"panelquote/core/quote"
	"panelquote/core/rules"
	"panelquote/core/validate"
	"panelquote/internal/config"
)

var (
	quoteFamily     string
	quoteThickness  int
	quoteInsulation string
	quoteLength     string
	quoteWidth      string
	quoteQuantity   int
	quoteArea       string
	quoteDiscount   string
	quoteChannel    string
	quoteStructure  string
	quoteRidge      bool
	quoteSpan       string
	catalogPath     string
	rulesPath       string
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Produce a deterministic quotation",
}

var quotePanelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Quote panels only",
	RunE: func(cmd *cobra.Command, args []string) error {
		calc, _, err := buildCalculator()
		if err != nil {
			return err
		}

		length, err := parseDecimalFlag("length", quoteLength)
		if err != nil {
			return err
		}
		width, err := parseDecimalFlag("width", quoteWidth)
		if err != nil {
			return err
		}
		discount, err := parseDecimalFlag("discount", quoteDiscount)
		if err != nil {
			return err
		}

		result, err := calc.PanelQuote(quote.PanelQuoteParams{
			Family:          quoteFamily,
			ThicknessMM:     quoteThickness,
			LengthM:         length,
			WidthM:          width,
			Quantity:        quoteQuantity,
			DiscountPercent: discount,
			Channel:         catalog.Channel(quoteChannel),
			InsulationType:  quoteInsulation,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var quoteCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Quote panels, trim and fasteners for a total area",
	RunE: func(cmd *cobra.Command, args []string) error {
		calc, _, err := buildCalculator()
		if err != nil {
			return err
		}

		length, err := parseDecimalFlag("length", quoteLength)
		if err != nil {
			return err
		}
		area, err := parseDecimalFlag("area", quoteArea)
		if err != nil {
			return err
		}
		discount, err := parseDecimalFlag("discount", quoteDiscount)
		if err != nil {
			return err
		}
		span, err := parseDecimalFlag("span", quoteSpan)
		if err != nil {
			return err
		}

		result, err := calc.CompleteQuotation(quote.CompleteQuotationParams{
			Family:          quoteFamily,
			ThicknessMM:     quoteThickness,
			PanelLengthM:    length,
			TotalAreaM2:     area,
			DiscountPercent: discount,
			Channel:         catalog.Channel(quoteChannel),
			InsulationType:  quoteInsulation,
			StructureType:   quote.StructureType(quoteStructure),
			IncludeRidge:    quoteRidge,
			MaxSpanM:        span,
		})
		if err != nil {
			return err
		}

		// Always run the independent validator over what we are about to
		// print; a failed report means the result must not be trusted.
		report := validate.Quotation(result)
		if !report.Valid {
			fmt.Fprintf(os.Stderr, "VALIDATION FAILED: %v\n", report.Errors)
			os.Exit(1)
		}
		for _, warning := range report.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
		}
		return printJSON(result)
	},
}

// buildCalculator loads the catalog and rules documents from flags or
// the active configuration
func buildCalculator() (*quote.Calculator, *catalog.Store, error) {
	cfg := config.Get()

	path := catalogPath
	if path == "" {
		path = cfg.Catalog.Path
	}
	snap, err := catalog.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	store := catalog.NewStore(snap)

	doc := rules.DefaultDocument()
	rp := rulesPath
	if rp == "" {
		rp = cfg.Rules
	}
	if rp != "" {
		if loaded, err := rules.LoadDocument(rp); err == nil {
			doc = loaded
		} else if rulesPath != "" {
			// an explicitly named rules file must load
			return nil, nil, err
		}
	}
	engine, err := rules.NewEngine(doc)
	if err != nil {
		return nil, nil, err
	}

	return quote.NewCalculator(lookup.NewService(store), engine), store, nil
}

func parseDecimalFlag(name, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("flag --%s: %q is not a decimal number", name, value)
	}
	return d, nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	for _, c := range []*cobra.Command{quotePanelCmd, quoteCompleteCmd} {
		c.Flags().StringVar(&quoteFamily, "family", "", "panel family (e.g. Isodec)")
		c.Flags().IntVar(&quoteThickness, "thickness", 0, "panel thickness in mm")
		c.Flags().StringVar(&quoteInsulation, "insulation", "", "insulation type (optional)")
		c.Flags().StringVar(&quoteLength, "length", "", "panel length in meters")
		c.Flags().StringVar(&quoteDiscount, "discount", "", "discount percent")
		c.Flags().StringVar(&quoteChannel, "channel", "business", "pricing channel: business, retail or web")
		c.Flags().StringVar(&catalogPath, "catalog", "", "catalog document path")
		c.Flags().StringVar(&rulesPath, "rules", "", "pricing-rules document path (HCL)")
	}

	quotePanelCmd.Flags().StringVar(&quoteWidth, "width", "", "panel width in meters (defaults to catalog useful width)")
	quotePanelCmd.Flags().IntVar(&quoteQuantity, "quantity", 1, "number of panels")

	quoteCompleteCmd.Flags().StringVar(&quoteArea, "area", "", "total area to cover in m2")
	quoteCompleteCmd.Flags().StringVar(&quoteStructure, "structure", "metal", "structure type: metal or concrete")
	quoteCompleteCmd.Flags().BoolVar(&quoteRidge, "ridge", false, "include ridge trim")
	quoteCompleteCmd.Flags().StringVar(&quoteSpan, "span", "", "max unsupported span in meters")

	quoteCmd.AddCommand(quotePanelCmd)
	quoteCmd.AddCommand(quoteCompleteCmd)
}
