// Package catalog - Catalog document loading
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"panelquote/internal/errors"
)

// Format identifies a catalog document encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// document is the wire shape of a catalog document, keyed by SKU
type document struct {
	Version  string                   `json:"version" yaml:"version"`
	Products map[string]documentEntry `json:"products" yaml:"products"`
}

type documentEntry struct {
	SKU            string                   `json:"sku,omitempty" yaml:"sku,omitempty"`
	Name           string                   `json:"name" yaml:"name"`
	Family         string                   `json:"family" yaml:"family"`
	Type           string                   `json:"type" yaml:"type"`
	ThicknessMM    *int                     `json:"thickness_mm,omitempty" yaml:"thickness_mm,omitempty"`
	Insulation     string                   `json:"insulation,omitempty" yaml:"insulation,omitempty"`
	UsefulWidthM   decimalString            `json:"useful_width_m,omitempty" yaml:"useful_width_m,omitempty"`
	Prices         map[string]decimalString `json:"prices" yaml:"prices"`
	StockStatus    string                   `json:"stock_status,omitempty" yaml:"stock_status,omitempty"`
	ProductionMode string                   `json:"production_mode,omitempty" yaml:"production_mode,omitempty"`
}

// decimalString captures a monetary or dimensional value as the literal
// digits written in the document. Prices never pass through binary
// floating point on the way to decimal.Decimal.
type decimalString string

func (d *decimalString) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*d = decimalString(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = decimalString(s)
	return nil
}

func (d *decimalString) UnmarshalYAML(node *yaml.Node) error {
	*d = decimalString(node.Value)
	return nil
}

func (d decimalString) decimal() (decimal.Decimal, error) {
	if d == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(string(d))
}

// Load reads a catalog document and builds an immutable snapshot.
// Any structurally invalid entry fails the whole load with an integrity
// error; a bad entry is never skipped.
func Load(r io.Reader, format Format) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.TypeIntegrity, "reading catalog document", err)
	}

	var doc document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.TypeIntegrity, "parsing catalog json", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.TypeIntegrity, "parsing catalog yaml", err)
		}
	default:
		return nil, errors.Integrity(fmt.Sprintf("unsupported catalog format %q", format))
	}

	if len(doc.Products) == 0 {
		return nil, errors.Integrity("catalog document has no products")
	}

	entries := make([]Entry, 0, len(doc.Products))
	for sku, de := range doc.Products {
		if de.SKU != "" && de.SKU != sku {
			return nil, errors.Integrity(fmt.Sprintf("entry keyed %q declares conflicting sku %q", sku, de.SKU)).
				WithContext("key", sku).
				WithContext("sku", de.SKU)
		}
		entry, err := entryFromDocument(sku, de)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return NewSnapshot(doc.Version, entries)
}

// LoadFile loads a catalog document from disk, inferring the format from
// the file extension
func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeIntegrity, "opening catalog document", err)
	}
	defer f.Close()

	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}
	return Load(f, format)
}

func entryFromDocument(sku string, de documentEntry) (Entry, error) {
	prices := make(map[Channel]decimal.Decimal, len(de.Prices))
	for ch, p := range de.Prices {
		price, err := p.decimal()
		if err != nil {
			return Entry{}, errors.Integrity(fmt.Sprintf("entry %s has malformed %s price %q", sku, ch, p)).
				WithContext("sku", sku).
				WithContext("channel", ch)
		}
		prices[Channel(ch)] = price
	}

	width, err := de.UsefulWidthM.decimal()
	if err != nil {
		return Entry{}, errors.Integrity(fmt.Sprintf("entry %s has malformed useful width %q", sku, de.UsefulWidthM)).
			WithContext("sku", sku)
	}

	status := StockStatus(de.StockStatus)
	if status == "" {
		status = StockUnknown
	}
	mode := ProductionMode(de.ProductionMode)
	if mode == "" {
		mode = ProductionStock
	}

	return Entry{
		SKU:            sku,
		Name:           de.Name,
		Family:         de.Family,
		Type:           ItemType(de.Type),
		ThicknessMM:    de.ThicknessMM,
		InsulationType: de.Insulation,
		UsefulWidthM:   width,
		Prices:         prices,
		StockStatus:    status,
		ProductionMode: mode,
	}, nil
}
