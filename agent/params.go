// Package agent - Parameter coercion
package agent

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"panelquote/internal/errors"
)

// scalar reports whether a value is an acceptable flat parameter type
func scalar(v interface{}) bool {
	switch v.(type) {
	case nil, string, bool, int, int64, float64, json.Number:
		return true
	default:
		return false
	}
}

// checkFlat rejects nested objects and arrays in tool parameters
func checkFlat(p Params) error {
	for name, v := range p {
		if !scalar(v) {
			return errors.ParameterOutOfRange(name, fmt.Sprintf("%T", v),
				"tool parameters must be flat scalars")
		}
	}
	return nil
}

func (p Params) str(name string) string {
	if v, ok := p[name].(string); ok {
		return v
	}
	return ""
}

func (p Params) boolean(name string) bool {
	if v, ok := p[name].(bool); ok {
		return v
	}
	return false
}

// integer coerces a parameter to int. JSON decodes numbers as float64 or
// json.Number depending on the decoder; both must round-trip losslessly.
func (p Params) integer(name string) (int, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, errors.ParameterOutOfRange(name, n, "must be an integer")
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, errors.ParameterOutOfRange(name, n.String(), "must be an integer")
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, errors.ParameterOutOfRange(name, n, "must be an integer")
		}
		return i, nil
	default:
		return 0, errors.ParameterOutOfRange(name, fmt.Sprintf("%T", v), "must be an integer")
	}
}

// number coerces a parameter to an exact decimal. String and json.Number
// inputs keep their exact decimal digits; float64 is accepted for
// convenience at the boundary only.
func (p Params) number(name string) (decimal.Decimal, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return decimal.Zero, nil
	}
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, errors.ParameterOutOfRange(name, n, "must be a decimal number")
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, errors.ParameterOutOfRange(name, n.String(), "must be a decimal number")
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	default:
		return decimal.Zero, errors.ParameterOutOfRange(name, fmt.Sprintf("%T", v), "must be a decimal number")
	}
}
