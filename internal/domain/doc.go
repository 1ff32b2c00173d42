// Package domain holds the typed schemas exchanged with the school platform
// API and served by feedesk.
package domain

import "github.com/shopspring/decimal"

func init() {
	// Amounts travel as JSON numbers in both directions.
	decimal.MarshalJSONWithoutQuotes = true
}
