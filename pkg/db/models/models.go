package models

import "github.com/shopspring/decimal"

func init() {
	// Monetary values go over the wire as bare JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}
