package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Import records one validated import file. ID is the file's SHA-256
// fingerprint, so importing the same bytes twice collides in the store.
type Import struct {
	ID             string
	Filename       string
	PlatformID     string
	GenerationDate time.Time // from the workbook, UTC
}

// Transaction is one parsed investment transaction row.
type Transaction struct {
	ID             int64 // zero until persisted
	ExecutionTime  time.Time
	TickerSymbol   string
	UnitQuantity   decimal.Decimal
	CostPerUnit    decimal.Decimal
	CurrencySymbol string
	AccountID      string
	ImportID       string
}

// TotalCost returns quantity multiplied by unit cost.
func (t Transaction) TotalCost() decimal.Decimal {
	return t.UnitQuantity.Mul(t.CostPerUnit)
}
