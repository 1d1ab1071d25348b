package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign agrupa leads por origen de pauta (ej. "Digital Campaign Q1").
// Budget y Spend en moneda local; el análisis de gasto detallado vive fuera del motor.
type Campaign struct {
	ID        string
	Name      string
	Channel   string
	Budget    decimal.Decimal
	Spend     decimal.Decimal
	Active    bool
	CreatedAt time.Time
}
