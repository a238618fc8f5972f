package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Caja represents one open/close cycle of a physical till.
// At most one open caja exists per negocio at a time; once closed the record
// becomes read-only history and a new cycle starts a fresh row.
type Caja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NegocioID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MontoCierre is fixed on close; nil while the caja is open.
	MontoCierre *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Abierta     bool             `gorm:"not null;default:true"`
	Resumen     *string
	OpenedAt    time.Time
	ClosedAt    *time.Time

	Movimientos []MovimientoCaja `gorm:"foreignKey:CajaID"`
}

// MovimientoCaja is an immutable entry in the cash ledger.
// Tipo: "entrada" | "salida". Movements are never updated or deleted.
type MovimientoCaja struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo        string          `gorm:"type:varchar(10);not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Categoria   string          `gorm:"not null"`
	Descripcion *string
	MetodoPago  string `gorm:"type:varchar(20);not null;default:'Efectivo'"`
	Referencia  *string
	CreatedAt   time.Time
}
