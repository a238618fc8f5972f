package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoInicial decimal.Decimal `json:"montoInicial" validate:"required"`
}

type CerrarCajaRequest struct {
	ID          string           `json:"id"          validate:"required,uuid"`
	MontoCierre *decimal.Decimal `json:"montoCierre"`
	Resumen     *string          `json:"resumen"`
}

type MovimientoRequest struct {
	Tipo        string          `json:"tipo"        validate:"required,oneof=entrada salida"`
	Monto       decimal.Decimal `json:"monto"       validate:"required"`
	Categoria   string          `json:"categoria"   validate:"required,min=2"`
	Descripcion *string         `json:"descripcion"`
	MetodoPago  string          `json:"metodoPago"  validate:"required,oneof=Efectivo Transferencia Cheque Tarjeta"`
	Referencia  *string         `json:"referencia"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CajaResponse struct {
	ID           string           `json:"id"`
	NegocioID    string           `json:"negocioId"`
	UsuarioID    string           `json:"usuarioId"`
	MontoInicial decimal.Decimal  `json:"montoInicial"`
	MontoCierre  *decimal.Decimal `json:"montoCierre"`
	Saldo        decimal.Decimal  `json:"saldo"`
	Abierta      bool             `json:"abierta"`
	Resumen      *string          `json:"resumen"`
	OpenedAt     string           `json:"openedAt"`
	ClosedAt     *string          `json:"closedAt"`
}

// EstadoCajaResponse mirrors what the POS components subscribe to:
// whether a caja is open for the negocio and, if so, its snapshot.
type EstadoCajaResponse struct {
	Abierta bool          `json:"abierta"`
	Caja    *CajaResponse `json:"caja"`
}

type MovimientoResponse struct {
	ID          string          `json:"id"`
	Tipo        string          `json:"tipo"`
	Monto       decimal.Decimal `json:"monto"`
	Categoria   string          `json:"categoria"`
	Descripcion *string         `json:"descripcion"`
	MetodoPago  string          `json:"metodoPago"`
	Referencia  *string         `json:"referencia"`
	CreatedAt   string          `json:"createdAt"`
}

type ResumenCajaResponse struct {
	MontoInicial   decimal.Decimal `json:"montoInicial"`
	TotalEntradas  decimal.Decimal `json:"totalEntradas"`
	TotalSalidas   decimal.Decimal `json:"totalSalidas"`
	Saldo          decimal.Decimal `json:"saldo"`
	NumMovimientos int             `json:"numMovimientos"`
}
