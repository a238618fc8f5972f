package repository

import (
	"context"
	"time"

	"ventifai/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaRepository interface {
	Create(ctx context.Context, c *model.Caja) error
	FindAbiertaPorNegocio(ctx context.Context, negocioID uuid.UUID) (*model.Caja, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	Update(ctx context.Context, c *model.Caja) error
	CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error
	ListMovimientos(ctx context.Context, cajaID uuid.UUID, desde, hasta *time.Time, tipo string) ([]model.MovimientoCaja, error)
	SumMovimientosPorTipo(ctx context.Context, cajaID uuid.UUID) (map[string]decimal.Decimal, error)
	ListCerradasPorNegocio(ctx context.Context, negocioID uuid.UUID, page, limit int) ([]model.Caja, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) Create(ctx context.Context, c *model.Caja) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cajaRepo) FindAbiertaPorNegocio(ctx context.Context, negocioID uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).
		Where("negocio_id = ? AND abierta = true", negocioID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).Preload("Movimientos").First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cajaRepo) Update(ctx context.Context, c *model.Caja) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *cajaRepo) CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, cajaID uuid.UUID, desde, hasta *time.Time, tipo string) ([]model.MovimientoCaja, error) {
	q := r.db.WithContext(ctx).Where("caja_id = ?", cajaID)
	if desde != nil {
		q = q.Where("created_at >= ?", *desde)
	}
	if hasta != nil {
		q = q.Where("created_at <= ?", *hasta)
	}
	if tipo != "" {
		q = q.Where("tipo = ?", tipo)
	}
	var movs []model.MovimientoCaja
	err := q.Order("created_at ASC").Find(&movs).Error
	return movs, err
}

// SumMovimientosPorTipo returns SUM(monto) grouped by tipo ("entrada"/"salida").
func (r *cajaRepo) SumMovimientosPorTipo(ctx context.Context, cajaID uuid.UUID) (map[string]decimal.Decimal, error) {
	var rows []struct {
		Tipo  string
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).
		Select("tipo, COALESCE(SUM(monto), 0) AS total").
		Where("caja_id = ?", cajaID).
		Group("tipo").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := map[string]decimal.Decimal{
		"entrada": decimal.Zero,
		"salida":  decimal.Zero,
	}
	for _, row := range rows {
		sums[row.Tipo] = row.Total
	}
	return sums, nil
}

func (r *cajaRepo) ListCerradasPorNegocio(ctx context.Context, negocioID uuid.UUID, page, limit int) ([]model.Caja, error) {
	var cajas []model.Caja
	err := r.db.WithContext(ctx).
		Where("negocio_id = ? AND abierta = false", negocioID).
		Order("closed_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&cajas).Error
	return cajas, err
}
