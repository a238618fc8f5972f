package repository

import (
	"context"

	"ventifai/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NegocioRepository interface {
	Create(ctx context.Context, n *model.Negocio) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Negocio, error)
	Update(ctx context.Context, n *model.Negocio) error
}

type negocioRepo struct{ db *gorm.DB }

func NewNegocioRepository(db *gorm.DB) NegocioRepository { return &negocioRepo{db: db} }

func (r *negocioRepo) Create(ctx context.Context, n *model.Negocio) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *negocioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Negocio, error) {
	var n model.Negocio
	err := r.db.WithContext(ctx).First(&n, id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *negocioRepo) Update(ctx context.Context, n *model.Negocio) error {
	return r.db.WithContext(ctx).Save(n).Error
}
