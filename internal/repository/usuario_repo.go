package repository

import (
	"context"

	"ventifai/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	FindByEmail(ctx context.Context, email string) (*model.Usuario, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
	ListByNegocio(ctx context.Context, negocioID uuid.UUID) ([]model.Usuario, error)
	Update(ctx context.Context, u *model.Usuario) error
	SetPermisosExtra(ctx context.Context, id uuid.UUID, extra *model.PermisosExtraJSON) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *usuarioRepo) FindByEmail(ctx context.Context, email string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND activo = true", email).
		First(&u).Error
	return &u, err
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).First(&u, id).Error
	return &u, err
}

func (r *usuarioRepo) ListByNegocio(ctx context.Context, negocioID uuid.UUID) ([]model.Usuario, error) {
	var users []model.Usuario
	err := r.db.WithContext(ctx).
		Where("negocio_id = ? AND activo = true", negocioID).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

func (r *usuarioRepo) Update(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// SetPermisosExtra writes only the overlay column; nil clears it.
func (r *usuarioRepo) SetPermisosExtra(ctx context.Context, id uuid.UUID, extra *model.PermisosExtraJSON) error {
	return r.db.WithContext(ctx).Model(&model.Usuario{}).
		Where("id = ?", id).
		Update("permisos_extra", extra).Error
}

func (r *usuarioRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Usuario{}).
		Where("id = ?", id).
		Update("activo", false).Error
}
