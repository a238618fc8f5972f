package session

import (
	"context"

	"ventifai/internal/repository"

	"github.com/google/uuid"
)

// FuenteUsuarios adapts the usuario repository into the authoritative session
// source, normalizing the stored record into the canonical Sesion shape at
// the boundary.
type FuenteUsuarios struct {
	repo repository.UsuarioRepository
}

func NewFuenteUsuarios(repo repository.UsuarioRepository) *FuenteUsuarios {
	return &FuenteUsuarios{repo: repo}
}

func (f *FuenteUsuarios) Obtener(ctx context.Context, usuarioID uuid.UUID) (*Sesion, error) {
	u, err := f.repo.FindByID(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	return &Sesion{
		UsuarioID:     u.ID,
		Rol:           u.Rol,
		NegocioID:     u.NegocioID,
		Email:         u.Email,
		Nombre:        u.Nombre,
		PrimerAcceso:  u.PrimerAcceso,
		PermisosExtra: u.Extra(),
	}, nil
}
