// Package session owns the authenticated-session state: one canonical Sesion
// per user, cached in memory, reconciled against the authoritative store with
// a persisted fallback snapshot for transient failures.
package session

import (
	"errors"

	"ventifai/internal/permisos"

	"github.com/google/uuid"
)

// ErrSesionNoDisponible is returned when neither the authoritative source nor
// the fallback snapshot can produce a valid session. The caller must re-login.
var ErrSesionNoDisponible = errors.New("sesión no disponible")

// Sesion is the canonical record of an authenticated actor. It is either
// fully present (all identity fields populated) or absent — a partial record
// is invalid and gets discarded, never served.
type Sesion struct {
	UsuarioID     uuid.UUID               `json:"usuarioId"`
	Rol           string                  `json:"rol"`
	NegocioID     uuid.UUID               `json:"negocioId"`
	Email         string                  `json:"email"`
	Nombre        string                  `json:"nombre"`
	PrimerAcceso  bool                    `json:"primerAcceso"`
	PermisosExtra *permisos.PermisosExtra `json:"permisosExtra,omitempty"`
}

// Valida reports whether every identity field is populated.
func (s *Sesion) Valida() bool {
	return s != nil &&
		s.UsuarioID != uuid.Nil &&
		s.NegocioID != uuid.Nil &&
		s.Rol != "" &&
		s.Email != "" &&
		s.Nombre != ""
}

// clonar returns an independent copy so readers can never mutate the
// manager-owned record in place.
func (s *Sesion) clonar() *Sesion {
	if s == nil {
		return nil
	}
	c := *s
	if s.PermisosExtra != nil {
		extra := *s.PermisosExtra
		extra.Modulos = append([]permisos.ModuloExtra(nil), s.PermisosExtra.Modulos...)
		c.PermisosExtra = &extra
	}
	return &c
}

// Rol normalizado y permisos efectivos de la sesión.

func (s *Sesion) RolNormalizado() permisos.Rol {
	return permisos.ResolverRol(s.Rol)
}

func (s *Sesion) Permisos() permisos.Permisos {
	return permisos.Combinar(s.RolNormalizado(), s.PermisosExtra)
}
