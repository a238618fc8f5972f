package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"ventifai/internal/permisos"

	"github.com/google/uuid"
)

// Usuario stores system users scoped to a negocio.
// Rol is stored as free text ("dueño", "gerente", "cajero", "almacenista" or
// any synonym) and normalized through permisos.ResolverRol when consulted —
// the raw value is never trusted directly.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NegocioID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre       string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Rol          string    `gorm:"type:varchar(40);not null"`
	// PrimerAcceso forces a password change before the user can operate.
	PrimerAcceso bool `gorm:"not null;default:false"`
	// PermisosExtra is the temporary extra-module overlay, nil when none.
	PermisosExtra *PermisosExtraJSON `gorm:"type:jsonb"`
	Activo        bool               `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PermisosExtraJSON persists a permisos.PermisosExtra as a JSONB column.
type PermisosExtraJSON permisos.PermisosExtra

func (p PermisosExtraJSON) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PermisosExtraJSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		return nil
	default:
		return fmt.Errorf("permisos extra: unsupported scan type %T", src)
	}
}

// Extra returns the overlay in its domain form, nil when no modules are set.
func (u *Usuario) Extra() *permisos.PermisosExtra {
	if u.PermisosExtra == nil || len(u.PermisosExtra.Modulos) == 0 {
		return nil
	}
	e := permisos.PermisosExtra(*u.PermisosExtra)
	return &e
}
