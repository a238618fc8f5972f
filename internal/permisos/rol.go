// Package permisos implements the role/permission model: role normalization,
// per-role capability tables, the temporary extra-module overlay, and the
// route access policy derived from a capability set.
//
// Everything in this package is pure — no I/O, no hidden state. Permissions
// are always recomputed from the session; they are never cached or persisted.
package permisos

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rol is the closed set of base roles. The raw role string stored in the
// backend is free text — ResolverRol normalizes it into one of these.
type Rol string

const (
	RolDueno       Rol = "dueno"
	RolGerente     Rol = "gerente"
	RolCajero      Rol = "cajero"
	RolAlmacenista Rol = "almacenista"
)

// Label returns the display name for a role.
func (r Rol) Label() string {
	switch r {
	case RolDueno:
		return "Dueño"
	case RolGerente:
		return "Gerente"
	case RolCajero:
		return "Cajero"
	case RolAlmacenista:
		return "Almacenista"
	default:
		return "Usuario"
	}
}

// EsAdmin reports whether the role has administrative reach (dueño or gerente).
func (r Rol) EsAdmin() bool {
	return r == RolDueno || r == RolGerente
}

// sinAcentos removes combining marks after NFD decomposition, so "dueño"
// becomes "dueno" and "gerenté" becomes "gerente".
var sinAcentos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ResolverRol normalizes a free-text role string into a Rol. Matching is
// case- and accent-insensitive and checks substrings in priority order:
// dueño first, almacenista last. Unrecognized values fall back to cajero,
// the least-privileged role that can still operate the till.
func ResolverRol(raw string) Rol {
	normalizado, _, err := transform.String(sinAcentos, strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		normalizado = strings.ToLower(raw)
	}

	contieneAlguno := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(normalizado, s) {
				return true
			}
		}
		return false
	}

	switch {
	case contieneAlguno("dueno", "owner", "admin"):
		return RolDueno
	case contieneAlguno("gerente", "manager"):
		return RolGerente
	case contieneAlguno("cajero", "cashier"):
		return RolCajero
	case contieneAlguno("almacen", "bodega", "warehouse"):
		return RolAlmacenista
	default:
		return RolCajero
	}
}
