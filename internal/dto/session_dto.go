package dto

import "ventifai/internal/permisos"

// SessionInfo is the canonical session payload. The old front-end branched on
// aliased field names (nombre vs name, id vs userId); this is the single
// normalized shape everything receives now.
type SessionInfo struct {
	UserID        string                  `json:"userId"`
	Rol           string                  `json:"rol"`
	NegocioID     string                  `json:"negocioId"`
	Email         string                  `json:"email"`
	Nombre        string                  `json:"name"`
	PrimerAcceso  bool                    `json:"primerAcceso"`
	PermisosExtra *permisos.PermisosExtra `json:"permisosExtra,omitempty"`
}

// SessionResponse bundles the session with everything the front-end guard
// needs: the normalized role, the derived capability set, the allowed route
// prefixes, and the default landing route for redirects.
type SessionResponse struct {
	Session         SessionInfo       `json:"session"`
	RolNormalizado  permisos.Rol      `json:"rolNormalizado"`
	RolLabel        string            `json:"rolLabel"`
	Permisos        permisos.Permisos `json:"permisos"`
	RutasPermitidas []string          `json:"rutasPermitidas"`
	RutaDefault     string            `json:"rutaDefault"`
}
