package permisos

import "strings"

// Route prefixes of the dashboard front-end. Each one maps to exactly one
// navigation capability.
const (
	RutaInicio        = "/dashboard"
	RutaInventario    = "/dashboard/inventory"
	RutaPuntoVenta    = "/dashboard/pos"
	RutaCaja          = "/dashboard/caja"
	RutaReportes      = "/dashboard/reports"
	RutaConfiguracion = "/dashboard/settings"
)

// RutasPermitidas returns the route prefixes a capability set may reach.
func RutasPermitidas(p Permisos) []string {
	rutas := make([]string, 0, 6)
	if p.VerInicio {
		rutas = append(rutas, RutaInicio)
	}
	if p.VerInventario {
		rutas = append(rutas, RutaInventario)
	}
	if p.VerPuntoVenta {
		rutas = append(rutas, RutaPuntoVenta)
	}
	if p.VerCaja {
		rutas = append(rutas, RutaCaja)
	}
	if p.VerReportes {
		rutas = append(rutas, RutaReportes)
	}
	if p.VerConfiguracion {
		rutas = append(rutas, RutaConfiguracion)
	}
	return rutas
}

// PuedeAcceder reports whether ruta (query string ignored, case-insensitive)
// starts with one of the allowed prefixes. The home route only matches
// exactly; otherwise it would swallow every /dashboard/* sub-route and make
// the per-section flags irrelevant.
func PuedeAcceder(p Permisos, ruta string) bool {
	normalizada := strings.ToLower(strings.SplitN(ruta, "?", 2)[0])
	normalizada = strings.TrimSuffix(normalizada, "/")
	for _, prefijo := range RutasPermitidas(p) {
		if prefijo == RutaInicio {
			if normalizada == RutaInicio {
				return true
			}
			continue
		}
		if strings.HasPrefix(normalizada, strings.ToLower(prefijo)) {
			return true
		}
	}
	return false
}

// RutaDefault is where the access guard lands a user whose requested route is
// not allowed. It is always a route the role itself can reach, so a denied
// navigation never bounces to another denied one.
func RutaDefault(rol Rol) string {
	switch rol {
	case RolCajero:
		return RutaPuntoVenta
	case RolAlmacenista:
		return RutaInventario
	default:
		return RutaInicio
	}
}
