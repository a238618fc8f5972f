package permisos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRutasPermitidasDueno(t *testing.T) {
	rutas := RutasPermitidas(PorRol(RolDueno))
	assert.Equal(t, []string{
		RutaInicio, RutaInventario, RutaPuntoVenta,
		RutaCaja, RutaReportes, RutaConfiguracion,
	}, rutas)
}

func TestRutasPermitidasCajero(t *testing.T) {
	rutas := RutasPermitidas(PorRol(RolCajero))
	assert.Contains(t, rutas, RutaPuntoVenta)
	assert.Contains(t, rutas, RutaCaja)
	assert.NotContains(t, rutas, RutaInventario)
	assert.NotContains(t, rutas, RutaConfiguracion)
}

func TestPuedeAccederCajero(t *testing.T) {
	caps := PorRol(RolCajero)

	assert.True(t, PuedeAcceder(caps, "/dashboard/pos"))
	assert.True(t, PuedeAcceder(caps, "/dashboard/caja/movimientos"))
	assert.True(t, PuedeAcceder(caps, "/dashboard"))

	// Tener inicio no abre el resto del dashboard.
	assert.False(t, PuedeAcceder(caps, "/dashboard/inventory"))
	assert.False(t, PuedeAcceder(caps, "/dashboard/settings"))
}

func TestPuedeAccederIgnoraQueryYMayusculas(t *testing.T) {
	caps := PorRol(RolCajero)
	assert.True(t, PuedeAcceder(caps, "/Dashboard/POS?ticket=42"))
	assert.False(t, PuedeAcceder(caps, "/DASHBOARD/INVENTORY?page=1"))
}

func TestPuedeAccederConExtras(t *testing.T) {
	caps := Combinar(RolCajero, &PermisosExtra{Modulos: []ModuloExtra{ModuloInventario}})
	assert.True(t, PuedeAcceder(caps, "/dashboard/inventory"))
}

func TestPuedeAccederRutaAjena(t *testing.T) {
	caps := PorRol(RolDueno)
	assert.False(t, PuedeAcceder(caps, "/otro"))
	assert.False(t, PuedeAcceder(caps, ""))
}

func TestRutaDefault(t *testing.T) {
	assert.Equal(t, RutaPuntoVenta, RutaDefault(RolCajero))
	assert.Equal(t, RutaInventario, RutaDefault(RolAlmacenista))
	assert.Equal(t, RutaInicio, RutaDefault(RolDueno))
	assert.Equal(t, RutaInicio, RutaDefault(RolGerente))
}

// La ruta default de cada rol siempre es accesible para ese mismo rol.
func TestRutaDefaultSiempreAccesible(t *testing.T) {
	for _, rol := range []Rol{RolDueno, RolGerente, RolCajero, RolAlmacenista} {
		assert.True(t, PuedeAcceder(PorRol(rol), RutaDefault(rol)), "rol=%s", rol)
	}
}
