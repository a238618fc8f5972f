package permisos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolverRolDueno(t *testing.T) {
	for _, raw := range []string{"dueño", "DUEÑO", "Dueno", "  dueño del local ", "owner", "Admin", "administrador"} {
		assert.Equal(t, RolDueno, ResolverRol(raw), "raw=%q", raw)
	}
}

func TestResolverRolGerente(t *testing.T) {
	for _, raw := range []string{"gerente", "Gerente general", "manager", "GERENTÉ"} {
		assert.Equal(t, RolGerente, ResolverRol(raw), "raw=%q", raw)
	}
}

func TestResolverRolCajero(t *testing.T) {
	for _, raw := range []string{"cajero", "Cajera", "cashier"} {
		assert.Equal(t, RolCajero, ResolverRol(raw), "raw=%q", raw)
	}
}

func TestResolverRolAlmacenista(t *testing.T) {
	for _, raw := range []string{"almacenista", "Almacén", "bodega", "warehouse staff"} {
		assert.Equal(t, RolAlmacenista, ResolverRol(raw), "raw=%q", raw)
	}
}

func TestResolverRolDesconocidoCaeACajero(t *testing.T) {
	for _, raw := range []string{"", "vendedor", "qa", "  "} {
		assert.Equal(t, RolCajero, ResolverRol(raw), "raw=%q", raw)
	}
}

// "dueño" takes priority even when another role name also appears.
func TestResolverRolPrioridad(t *testing.T) {
	assert.Equal(t, RolDueno, ResolverRol("dueño y cajero"))
	assert.Equal(t, RolGerente, ResolverRol("gerente de almacén"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Dueño", RolDueno.Label())
	assert.Equal(t, "Almacenista", RolAlmacenista.Label())
	assert.Equal(t, "Usuario", Rol("otro").Label())
}

func TestEsAdmin(t *testing.T) {
	assert.True(t, RolDueno.EsAdmin())
	assert.True(t, RolGerente.EsAdmin())
	assert.False(t, RolCajero.EsAdmin())
	assert.False(t, RolAlmacenista.EsAdmin())
}
