package permisos

import "time"

// ModuloExtra identifies a module that can be granted on top of the base role.
type ModuloExtra string

const (
	ModuloInventario ModuloExtra = "inventario"
	ModuloPOS        ModuloExtra = "pos"
	ModuloCaja       ModuloExtra = "caja"
	ModuloReportes   ModuloExtra = "reportes"
)

// ModulosValidos lists every assignable extra module.
var ModulosValidos = []ModuloExtra{ModuloInventario, ModuloPOS, ModuloCaja, ModuloReportes}

// EsModuloValido reports whether m is one of the assignable modules.
func EsModuloValido(m ModuloExtra) bool {
	for _, v := range ModulosValidos {
		if m == v {
			return true
		}
	}
	return false
}

// PermisosExtra is a temporary, role-independent overlay assigned by a dueño
// or gerente. It carries audit fields but no expiry of its own — it is
// cleared explicitly through the employee admin endpoints.
type PermisosExtra struct {
	Modulos         []ModuloExtra `json:"modulos"`
	AsignadoPor     string        `json:"asignadoPor,omitempty"`
	FechaAsignacion time.Time     `json:"fechaAsignacion,omitempty"`
	Nota            string        `json:"nota,omitempty"`
}

// Permisos is the full capability set. It is always fully populated — there
// is no partial set — and always derived from a role via PorRol/Combinar,
// never stored.
type Permisos struct {
	// Navegación
	VerInicio        bool `json:"verInicio"`
	VerInventario    bool `json:"verInventario"`
	VerPuntoVenta    bool `json:"verPuntoVenta"`
	VerCaja          bool `json:"verCaja"`
	VerReportes      bool `json:"verReportes"`
	VerConfiguracion bool `json:"verConfiguracion"`

	// Inventario
	AgregarProducto  bool `json:"agregarProducto"`
	EditarProducto   bool `json:"editarProducto"`
	EliminarProducto bool `json:"eliminarProducto"`
	AplicarDescuento bool `json:"aplicarDescuento"`
	RegistrarMerma   bool `json:"registrarMerma"`
	VerTodoInventario bool `json:"verTodoInventario"`

	// Punto de venta
	RealizarVenta         bool `json:"realizarVenta"`
	AplicarDescuentoVenta bool `json:"aplicarDescuentoVenta"`
	ImprimirTicket        bool `json:"imprimirTicket"`

	// Caja
	AbrirCaja          bool `json:"abrirCaja"`
	CerrarCaja         bool `json:"cerrarCaja"`
	VerMovimientosCaja bool `json:"verMovimientosCaja"`

	// Reportes
	VerReportesGlobales bool `json:"verReportesGlobales"`
	VerReportesPropios  bool `json:"verReportesPropios"`
	ReportesSoloHoy     bool `json:"reportesSoloHoy"`

	// Usuarios
	VerUsuarios      bool `json:"verUsuarios"`
	CrearUsuarios    bool `json:"crearUsuarios"`
	EditarUsuarios   bool `json:"editarUsuarios"`
	EliminarUsuarios bool `json:"eliminarUsuarios"`

	// Configuración del negocio
	EditarNombreNegocio bool `json:"editarNombreNegocio"`
	EditarConfiguracion bool `json:"editarConfiguracion"`

	// Descuentos masivos
	AplicarDescuentosMasivos bool `json:"aplicarDescuentosMasivos"`
}

// PorRol returns the fixed base capability table for a role.
func PorRol(rol Rol) Permisos {
	switch rol {
	case RolDueno:
		// Control total de todos los apartados.
		return Permisos{
			VerInicio: true, VerInventario: true, VerPuntoVenta: true,
			VerCaja: true, VerReportes: true, VerConfiguracion: true,

			AgregarProducto: true, EditarProducto: true, EliminarProducto: true,
			AplicarDescuento: true, RegistrarMerma: true, VerTodoInventario: true,

			RealizarVenta: true, AplicarDescuentoVenta: true, ImprimirTicket: true,

			AbrirCaja: true, CerrarCaja: true, VerMovimientosCaja: true,

			VerReportesGlobales: true, VerReportesPropios: true, ReportesSoloHoy: false,

			VerUsuarios: true, CrearUsuarios: true, EditarUsuarios: true, EliminarUsuarios: true,

			EditarNombreNegocio: true, EditarConfiguracion: true,

			AplicarDescuentosMasivos: true,
		}

	case RolGerente:
		// Igual que dueño, pero no puede editar el nombre del negocio.
		p := PorRol(RolDueno)
		p.EditarNombreNegocio = false
		return p

	case RolAlmacenista:
		// Solo inventario y mermas.
		return Permisos{
			VerInicio: true, VerInventario: true,

			AgregarProducto: true, EditarProducto: true,
			RegistrarMerma: true, VerTodoInventario: true,
		}

	default:
		// Cajero: punto de venta, su caja y reportes propios del día.
		return Permisos{
			VerInicio: true, VerPuntoVenta: true, VerCaja: true, VerReportes: true,

			RealizarVenta: true, ImprimirTicket: true,

			AbrirCaja: true, CerrarCaja: true, VerMovimientosCaja: true,

			VerReportesPropios: true, ReportesSoloHoy: true,
		}
	}
}

// Combinar derives the effective capability set: the base table for the role
// OR-ed with the booleans of each granted extra module. Dueño and gerente
// already exceed any overlay, so extras are ignored for them. The overlay is
// strictly additive — it never revokes a base capability and never grants
// verReportesGlobales.
func Combinar(rol Rol, extra *PermisosExtra) Permisos {
	p := PorRol(rol)
	if rol.EsAdmin() || extra == nil {
		return p
	}

	for _, modulo := range extra.Modulos {
		switch modulo {
		case ModuloInventario:
			p.VerInventario = true
			p.AgregarProducto = true
			p.EditarProducto = true
			p.RegistrarMerma = true
			p.VerTodoInventario = true
		case ModuloPOS:
			p.VerPuntoVenta = true
			p.RealizarVenta = true
			p.ImprimirTicket = true
			p.VerCaja = true
			p.AbrirCaja = true
			p.CerrarCaja = true
		case ModuloCaja:
			p.VerCaja = true
			p.AbrirCaja = true
			p.CerrarCaja = true
			p.VerMovimientosCaja = true
		case ModuloReportes:
			// Solo reportes propios; los globales nunca se otorgan por extras.
			p.VerReportes = true
			p.VerReportesPropios = true
		}
	}
	return p
}
