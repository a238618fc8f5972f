package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ventifai/internal/permisos"
	"ventifai/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fuenteFija struct{ sesiones map[uuid.UUID]*session.Sesion }

func (f fuenteFija) Obtener(_ context.Context, id uuid.UUID) (*session.Sesion, error) {
	s, ok := f.sesiones[id]
	if !ok {
		return nil, errors.New("no existe")
	}
	return s, nil
}

type sinRespaldo struct{}

func (sinRespaldo) Guardar(context.Context, *session.Sesion) error { return nil }
func (sinRespaldo) Recuperar(context.Context, uuid.UUID) (*session.Sesion, error) {
	return nil, errors.New("sin snapshot")
}
func (sinRespaldo) Eliminar(context.Context, uuid.UUID) error { return nil }

func managerCon(sesiones ...*session.Sesion) *session.Manager {
	fuente := fuenteFija{sesiones: make(map[uuid.UUID]*session.Sesion)}
	for _, s := range sesiones {
		fuente.sesiones[s.UsuarioID] = s
	}
	return session.NewManager(fuente, sinRespaldo{})
}

func sesionConRol(rol string) *session.Sesion {
	return &session.Sesion{
		UsuarioID: uuid.New(),
		NegocioID: uuid.New(),
		Rol:       rol,
		Email:     "test@demo.com",
		Nombre:    "Test",
	}
}

// requestCon simulates a request already authenticated as usuarioID.
func requestCon(t *testing.T, mw gin.HandlerFunc, usuarioID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe",
		func(c *gin.Context) {
			c.Set(ClaimsKey, &JWTClaims{UserID: usuarioID.String(), NegocioID: uuid.NewString()})
		},
		mw,
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/probe", nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)
	return w
}

func TestRequirePermisoConcedido(t *testing.T) {
	ses := sesionConRol("cajero")
	mw := RequirePermiso(managerCon(ses), func(p permisos.Permisos) bool { return p.AbrirCaja })

	w := requestCon(t, mw, ses.UsuarioID)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermisoDenegado(t *testing.T) {
	ses := sesionConRol("cajero")
	mw := RequirePermiso(managerCon(ses), func(p permisos.Permisos) bool { return p.VerReportesGlobales })

	w := requestCon(t, mw, ses.UsuarioID)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// El overlay extra se refleja en la siguiente petición, sin re-login.
func TestRequirePermisoConExtras(t *testing.T) {
	ses := sesionConRol("cajero")
	ses.PermisosExtra = &permisos.PermisosExtra{Modulos: []permisos.ModuloExtra{permisos.ModuloInventario}}
	mw := RequirePermiso(managerCon(ses), func(p permisos.Permisos) bool { return p.VerInventario })

	w := requestCon(t, mw, ses.UsuarioID)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermisoSinSesion(t *testing.T) {
	mw := RequirePermiso(managerCon(), func(p permisos.Permisos) bool { return p.AbrirCaja })

	w := requestCon(t, mw, uuid.New())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	casos := []struct {
		rol      string
		esperado int
	}{
		{"dueño", http.StatusOK},
		{"Gerente General", http.StatusOK},
		{"cajero", http.StatusForbidden},
		{"almacenista", http.StatusForbidden},
	}
	for _, caso := range casos {
		ses := sesionConRol(caso.rol)
		w := requestCon(t, RequireAdmin(managerCon(ses)), ses.UsuarioID)
		assert.Equal(t, caso.esperado, w.Code, "rol=%s", caso.rol)
	}
}
