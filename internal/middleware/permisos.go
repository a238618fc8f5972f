package middleware

import (
	"net/http"

	"ventifai/internal/apierror"
	"ventifai/internal/permisos"
	"ventifai/internal/session"

	"github.com/gin-gonic/gin"
)

// RequirePermiso gates a route on one capability of the effective set. The
// set is derived fresh from the session (base role + extra overlay) on every
// request — never cached across session changes.
func RequirePermiso(sesiones *session.Manager, tiene func(permisos.Permisos) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		usuarioID, ok := UsuarioID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticación requerida"))
			return
		}

		ses, err := sesiones.Obtener(c.Request.Context(), usuarioID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Sesión no disponible"))
			return
		}

		if !tiene(ses.Permisos()) {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// RequireAdmin allows only dueño/gerente (employee and extra-grant admin).
func RequireAdmin(sesiones *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		usuarioID, ok := UsuarioID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticación requerida"))
			return
		}

		ses, err := sesiones.Obtener(c.Request.Context(), usuarioID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Sesión no disponible"))
			return
		}

		if !ses.RolNormalizado().EsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}
