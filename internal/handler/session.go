package handler

import (
	"net/http"

	"ventifai/internal/apierror"
	"ventifai/internal/dto"
	"ventifai/internal/middleware"
	"ventifai/internal/permisos"
	"ventifai/internal/service"
	"ventifai/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionHandler serves the canonical session plus everything derived from
// it: normalized role, capability set, allowed routes, and default route.
type SessionHandler struct {
	sesiones *session.Manager
}

func NewSessionHandler(sesiones *session.Manager) *SessionHandler {
	return &SessionHandler{sesiones: sesiones}
}

// Obtener godoc
// @Summary Sesión actual con permisos derivados
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessionResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/session [get]
func (h *SessionHandler) Obtener(c *gin.Context) {
	usuarioID, ok := middleware.UsuarioID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticación requerida"))
		return
	}

	ses, err := h.sesiones.Obtener(c.Request.Context(), usuarioID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Sesión no disponible"))
		return
	}
	c.JSON(http.StatusOK, sessionResponse(ses))
}

// Refrescar forces an authoritative re-fetch, bypassing the cache.
func (h *SessionHandler) Refrescar(c *gin.Context) {
	usuarioID, ok := middleware.UsuarioID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticación requerida"))
		return
	}

	ses, err := h.sesiones.Refrescar(c.Request.Context(), usuarioID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Sesión no disponible"))
		return
	}
	c.JSON(http.StatusOK, sessionResponse(ses))
}

func sessionResponse(ses *session.Sesion) dto.SessionResponse {
	rol := ses.RolNormalizado()
	caps := ses.Permisos()
	return dto.SessionResponse{
		Session:         service.SessionInfoDe(ses),
		RolNormalizado:  rol,
		RolLabel:        rol.Label(),
		Permisos:        caps,
		RutasPermitidas: permisos.RutasPermitidas(caps),
		RutaDefault:     permisos.RutaDefault(rol),
	}
}
