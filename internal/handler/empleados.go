package handler

import (
	"errors"
	"net/http"

	"ventifai/internal/apierror"
	"ventifai/internal/dto"
	"ventifai/internal/middleware"
	"ventifai/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EmpleadosHandler struct{ svc service.EmpleadoService }

func NewEmpleadosHandler(svc service.EmpleadoService) *EmpleadosHandler {
	return &EmpleadosHandler{svc: svc}
}

func empleadoStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrEmpleadoNoEncontrado):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNegocioAjeno):
		return http.StatusForbidden
	case errors.Is(err, service.ErrEmailEnUso):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// Crear godoc
// @Summary Alta de empleado con contraseña temporal
// @Tags empleados
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearEmpleadoRequest true "Datos del empleado"
// @Success 201 {object} dto.CrearEmpleadoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/empleados [post]
func (h *EmpleadosHandler) Crear(c *gin.Context) {
	var req dto.CrearEmpleadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	negocioID, _ := middleware.NegocioID(c)

	resp, err := h.svc.Crear(c.Request.Context(), negocioID, req)
	if err != nil {
		c.JSON(empleadoStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *EmpleadosHandler) Listar(c *gin.Context) {
	negocioID, _ := middleware.NegocioID(c)
	resp, err := h.svc.Listar(c.Request.Context(), negocioID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"empleados": resp})
}

func (h *EmpleadosHandler) ActualizarRol(c *gin.Context) {
	empleadoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.ActualizarRolRequest
	if !bindAndValidate(c, &req) {
		return
	}
	negocioID, _ := middleware.NegocioID(c)

	resp, err := h.svc.ActualizarRol(c.Request.Context(), negocioID, empleadoID, req.Rol)
	if err != nil {
		c.JSON(empleadoStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AsignarPermisosExtra grants temporary module access on top of the base role.
func (h *EmpleadosHandler) AsignarPermisosExtra(c *gin.Context) {
	empleadoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.PermisosExtraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	negocioID, _ := middleware.NegocioID(c)
	asignadoPor := ""
	if claims := middleware.GetClaims(c); claims != nil {
		asignadoPor = claims.UserID
	}

	resp, err := h.svc.AsignarPermisosExtra(c.Request.Context(), negocioID, empleadoID, asignadoPor, req)
	if err != nil {
		c.JSON(empleadoStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EmpleadosHandler) QuitarPermisosExtra(c *gin.Context) {
	empleadoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	negocioID, _ := middleware.NegocioID(c)

	resp, err := h.svc.QuitarPermisosExtra(c.Request.Context(), negocioID, empleadoID)
	if err != nil {
		c.JSON(empleadoStatus(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EmpleadosHandler) Desactivar(c *gin.Context) {
	empleadoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	negocioID, _ := middleware.NegocioID(c)

	if err := h.svc.Desactivar(c.Request.Context(), negocioID, empleadoID); err != nil {
		c.JSON(empleadoStatus(err), apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
