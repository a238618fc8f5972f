package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"ventifai/internal/apierror"
	"ventifai/internal/dto"
	"ventifai/internal/middleware"
	"ventifai/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// statusDe maps a caja domain error to its HTTP status.
func statusDe(err error) int {
	switch {
	case errors.Is(err, service.ErrCajaYaAbierta),
		errors.Is(err, service.ErrMontoInvalido),
		errors.Is(err, service.ErrCategoriaRequerida):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrCajaCerrada):
		return http.StatusConflict
	case errors.Is(err, service.ErrMovimientoEnCurso):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Abrir godoc
// @Summary Abre la caja del negocio
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Monto inicial"
// @Success 201 {object} dto.EstadoCajaResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/caja/open [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	negocioID, _ := middleware.NegocioID(c)
	usuarioID, _ := middleware.UsuarioID(c)

	resp, err := h.svc.Abrir(c.Request.Context(), negocioID, usuarioID, req)
	if err != nil {
		c.JSON(statusDe(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, dto.EstadoCajaResponse{Abierta: true, Caja: resp})
}

// Cerrar godoc
// @Summary Cierra la caja abierta
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Datos de cierre"
// @Success 200 {object} dto.EstadoCajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/close [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	negocioID, _ := middleware.NegocioID(c)

	resp, err := h.svc.Cerrar(c.Request.Context(), negocioID, req)
	if err != nil {
		c.JSON(statusDe(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.EstadoCajaResponse{Abierta: false, Caja: resp})
}

// RegistrarMovimiento godoc
// @Summary Registra una entrada o salida de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimientoRequest true "Movimiento"
// @Success 201 {object} dto.MovimientoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/movimiento [post]
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	negocioID, _ := middleware.NegocioID(c)
	usuarioID, _ := middleware.UsuarioID(c)

	resp, err := h.svc.RegistrarMovimiento(c.Request.Context(), negocioID, usuarioID, req)
	if err != nil {
		c.JSON(statusDe(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// EstadoActual returns {abierta, caja} for POS gating.
func (h *CajaHandler) EstadoActual(c *gin.Context) {
	negocioID, _ := middleware.NegocioID(c)
	resp, err := h.svc.EstadoActual(c.Request.Context(), negocioID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimientos lists the open caja's ledger, optionally filtered.
func (h *CajaHandler) Movimientos(c *gin.Context) {
	negocioID, _ := middleware.NegocioID(c)

	var desde, hasta *time.Time
	if v := c.Query("desde"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			desde = &t
		}
	}
	if v := c.Query("hasta"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			hasta = &t
		}
	}

	resp, err := h.svc.Movimientos(c.Request.Context(), negocioID, desde, hasta, c.Query("tipo"))
	if err != nil {
		c.JSON(statusDe(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"movimientos": resp})
}

// Resumen returns totals per tipo and the current balance.
func (h *CajaHandler) Resumen(c *gin.Context) {
	negocioID, _ := middleware.NegocioID(c)
	resp, err := h.svc.Resumen(c.Request.Context(), negocioID)
	if err != nil {
		c.JSON(statusDe(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial returns a paginated list of closed cajas.
func (h *CajaHandler) Historial(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	negocioID, _ := middleware.NegocioID(c)

	resp, err := h.svc.Historial(c.Request.Context(), negocioID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "page": page, "limit": limit})
}
