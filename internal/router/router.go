package router

import (
	"time"

	"ventifai/internal/config"
	"ventifai/internal/handler"
	"ventifai/internal/middleware"
	"ventifai/internal/permisos"
	"ventifai/internal/repository"
	"ventifai/internal/service"
	"ventifai/internal/session"
	"ventifai/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, sesiones *session.Manager, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	negocioRepo := repository.NewNegocioRepository(db)
	cajaRepo := repository.NewCajaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, negocioRepo, sesiones, cfg)
	cajaSvc := service.NewCajaService(cajaRepo, service.NewEstadoCajaRedis(rdb))
	empleadoSvc := service.NewEmpleadoService(usuarioRepo, sesiones, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	sessionH := handler.NewSessionHandler(sesiones)
	cajaH := handler.NewCajaHandler(cajaSvc)
	empleadosH := handler.NewEmpleadosHandler(empleadoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/register", authH.Register)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/auth/logout", authH.Logout)
		v1.POST("/auth/primer-acceso", authH.PrimerAcceso)

		// Session + derived capabilities and routes
		v1.GET("/session", sessionH.Obtener)
		v1.POST("/session/refresh", sessionH.Refrescar)

		// Caja — each operation gated by its own capability, recomputed from
		// the session on every request.
		caja := v1.Group("/caja")
		{
			caja.POST("/open", middleware.RequirePermiso(sesiones, func(p permisos.Permisos) bool { return p.AbrirCaja }), cajaH.Abrir)
			caja.POST("/close", middleware.RequirePermiso(sesiones, func(p permisos.Permisos) bool { return p.CerrarCaja }), cajaH.Cerrar)
			caja.POST("/movimiento", middleware.RequirePermiso(sesiones, func(p permisos.Permisos) bool { return p.VerCaja }), cajaH.RegistrarMovimiento)
			caja.GET("/current", middleware.RequirePermiso(sesiones, func(p permisos.Permisos) bool { return p.VerCaja }), cajaH.EstadoActual)
			caja.GET("/movimientos", middleware.RequirePermiso(sesiones, func(p permisos.Permisos) bool { return p.VerMovimientosCaja }), cajaH.Movimientos)
			caja.GET("/resumen", middleware.RequirePermiso(sesiones, func(p permisos.Permisos) bool { return p.VerMovimientosCaja }), cajaH.Resumen)
			caja.GET("/historial", middleware.RequirePermiso(sesiones, func(p permisos.Permisos) bool { return p.VerReportesGlobales }), cajaH.Historial)
		}

		// Empleados — dueño/gerente only
		empleados := v1.Group("/empleados", middleware.RequireAdmin(sesiones))
		{
			empleados.POST("", empleadosH.Crear)
			empleados.GET("", empleadosH.Listar)
			empleados.PUT("/:id/rol", empleadosH.ActualizarRol)
			empleados.PUT("/:id/permisos-extra", empleadosH.AsignarPermisosExtra)
			empleados.DELETE("/:id/permisos-extra", empleadosH.QuitarPermisosExtra)
			empleados.DELETE("/:id", empleadosH.Desactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
