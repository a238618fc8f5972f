package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"ventifai/internal/dto"
	"ventifai/internal/model"
	"ventifai/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Errores de operación de caja. Las operaciones financieras nunca se
// reintentan automáticamente — el error llega tal cual a quien inició la acción.
var (
	ErrMontoInvalido      = errors.New("el monto debe ser mayor a 0")
	ErrCajaYaAbierta      = errors.New("ya existe una caja abierta en este negocio")
	ErrCajaCerrada        = errors.New("no hay caja abierta")
	ErrCategoriaRequerida = errors.New("la categoría del movimiento es requerida")
	ErrMovimientoEnCurso  = errors.New("hay un movimiento en curso, intenta de nuevo")
)

// EstadoCajaCache holds the current-state snapshot that POS/inventory
// components consult to block sales while the register is closed. Every
// successful open/close/movement refreshes it before the register lock is
// released, so the next operation always sees a consistent view.
type EstadoCajaCache interface {
	Guardar(ctx context.Context, negocioID uuid.UUID, estado *dto.EstadoCajaResponse) error
	Recuperar(ctx context.Context, negocioID uuid.UUID) (*dto.EstadoCajaResponse, error)
}

type CajaService interface {
	Abrir(ctx context.Context, negocioID, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.CajaResponse, error)
	Cerrar(ctx context.Context, negocioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CajaResponse, error)
	RegistrarMovimiento(ctx context.Context, negocioID, usuarioID uuid.UUID, req dto.MovimientoRequest) (*dto.MovimientoResponse, error)
	EstadoActual(ctx context.Context, negocioID uuid.UUID) (*dto.EstadoCajaResponse, error)
	Movimientos(ctx context.Context, negocioID uuid.UUID, desde, hasta *time.Time, tipo string) ([]dto.MovimientoResponse, error)
	Resumen(ctx context.Context, negocioID uuid.UUID) (*dto.ResumenCajaResponse, error)
	Historial(ctx context.Context, negocioID uuid.UUID, page, limit int) ([]dto.CajaResponse, error)
	// SaldoActual recomputes the balance from the authoritative movement
	// list — it is never accumulated locally, to avoid drift.
	SaldoActual(ctx context.Context, negocioID uuid.UUID) (decimal.Decimal, error)
}

type cajaService struct {
	repo   repository.CajaRepository
	estado EstadoCajaCache

	mu       sync.Mutex
	cerrojos map[uuid.UUID]*sync.Mutex // serializa operaciones por negocio
	enVuelo  map[uuid.UUID]bool        // guarda anti doble-envío, por negocio
}

func NewCajaService(repo repository.CajaRepository, estado EstadoCajaCache) CajaService {
	return &cajaService{
		repo:     repo,
		estado:   estado,
		cerrojos: make(map[uuid.UUID]*sync.Mutex),
		enVuelo:  make(map[uuid.UUID]bool),
	}
}

// cerrojo returns the per-negocio mutex, creating it on first use. State
// changes (open, close, movement) run under it, including the state-cache
// refresh, so operations per register are strictly serialized.
func (s *cajaService) cerrojo(negocioID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.cerrojos[negocioID]
	if !ok {
		m = &sync.Mutex{}
		s.cerrojos[negocioID] = m
	}
	return m
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, negocioID, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.CajaResponse, error) {
	if !req.MontoInicial.IsPositive() {
		return nil, ErrMontoInvalido
	}

	lock := s.cerrojo(negocioID)
	lock.Lock()
	defer lock.Unlock()

	abierta, err := s.abiertaPorNegocio(ctx, negocioID)
	if err != nil {
		return nil, err
	}
	if abierta != nil {
		return nil, ErrCajaYaAbierta
	}

	caja := &model.Caja{
		NegocioID:    negocioID,
		UsuarioID:    usuarioID,
		MontoInicial: req.MontoInicial,
		Abierta:      true,
		OpenedAt:     time.Now(),
	}
	if err := s.repo.Create(ctx, caja); err != nil {
		return nil, err
	}

	resp := s.buildResponse(caja, req.MontoInicial)
	s.refrescarEstado(ctx, negocioID, &dto.EstadoCajaResponse{Abierta: true, Caja: resp})
	return resp, nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────

func (s *cajaService) Cerrar(ctx context.Context, negocioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CajaResponse, error) {
	lock := s.cerrojo(negocioID)
	lock.Lock()
	defer lock.Unlock()

	caja, err := s.abiertaPorNegocio(ctx, negocioID)
	if err != nil {
		return nil, err
	}
	if caja == nil {
		return nil, ErrCajaCerrada
	}
	if id, err := uuid.Parse(req.ID); err != nil || id != caja.ID {
		return nil, ErrCajaCerrada
	}

	saldo, err := s.saldo(ctx, caja)
	if err != nil {
		return nil, err
	}

	// El cierre fija el monto y congela la caja: nunca vuelve a abrirse.
	cierre := saldo
	if req.MontoCierre != nil {
		cierre = *req.MontoCierre
	}
	ahora := time.Now()
	caja.MontoCierre = &cierre
	caja.Abierta = false
	caja.Resumen = req.Resumen
	caja.ClosedAt = &ahora
	if err := s.repo.Update(ctx, caja); err != nil {
		return nil, err
	}

	resp := s.buildResponse(caja, saldo)
	s.refrescarEstado(ctx, negocioID, &dto.EstadoCajaResponse{Abierta: false, Caja: nil})
	return resp, nil
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────

func (s *cajaService) RegistrarMovimiento(ctx context.Context, negocioID, usuarioID uuid.UUID, req dto.MovimientoRequest) (*dto.MovimientoResponse, error) {
	if !req.Monto.IsPositive() {
		return nil, ErrMontoInvalido
	}
	if req.Categoria == "" {
		return nil, ErrCategoriaRequerida
	}

	// A lo sumo un movimiento pendiente por negocio: un segundo envío mientras
	// otro está en vuelo se rechaza en lugar de encolarse tras el cerrojo y
	// duplicarse. La marca se toma ANTES del cerrojo — tomada después, el
	// segundo envío quedaría bloqueado en Lock() hasta que el primero ya la
	// hubiera soltado, y nunca la vería puesta.
	if !s.marcarEnVuelo(negocioID) {
		return nil, ErrMovimientoEnCurso
	}
	defer s.liberarEnVuelo(negocioID)

	lock := s.cerrojo(negocioID)
	lock.Lock()
	defer lock.Unlock()

	caja, err := s.abiertaPorNegocio(ctx, negocioID)
	if err != nil {
		return nil, err
	}
	if caja == nil {
		return nil, ErrCajaCerrada
	}

	mov := &model.MovimientoCaja{
		CajaID:      caja.ID,
		Tipo:        req.Tipo,
		Monto:       req.Monto,
		Categoria:   req.Categoria,
		Descripcion: req.Descripcion,
		MetodoPago:  req.MetodoPago,
		Referencia:  req.Referencia,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateMovimiento(ctx, mov); err != nil {
		return nil, err
	}

	saldo, err := s.saldo(ctx, caja)
	if err != nil {
		return nil, err
	}
	s.refrescarEstado(ctx, negocioID, &dto.EstadoCajaResponse{Abierta: true, Caja: s.buildResponse(caja, saldo)})

	return movimientoResponse(mov), nil
}

func (s *cajaService) marcarEnVuelo(negocioID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enVuelo[negocioID] {
		return false
	}
	s.enVuelo[negocioID] = true
	return true
}

func (s *cajaService) liberarEnVuelo(negocioID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.enVuelo, negocioID)
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cajaService) EstadoActual(ctx context.Context, negocioID uuid.UUID) (*dto.EstadoCajaResponse, error) {
	if estado, err := s.estado.Recuperar(ctx, negocioID); err == nil && estado != nil {
		return estado, nil
	}

	caja, err := s.abiertaPorNegocio(ctx, negocioID)
	if err != nil {
		return nil, err
	}
	if caja == nil {
		return &dto.EstadoCajaResponse{Abierta: false, Caja: nil}, nil
	}
	saldo, err := s.saldo(ctx, caja)
	if err != nil {
		return nil, err
	}
	estado := &dto.EstadoCajaResponse{Abierta: true, Caja: s.buildResponse(caja, saldo)}
	s.refrescarEstado(ctx, negocioID, estado)
	return estado, nil
}

func (s *cajaService) Movimientos(ctx context.Context, negocioID uuid.UUID, desde, hasta *time.Time, tipo string) ([]dto.MovimientoResponse, error) {
	caja, err := s.abiertaPorNegocio(ctx, negocioID)
	if err != nil {
		return nil, err
	}
	if caja == nil {
		return nil, ErrCajaCerrada
	}
	movs, err := s.repo.ListMovimientos(ctx, caja.ID, desde, hasta, tipo)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MovimientoResponse, len(movs))
	for i := range movs {
		resp[i] = *movimientoResponse(&movs[i])
	}
	return resp, nil
}

func (s *cajaService) Resumen(ctx context.Context, negocioID uuid.UUID) (*dto.ResumenCajaResponse, error) {
	caja, err := s.abiertaPorNegocio(ctx, negocioID)
	if err != nil {
		return nil, err
	}
	if caja == nil {
		return nil, ErrCajaCerrada
	}
	sums, err := s.repo.SumMovimientosPorTipo(ctx, caja.ID)
	if err != nil {
		return nil, err
	}
	movs, err := s.repo.ListMovimientos(ctx, caja.ID, nil, nil, "")
	if err != nil {
		return nil, err
	}
	entradas, salidas := sums["entrada"], sums["salida"]
	return &dto.ResumenCajaResponse{
		MontoInicial:   caja.MontoInicial,
		TotalEntradas:  entradas,
		TotalSalidas:   salidas,
		Saldo:          caja.MontoInicial.Add(entradas).Sub(salidas),
		NumMovimientos: len(movs),
	}, nil
}

func (s *cajaService) Historial(ctx context.Context, negocioID uuid.UUID, page, limit int) ([]dto.CajaResponse, error) {
	cajas, err := s.repo.ListCerradasPorNegocio(ctx, negocioID, page, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CajaResponse, len(cajas))
	for i := range cajas {
		saldo := cajas[i].MontoInicial
		if cajas[i].MontoCierre != nil {
			saldo = *cajas[i].MontoCierre
		}
		resp[i] = *s.buildResponse(&cajas[i], saldo)
	}
	return resp, nil
}

func (s *cajaService) SaldoActual(ctx context.Context, negocioID uuid.UUID) (decimal.Decimal, error) {
	caja, err := s.abiertaPorNegocio(ctx, negocioID)
	if err != nil {
		return decimal.Zero, err
	}
	if caja == nil {
		return decimal.Zero, ErrCajaCerrada
	}
	return s.saldo(ctx, caja)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// abiertaPorNegocio distingue "no hay caja abierta" (nil, nil) de un fallo
// real del repositorio, que se propaga en vez de disfrazarse de precondición.
func (s *cajaService) abiertaPorNegocio(ctx context.Context, negocioID uuid.UUID) (*model.Caja, error) {
	caja, err := s.repo.FindAbiertaPorNegocio(ctx, negocioID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return caja, nil
}

// saldo = monto inicial + Σ entradas − Σ salidas, siempre desde el repositorio.
func (s *cajaService) saldo(ctx context.Context, caja *model.Caja) (decimal.Decimal, error) {
	sums, err := s.repo.SumMovimientosPorTipo(ctx, caja.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return caja.MontoInicial.Add(sums["entrada"]).Sub(sums["salida"]), nil
}

func (s *cajaService) refrescarEstado(ctx context.Context, negocioID uuid.UUID, estado *dto.EstadoCajaResponse) {
	if err := s.estado.Guardar(ctx, negocioID, estado); err != nil {
		// El snapshot es una vista derivada; el repositorio sigue siendo la
		// fuente de verdad, así que un fallo aquí no invalida la operación.
		logEstadoCacheError(negocioID, err)
	}
}

func (s *cajaService) buildResponse(caja *model.Caja, saldo decimal.Decimal) *dto.CajaResponse {
	resp := &dto.CajaResponse{
		ID:           caja.ID.String(),
		NegocioID:    caja.NegocioID.String(),
		UsuarioID:    caja.UsuarioID.String(),
		MontoInicial: caja.MontoInicial,
		MontoCierre:  caja.MontoCierre,
		Saldo:        saldo,
		Abierta:      caja.Abierta,
		Resumen:      caja.Resumen,
		OpenedAt:     caja.OpenedAt.UTC().Format(time.RFC3339),
	}
	if caja.ClosedAt != nil {
		t := caja.ClosedAt.UTC().Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}

func movimientoResponse(m *model.MovimientoCaja) *dto.MovimientoResponse {
	return &dto.MovimientoResponse{
		ID:          m.ID.String(),
		Tipo:        m.Tipo,
		Monto:       m.Monto,
		Categoria:   m.Categoria,
		Descripcion: m.Descripcion,
		MetodoPago:  m.MetodoPago,
		Referencia:  m.Referencia,
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
