package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Fuente is the authoritative session source (backed by the usuario store).
type Fuente interface {
	Obtener(ctx context.Context, usuarioID uuid.UUID) (*Sesion, error)
}

// Respaldo persists the last known-good snapshot per user. It is consulted
// only when the authoritative fetch fails, and invalidated on logout.
type Respaldo interface {
	Guardar(ctx context.Context, s *Sesion) error
	Recuperar(ctx context.Context, usuarioID uuid.UUID) (*Sesion, error)
	Eliminar(ctx context.Context, usuarioID uuid.UUID) error
}

// Suscriptor receives every session change: the new session after a
// login/fetch/refresh, or nil after a logout.
type Suscriptor func(usuarioID uuid.UUID, s *Sesion)

// Manager owns all session state. Other components read through it and never
// mutate sessions directly — every accessor returns an independent copy.
type Manager struct {
	fuente   Fuente
	respaldo Respaldo

	mu       sync.RWMutex
	sesiones map[uuid.UUID]*Sesion
	// gen invalidates in-flight fetches: a logout bumps the counter so a
	// fetch that resolves afterwards is discarded instead of applied.
	gen  map[uuid.UUID]uint64
	subs []Suscriptor

	group singleflight.Group
}

func NewManager(fuente Fuente, respaldo Respaldo) *Manager {
	return &Manager{
		fuente:   fuente,
		respaldo: respaldo,
		sesiones: make(map[uuid.UUID]*Sesion),
		gen:      make(map[uuid.UUID]uint64),
	}
}

// Suscribir registers a callback for session changes. Fan-out is synchronous
// and in registration order; subscribers are UI/state bindings and must not
// block.
func (m *Manager) Suscribir(fn Suscriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Actual returns the cached session for the user, or nil. Memory-only —
// it never triggers I/O.
func (m *Manager) Actual(usuarioID uuid.UUID) *Sesion {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sesiones[usuarioID].clonar()
}

// Establecer installs a session directly (login/registration path), snapshots
// it to the respaldo and notifies subscribers. Invalid sessions are rejected.
func (m *Manager) Establecer(ctx context.Context, s *Sesion) error {
	if !s.Valida() {
		return ErrSesionNoDisponible
	}
	propia := s.clonar()

	m.mu.Lock()
	m.sesiones[propia.UsuarioID] = propia
	m.mu.Unlock()

	if err := m.respaldo.Guardar(ctx, propia); err != nil {
		log.Warn().Err(err).Str("usuario_id", propia.UsuarioID.String()).Msg("session: no se pudo guardar respaldo")
	}
	m.notificar(propia.UsuarioID, propia.clonar())
	return nil
}

// Obtener returns the session for the user, fetching from the authoritative
// source when it is not cached. Concurrent callers share one in-flight fetch.
func (m *Manager) Obtener(ctx context.Context, usuarioID uuid.UUID) (*Sesion, error) {
	if s := m.Actual(usuarioID); s != nil {
		return s, nil
	}
	return m.fetch(ctx, usuarioID)
}

// Refrescar invalidates the cached session and forces an authoritative fetch.
func (m *Manager) Refrescar(ctx context.Context, usuarioID uuid.UUID) (*Sesion, error) {
	m.mu.Lock()
	delete(m.sesiones, usuarioID)
	m.mu.Unlock()
	return m.fetch(ctx, usuarioID)
}

// Cerrar is the idempotent logout: it invalidates any in-flight fetch, clears
// memory and the respaldo, and notifies subscribers with nil. Respaldo
// failures are swallowed — the user-visible logout always succeeds.
func (m *Manager) Cerrar(ctx context.Context, usuarioID uuid.UUID) {
	m.mu.Lock()
	m.gen[usuarioID]++
	delete(m.sesiones, usuarioID)
	m.mu.Unlock()

	if err := m.respaldo.Eliminar(ctx, usuarioID); err != nil {
		log.Warn().Err(err).Str("usuario_id", usuarioID.String()).Msg("session: no se pudo eliminar respaldo")
	}
	m.notificar(usuarioID, nil)
}

// fetch coalesces concurrent authoritative fetches per user via singleflight,
// falling back to the respaldo snapshot on transient failure.
func (m *Manager) fetch(ctx context.Context, usuarioID uuid.UUID) (*Sesion, error) {
	m.mu.RLock()
	genInicial := m.gen[usuarioID]
	m.mu.RUnlock()

	v, err, _ := m.group.Do(usuarioID.String(), func() (interface{}, error) {
		s, err := m.fuente.Obtener(ctx, usuarioID)
		if err != nil || !s.Valida() {
			return m.recuperarRespaldo(ctx, usuarioID, err)
		}
		return s, nil
	})
	if err != nil {
		m.limpiar(usuarioID)
		return nil, err
	}
	s := v.(*Sesion)

	m.mu.Lock()
	if m.gen[usuarioID] != genInicial {
		// Superseded by a logout while in flight: discard, never apply.
		m.mu.Unlock()
		return nil, ErrSesionNoDisponible
	}
	m.sesiones[usuarioID] = s.clonar()
	m.mu.Unlock()

	if err := m.respaldo.Guardar(ctx, s); err != nil {
		log.Warn().Err(err).Str("usuario_id", usuarioID.String()).Msg("session: no se pudo guardar respaldo")
	}
	m.notificar(usuarioID, s.clonar())
	return s.clonar(), nil
}

func (m *Manager) recuperarRespaldo(ctx context.Context, usuarioID uuid.UUID, causa error) (interface{}, error) {
	s, err := m.respaldo.Recuperar(ctx, usuarioID)
	if err != nil || !s.Valida() {
		log.Warn().AnErr("causa", causa).Str("usuario_id", usuarioID.String()).
			Msg("session: sin fuente autoritativa ni respaldo válido")
		return nil, ErrSesionNoDisponible
	}
	log.Info().Str("usuario_id", usuarioID.String()).Msg("session: usando respaldo tras fallo transitorio")
	return s, nil
}

func (m *Manager) limpiar(usuarioID uuid.UUID) {
	m.mu.Lock()
	delete(m.sesiones, usuarioID)
	m.mu.Unlock()
}

func (m *Manager) notificar(usuarioID uuid.UUID, s *Sesion) {
	m.mu.RLock()
	subs := append([]Suscriptor(nil), m.subs...)
	m.mu.RUnlock()
	for _, fn := range subs {
		fn(usuarioID, s)
	}
}
