package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ventifai/internal/permisos"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Fakes ─────────────────────────────────────────────────────────────────────

type fuenteFake struct {
	mu       sync.Mutex
	llamadas int32
	fn       func(usuarioID uuid.UUID) (*Sesion, error)
}

func (f *fuenteFake) Obtener(_ context.Context, usuarioID uuid.UUID) (*Sesion, error) {
	atomic.AddInt32(&f.llamadas, 1)
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	return fn(usuarioID)
}

type respaldoFake struct {
	mu        sync.Mutex
	snapshots map[uuid.UUID]*Sesion
	falla     bool
}

func newRespaldoFake() *respaldoFake {
	return &respaldoFake{snapshots: make(map[uuid.UUID]*Sesion)}
}

func (r *respaldoFake) Guardar(_ context.Context, s *Sesion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.falla {
		return errors.New("respaldo caído")
	}
	r.snapshots[s.UsuarioID] = s
	return nil
}

func (r *respaldoFake) Recuperar(_ context.Context, usuarioID uuid.UUID) (*Sesion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.falla {
		return nil, errors.New("respaldo caído")
	}
	s, ok := r.snapshots[usuarioID]
	if !ok {
		return nil, errors.New("sin snapshot")
	}
	return s, nil
}

func (r *respaldoFake) Eliminar(_ context.Context, usuarioID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.falla {
		return errors.New("respaldo caído")
	}
	delete(r.snapshots, usuarioID)
	return nil
}

func sesionDemo(usuarioID uuid.UUID) *Sesion {
	return &Sesion{
		UsuarioID: usuarioID,
		NegocioID: uuid.New(),
		Rol:       "cajero",
		Email:     "cajero@demo.com",
		Nombre:    "Cajero Demo",
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestObtenerDesdeFuente(t *testing.T) {
	usuarioID := uuid.New()
	fuente := &fuenteFake{fn: func(id uuid.UUID) (*Sesion, error) { return sesionDemo(id), nil }}
	m := NewManager(fuente, newRespaldoFake())

	s, err := m.Obtener(context.Background(), usuarioID)
	require.NoError(t, err)
	assert.Equal(t, usuarioID, s.UsuarioID)

	// Segunda llamada sale de memoria, sin tocar la fuente.
	_, err = m.Obtener(context.Background(), usuarioID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fuente.llamadas))
}

func TestFallbackARespaldo(t *testing.T) {
	usuarioID := uuid.New()
	respaldo := newRespaldoFake()
	respaldo.snapshots[usuarioID] = sesionDemo(usuarioID)

	fuente := &fuenteFake{fn: func(uuid.UUID) (*Sesion, error) { return nil, errors.New("timeout") }}
	m := NewManager(fuente, respaldo)

	s, err := m.Obtener(context.Background(), usuarioID)
	require.NoError(t, err)
	assert.Equal(t, usuarioID, s.UsuarioID)
}

func TestSinFuenteNiRespaldo(t *testing.T) {
	usuarioID := uuid.New()
	fuente := &fuenteFake{fn: func(uuid.UUID) (*Sesion, error) { return nil, errors.New("timeout") }}
	m := NewManager(fuente, newRespaldoFake())

	_, err := m.Obtener(context.Background(), usuarioID)
	assert.ErrorIs(t, err, ErrSesionNoDisponible)
}

// Una sesión parcial del respaldo (sin email) jamás se sirve.
func TestRespaldoInvalidoSeDescarta(t *testing.T) {
	usuarioID := uuid.New()
	respaldo := newRespaldoFake()
	respaldo.snapshots[usuarioID] = &Sesion{UsuarioID: usuarioID, Rol: "cajero"}

	fuente := &fuenteFake{fn: func(uuid.UUID) (*Sesion, error) { return nil, errors.New("timeout") }}
	m := NewManager(fuente, respaldo)

	_, err := m.Obtener(context.Background(), usuarioID)
	assert.ErrorIs(t, err, ErrSesionNoDisponible)
}

func TestEstablecerRechazaSesionInvalida(t *testing.T) {
	m := NewManager(&fuenteFake{fn: func(uuid.UUID) (*Sesion, error) { return nil, nil }}, newRespaldoFake())
	err := m.Establecer(context.Background(), &Sesion{UsuarioID: uuid.New()})
	assert.ErrorIs(t, err, ErrSesionNoDisponible)
}

func TestEstablecerNotificaYGuardaRespaldo(t *testing.T) {
	usuarioID := uuid.New()
	respaldo := newRespaldoFake()
	m := NewManager(&fuenteFake{fn: func(uuid.UUID) (*Sesion, error) { return nil, nil }}, respaldo)

	var notificada *Sesion
	m.Suscribir(func(_ uuid.UUID, s *Sesion) { notificada = s })

	require.NoError(t, m.Establecer(context.Background(), sesionDemo(usuarioID)))
	require.NotNil(t, notificada)
	assert.Equal(t, usuarioID, notificada.UsuarioID)
	assert.Contains(t, respaldo.snapshots, usuarioID)
}

func TestCerrarEsIdempotenteYNotificaNil(t *testing.T) {
	usuarioID := uuid.New()
	respaldo := newRespaldoFake()
	m := NewManager(&fuenteFake{fn: func(id uuid.UUID) (*Sesion, error) { return sesionDemo(id), nil }}, respaldo)

	require.NoError(t, m.Establecer(context.Background(), sesionDemo(usuarioID)))

	notificaciones := 0
	var ultima *Sesion
	m.Suscribir(func(_ uuid.UUID, s *Sesion) {
		notificaciones++
		ultima = s
	})

	m.Cerrar(context.Background(), usuarioID)
	m.Cerrar(context.Background(), usuarioID) // segunda vez: sin efecto, sin pánico

	assert.Equal(t, 2, notificaciones)
	assert.Nil(t, ultima)
	assert.Nil(t, m.Actual(usuarioID))
	assert.NotContains(t, respaldo.snapshots, usuarioID)
}

// El logout nunca falla hacia el usuario aunque el respaldo esté caído.
func TestCerrarConRespaldoCaido(t *testing.T) {
	usuarioID := uuid.New()
	respaldo := newRespaldoFake()
	m := NewManager(&fuenteFake{fn: func(id uuid.UUID) (*Sesion, error) { return sesionDemo(id), nil }}, respaldo)
	require.NoError(t, m.Establecer(context.Background(), sesionDemo(usuarioID)))

	respaldo.mu.Lock()
	respaldo.falla = true
	respaldo.mu.Unlock()

	m.Cerrar(context.Background(), usuarioID)
	assert.Nil(t, m.Actual(usuarioID))
}

func TestRefrescarFuerzaFetch(t *testing.T) {
	usuarioID := uuid.New()
	fuente := &fuenteFake{fn: func(id uuid.UUID) (*Sesion, error) { return sesionDemo(id), nil }}
	m := NewManager(fuente, newRespaldoFake())

	_, err := m.Obtener(context.Background(), usuarioID)
	require.NoError(t, err)
	_, err = m.Refrescar(context.Background(), usuarioID)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&fuente.llamadas))
}

// Un logout mientras el fetch está en vuelo gana: el resultado se descarta.
func TestFetchSupersededPorLogout(t *testing.T) {
	usuarioID := uuid.New()
	bloqueo := make(chan struct{})
	fuente := &fuenteFake{fn: func(id uuid.UUID) (*Sesion, error) {
		<-bloqueo
		return sesionDemo(id), nil
	}}
	m := NewManager(fuente, newRespaldoFake())

	resultado := make(chan error, 1)
	go func() {
		_, err := m.Obtener(context.Background(), usuarioID)
		resultado <- err
	}()

	time.Sleep(50 * time.Millisecond) // el fetch ya está en vuelo
	m.Cerrar(context.Background(), usuarioID)
	close(bloqueo)

	assert.ErrorIs(t, <-resultado, ErrSesionNoDisponible)
	assert.Nil(t, m.Actual(usuarioID))
}

// Lecturas concurrentes del mismo usuario comparten un único fetch.
func TestFetchCoalescido(t *testing.T) {
	usuarioID := uuid.New()
	bloqueo := make(chan struct{})
	fuente := &fuenteFake{fn: func(id uuid.UUID) (*Sesion, error) {
		<-bloqueo
		return sesionDemo(id), nil
	}}
	m := NewManager(fuente, newRespaldoFake())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := m.Obtener(context.Background(), usuarioID)
			assert.NoError(t, err)
			assert.NotNil(t, s)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(bloqueo)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fuente.llamadas))
}

// Las copias que entrega el manager son independientes del estado interno.
func TestSesionesInmutables(t *testing.T) {
	usuarioID := uuid.New()
	original := sesionDemo(usuarioID)
	original.PermisosExtra = &permisos.PermisosExtra{Modulos: []permisos.ModuloExtra{permisos.ModuloCaja}}

	m := NewManager(&fuenteFake{fn: func(uuid.UUID) (*Sesion, error) { return nil, nil }}, newRespaldoFake())
	require.NoError(t, m.Establecer(context.Background(), original))

	copia := m.Actual(usuarioID)
	require.NotNil(t, copia)
	copia.Nombre = "mutado"
	copia.PermisosExtra.Modulos[0] = permisos.ModuloReportes

	fresca := m.Actual(usuarioID)
	assert.Equal(t, "Cajero Demo", fresca.Nombre)
	assert.Equal(t, permisos.ModuloCaja, fresca.PermisosExtra.Modulos[0])
}
