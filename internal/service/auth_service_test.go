package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"ventifai/internal/config"
	"ventifai/internal/dto"
	"ventifai/internal/model"
	"ventifai/internal/repository"
	"ventifai/internal/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── In-memory UsuarioRepository / NegocioRepository ──────────────────────────

type memUsuarioRepo struct {
	mu       sync.Mutex
	usuarios map[uuid.UUID]*model.Usuario
}

func newMemUsuarioRepo() *memUsuarioRepo {
	return &memUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *memUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	copia := *u
	r.usuarios[u.ID] = &copia
	return nil
}

func (r *memUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.usuarios {
		if strings.EqualFold(u.Email, email) && u.Activo {
			copia := *u
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *u
	return &copia, nil
}

func (r *memUsuarioRepo) ListByNegocio(_ context.Context, negocioID uuid.UUID) ([]model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.NegocioID == negocioID && u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *u
	r.usuarios[u.ID] = &copia
	return nil
}

func (r *memUsuarioRepo) SetPermisosExtra(_ context.Context, id uuid.UUID, extra *model.PermisosExtraJSON) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PermisosExtra = extra
	return nil
}

func (r *memUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = false
	return nil
}

var _ repository.UsuarioRepository = (*memUsuarioRepo)(nil)

type memNegocioRepo struct {
	mu       sync.Mutex
	negocios map[uuid.UUID]*model.Negocio
}

func newMemNegocioRepo() *memNegocioRepo {
	return &memNegocioRepo{negocios: make(map[uuid.UUID]*model.Negocio)}
}

func (r *memNegocioRepo) Create(_ context.Context, n *model.Negocio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	copia := *n
	r.negocios[n.ID] = &copia
	return nil
}

func (r *memNegocioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Negocio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.negocios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *n
	return &copia, nil
}

func (r *memNegocioRepo) Update(_ context.Context, n *model.Negocio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *n
	r.negocios[n.ID] = &copia
	return nil
}

var _ repository.NegocioRepository = (*memNegocioRepo)(nil)

// respaldoNulo never has a snapshot; session fallback always fails with it.
type respaldoNulo struct{}

func (respaldoNulo) Guardar(context.Context, *session.Sesion) error { return nil }
func (respaldoNulo) Recuperar(context.Context, uuid.UUID) (*session.Sesion, error) {
	return nil, errors.New("sin snapshot")
}
func (respaldoNulo) Eliminar(context.Context, uuid.UUID) error { return nil }

func cfgDemo() *config.Config {
	return &config.Config{
		JWTSecret:          "secreto-de-test",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	}
}

func nuevoAuthService() (AuthService, *memUsuarioRepo, *session.Manager) {
	usuarios := newMemUsuarioRepo()
	negocios := newMemNegocioRepo()
	sesiones := session.NewManager(session.NewFuenteUsuarios(usuarios), respaldoNulo{})
	return NewAuthService(usuarios, negocios, sesiones, cfgDemo()), usuarios, sesiones
}

func registroDemo() dto.RegisterRequest {
	return dto.RegisterRequest{
		NombreNegocio: "Abarrotes Demo",
		Nombre:        "Dueña Demo",
		Email:         "duena@demo.com",
		Password:      "supersecreta",
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestRegisterCreaNegocioYDueno(t *testing.T) {
	svc, usuarios, sesiones := nuevoAuthService()

	resp, err := svc.Register(context.Background(), registroDemo())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "dueño", resp.Session.Rol)

	user, err := usuarios.FindByEmail(context.Background(), "duena@demo.com")
	require.NoError(t, err)
	assert.Equal(t, "dueño", user.Rol)
	assert.NotEqual(t, uuid.Nil, user.NegocioID)

	// La sesión queda instalada en el manager.
	ses := sesiones.Actual(user.ID)
	require.NotNil(t, ses)
	assert.Equal(t, "duena@demo.com", ses.Email)
}

func TestRegisterEmailDuplicado(t *testing.T) {
	svc, _, _ := nuevoAuthService()

	_, err := svc.Register(context.Background(), registroDemo())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registroDemo())
	assert.ErrorIs(t, err, ErrEmailEnUso)
}

func TestLogin(t *testing.T) {
	svc, _, _ := nuevoAuthService()
	_, err := svc.Register(context.Background(), registroDemo())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "DUENA@demo.com", Password: "supersecreta"})
	require.NoError(t, err)
	assert.Equal(t, "dueño", resp.Session.Rol)
	assert.False(t, resp.PrimerAcceso)
}

func TestLoginCredencialesInvalidas(t *testing.T) {
	svc, _, _ := nuevoAuthService()
	_, err := svc.Register(context.Background(), registroDemo())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "duena@demo.com", Password: "incorrecta"})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "nadie@demo.com", Password: "supersecreta"})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)
}

func TestRefresh(t *testing.T) {
	svc, _, _ := nuevoAuthService()
	registro, err := svc.Register(context.Background(), registroDemo())
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), registro.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Refresh(context.Background(), "no-es-un-token")
	assert.ErrorIs(t, err, ErrTokenInvalido)
}

// Un refresh de un usuario desactivado destruye la sesión en lugar de renovarla.
func TestRefreshUsuarioInactivo(t *testing.T) {
	svc, usuarios, sesiones := nuevoAuthService()
	registro, err := svc.Register(context.Background(), registroDemo())
	require.NoError(t, err)

	user, err := usuarios.FindByEmail(context.Background(), "duena@demo.com")
	require.NoError(t, err)
	require.NoError(t, usuarios.SoftDelete(context.Background(), user.ID))

	_, err = svc.Refresh(context.Background(), registro.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalido)
	assert.Nil(t, sesiones.Actual(user.ID))
}

func TestLogoutNuncaFalla(t *testing.T) {
	svc, usuarios, sesiones := nuevoAuthService()
	_, err := svc.Register(context.Background(), registroDemo())
	require.NoError(t, err)
	user, err := usuarios.FindByEmail(context.Background(), "duena@demo.com")
	require.NoError(t, err)

	svc.Logout(context.Background(), user.ID)
	assert.Nil(t, sesiones.Actual(user.ID))

	// Repetirlo, o hacerlo sin sesión, no produce errores ni pánicos.
	svc.Logout(context.Background(), user.ID)
	svc.Logout(context.Background(), uuid.New())
}

func TestCambiarPasswordPrimerAcceso(t *testing.T) {
	svc, usuarios, _ := nuevoAuthService()

	hash, err := bcrypt.GenerateFromPassword([]byte("temporal123"), 12)
	require.NoError(t, err)
	empleado := &model.Usuario{
		NegocioID:    uuid.New(),
		Nombre:       "Cajero Nuevo",
		Email:        "cajero@demo.com",
		PasswordHash: string(hash),
		Rol:          "cajero",
		PrimerAcceso: true,
		Activo:       true,
	}
	require.NoError(t, usuarios.Create(context.Background(), empleado))

	require.NoError(t, svc.CambiarPasswordPrimerAcceso(context.Background(), empleado.ID, "definitiva99"))

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "cajero@demo.com", Password: "definitiva99"})
	require.NoError(t, err)
	assert.False(t, resp.PrimerAcceso)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "cajero@demo.com", Password: "temporal123"})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)
}
