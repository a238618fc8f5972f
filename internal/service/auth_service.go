package service

import (
	"context"
	"errors"
	"time"

	"ventifai/internal/config"
	"ventifai/internal/dto"
	"ventifai/internal/model"
	"ventifai/internal/repository"
	"ventifai/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrCredencialesInvalidas = errors.New("credenciales inválidas")
	ErrTokenInvalido         = errors.New("refresh token inválido o expirado")
	ErrEmailEnUso            = errors.New("el correo ya está registrado")
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, usuarioID uuid.UUID)
	CambiarPasswordPrimerAcceso(ctx context.Context, usuarioID uuid.UUID, nuevaPassword string) error
}

type authService struct {
	usuarios repository.UsuarioRepository
	negocios repository.NegocioRepository
	sesiones *session.Manager
	cfg      *config.Config
}

func NewAuthService(usuarios repository.UsuarioRepository, negocios repository.NegocioRepository, sesiones *session.Manager, cfg *config.Config) AuthService {
	return &authService{usuarios: usuarios, negocios: negocios, sesiones: sesiones, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.usuarios.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrCredencialesInvalidas
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredencialesInvalidas
	}
	return s.emitirSesion(ctx, user)
}

// Register creates the negocio (tenant) and its dueño in one step, then logs
// the new owner in.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error) {
	if _, err := s.usuarios.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailEnUso
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}

	negocio := &model.Negocio{Nombre: req.NombreNegocio, Activo: true}
	if err := s.negocios.Create(ctx, negocio); err != nil {
		return nil, err
	}

	user := &model.Usuario{
		NegocioID:    negocio.ID,
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: string(hash),
		Rol:          "dueño",
		Activo:       true,
	}
	if err := s.usuarios.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.emitirSesion(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalido
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalido
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrTokenInvalido
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrTokenInvalido
	}

	user, err := s.usuarios.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		// Un refresh rechazado destruye la sesión: hace falta re-login.
		s.sesiones.Cerrar(ctx, uid)
		return nil, ErrTokenInvalido
	}
	return s.emitirSesion(ctx, user)
}

// Logout clears the session regardless of any remote outcome; it never fails.
func (s *authService) Logout(ctx context.Context, usuarioID uuid.UUID) {
	s.sesiones.Cerrar(ctx, usuarioID)
}

func (s *authService) CambiarPasswordPrimerAcceso(ctx context.Context, usuarioID uuid.UUID, nuevaPassword string) error {
	user, err := s.usuarios.FindByID(ctx, usuarioID)
	if err != nil {
		return ErrCredencialesInvalidas
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(nuevaPassword), 12)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.PrimerAcceso = false
	if err := s.usuarios.Update(ctx, user); err != nil {
		return err
	}
	// La sesión cacheada queda obsoleta; el siguiente fetch la renueva.
	_, err = s.sesiones.Refrescar(ctx, usuarioID)
	return err
}

// emitirSesion installs the canonical session in the manager and issues the
// token pair.
func (s *authService) emitirSesion(ctx context.Context, user *model.Usuario) (*dto.LoginResponse, error) {
	ses := &session.Sesion{
		UsuarioID:     user.ID,
		Rol:           user.Rol,
		NegocioID:     user.NegocioID,
		Email:         user.Email,
		Nombre:        user.Nombre,
		PrimerAcceso:  user.PrimerAcceso,
		PermisosExtra: user.Extra(),
	}
	if err := s.sesiones.Establecer(ctx, ses); err != nil {
		return nil, err
	}

	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		PrimerAcceso: user.PrimerAcceso,
		Session:      SessionInfoDe(ses),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    user.ID.String(),
		"negocio_id": user.NegocioID.String(),
		"rol":        user.Rol,
		"exp":        time.Now().Add(duration).Unix(),
		"iat":        time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// SessionInfoDe maps the domain session into its wire shape.
func SessionInfoDe(s *session.Sesion) dto.SessionInfo {
	return dto.SessionInfo{
		UserID:        s.UsuarioID.String(),
		Rol:           s.Rol,
		NegocioID:     s.NegocioID.String(),
		Email:         s.Email,
		Nombre:        s.Nombre,
		PrimerAcceso:  s.PrimerAcceso,
		PermisosExtra: s.PermisosExtra,
	}
}
