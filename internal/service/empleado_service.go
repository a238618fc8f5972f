package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"ventifai/internal/dto"
	"ventifai/internal/model"
	"ventifai/internal/permisos"
	"ventifai/internal/repository"
	"ventifai/internal/session"
	"ventifai/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmpleadoNoEncontrado = errors.New("empleado no encontrado")
	ErrNegocioAjeno         = errors.New("el empleado pertenece a otro negocio")
)

type EmpleadoService interface {
	Crear(ctx context.Context, negocioID uuid.UUID, req dto.CrearEmpleadoRequest) (*dto.CrearEmpleadoResponse, error)
	Listar(ctx context.Context, negocioID uuid.UUID) ([]dto.EmpleadoResponse, error)
	ActualizarRol(ctx context.Context, negocioID, empleadoID uuid.UUID, rol string) (*dto.EmpleadoResponse, error)
	AsignarPermisosExtra(ctx context.Context, negocioID, empleadoID uuid.UUID, asignadoPor string, req dto.PermisosExtraRequest) (*dto.EmpleadoResponse, error)
	QuitarPermisosExtra(ctx context.Context, negocioID, empleadoID uuid.UUID) (*dto.EmpleadoResponse, error)
	Desactivar(ctx context.Context, negocioID, empleadoID uuid.UUID) error
}

type empleadoService struct {
	usuarios   repository.UsuarioRepository
	sesiones   *session.Manager
	dispatcher *worker.Dispatcher
}

func NewEmpleadoService(usuarios repository.UsuarioRepository, sesiones *session.Manager, dispatcher *worker.Dispatcher) EmpleadoService {
	return &empleadoService{usuarios: usuarios, sesiones: sesiones, dispatcher: dispatcher}
}

// Crear registers an employee with a generated temporary password and
// primerAcceso set, and enqueues the credentials email. The password shows up
// exactly once in the response and is never retrievable afterwards.
func (s *empleadoService) Crear(ctx context.Context, negocioID uuid.UUID, req dto.CrearEmpleadoRequest) (*dto.CrearEmpleadoResponse, error) {
	if _, err := s.usuarios.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailEnUso
	}

	temporal, err := passwordTemporal(12)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(temporal), 12)
	if err != nil {
		return nil, err
	}

	user := &model.Usuario{
		NegocioID:    negocioID,
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: string(hash),
		Rol:          req.Rol,
		PrimerAcceso: true,
		Activo:       true,
	}
	if err := s.usuarios.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
		ToEmail: user.Email,
		Subject: "Tu acceso a VENTIFAI",
		Body: fmt.Sprintf("Hola %s,\n\nTu cuenta fue creada con la contraseña temporal: %s\n"+
			"Deberás cambiarla en tu primer acceso.\n", user.Nombre, temporal),
	}); err != nil {
		// La cuenta ya existe; el correo es mejor-esfuerzo y queda en el log.
		log.Warn().Err(err).Str("email", user.Email).Msg("empleados: no se pudo encolar el correo de alta")
	}

	return &dto.CrearEmpleadoResponse{
		Empleado:         empleadoResponse(user),
		PasswordTemporal: temporal,
	}, nil
}

func (s *empleadoService) Listar(ctx context.Context, negocioID uuid.UUID) ([]dto.EmpleadoResponse, error) {
	users, err := s.usuarios.ListByNegocio(ctx, negocioID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.EmpleadoResponse, len(users))
	for i := range users {
		resp[i] = empleadoResponse(&users[i])
	}
	return resp, nil
}

// ActualizarRol changes the base role. Extras are independent and untouched.
func (s *empleadoService) ActualizarRol(ctx context.Context, negocioID, empleadoID uuid.UUID, rol string) (*dto.EmpleadoResponse, error) {
	user, err := s.delNegocio(ctx, negocioID, empleadoID)
	if err != nil {
		return nil, err
	}
	user.Rol = rol
	if err := s.usuarios.Update(ctx, user); err != nil {
		return nil, err
	}
	s.invalidarSesion(ctx, empleadoID)
	resp := empleadoResponse(user)
	return &resp, nil
}

func (s *empleadoService) AsignarPermisosExtra(ctx context.Context, negocioID, empleadoID uuid.UUID, asignadoPor string, req dto.PermisosExtraRequest) (*dto.EmpleadoResponse, error) {
	user, err := s.delNegocio(ctx, negocioID, empleadoID)
	if err != nil {
		return nil, err
	}

	modulos := make([]permisos.ModuloExtra, 0, len(req.Modulos))
	for _, m := range req.Modulos {
		modulo := permisos.ModuloExtra(m)
		if !permisos.EsModuloValido(modulo) {
			return nil, fmt.Errorf("módulo extra desconocido: %s", m)
		}
		modulos = append(modulos, modulo)
	}

	extra := model.PermisosExtraJSON(permisos.PermisosExtra{
		Modulos:         modulos,
		AsignadoPor:     asignadoPor,
		FechaAsignacion: time.Now(),
		Nota:            req.Nota,
	})
	if err := s.usuarios.SetPermisosExtra(ctx, empleadoID, &extra); err != nil {
		return nil, err
	}
	user.PermisosExtra = &extra

	s.invalidarSesion(ctx, empleadoID)
	resp := empleadoResponse(user)
	return &resp, nil
}

func (s *empleadoService) QuitarPermisosExtra(ctx context.Context, negocioID, empleadoID uuid.UUID) (*dto.EmpleadoResponse, error) {
	user, err := s.delNegocio(ctx, negocioID, empleadoID)
	if err != nil {
		return nil, err
	}
	if err := s.usuarios.SetPermisosExtra(ctx, empleadoID, nil); err != nil {
		return nil, err
	}
	user.PermisosExtra = nil

	s.invalidarSesion(ctx, empleadoID)
	resp := empleadoResponse(user)
	return &resp, nil
}

func (s *empleadoService) Desactivar(ctx context.Context, negocioID, empleadoID uuid.UUID) error {
	if _, err := s.delNegocio(ctx, negocioID, empleadoID); err != nil {
		return err
	}
	if err := s.usuarios.SoftDelete(ctx, empleadoID); err != nil {
		return err
	}
	s.sesiones.Cerrar(ctx, empleadoID)
	return nil
}

// delNegocio loads the employee and enforces the tenant boundary.
func (s *empleadoService) delNegocio(ctx context.Context, negocioID, empleadoID uuid.UUID) (*model.Usuario, error) {
	user, err := s.usuarios.FindByID(ctx, empleadoID)
	if err != nil {
		return nil, ErrEmpleadoNoEncontrado
	}
	if user.NegocioID != negocioID {
		return nil, ErrNegocioAjeno
	}
	return user, nil
}

// invalidarSesion refreshes the cached session so the new role/extras take
// effect immediately — capabilities are derived from the session, never
// cached across changes.
func (s *empleadoService) invalidarSesion(ctx context.Context, empleadoID uuid.UUID) {
	if _, err := s.sesiones.Refrescar(ctx, empleadoID); err != nil {
		log.Debug().Err(err).Str("usuario_id", empleadoID.String()).Msg("empleados: sesión no refrescada (sin sesión activa)")
	}
}

func empleadoResponse(u *model.Usuario) dto.EmpleadoResponse {
	modulos := []string{}
	if e := u.Extra(); e != nil {
		for _, m := range e.Modulos {
			modulos = append(modulos, string(m))
		}
	}
	return dto.EmpleadoResponse{
		ID:           u.ID.String(),
		Nombre:       u.Nombre,
		Email:        u.Email,
		Rol:          u.Rol,
		PrimerAcceso: u.PrimerAcceso,
		ModulosExtra: modulos,
		Activo:       u.Activo,
	}
}

const alfabetoPassword = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func passwordTemporal(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alfabetoPassword))))
		if err != nil {
			return "", err
		}
		b[i] = alfabetoPassword[idx.Int64()]
	}
	return string(b), nil
}
