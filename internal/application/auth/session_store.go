// Package auth mantiene la sesión del cliente: token bearer + identidad, persistidos entre ejecuciones.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/domain/repository"
	"github.com/jhoicas/sweetshop/pkg/jwt"
	"github.com/jhoicas/sweetshop/pkg/logger"
	"github.com/jhoicas/sweetshop/pkg/validate"
)

// SessionStore única dueña de la sesión. Login/Register/Logout actualizan a la vez
// memoria y almacenamiento durable bajo el mismo lock.
type SessionStore struct {
	mu      sync.RWMutex
	session *entity.Session

	api     repository.AuthRepository
	storage repository.SessionRepository
	v       *validate.Validator
	log     *logger.Logger
	now     func() time.Time
}

// NewSessionStore construye el almacén de sesión. Arranca sin sesión hasta Restore.
func NewSessionStore(api repository.AuthRepository, storage repository.SessionRepository, log *logger.Logger) *SessionStore {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionStore{
		api:     api,
		storage: storage,
		v:       validate.Get(),
		log:     log.Component("session"),
		now:     time.Now,
	}
}

// Restore rehidrata la sesión guardada. Sin archivo o con un JWT vencido la sesión queda vacía.
func (s *SessionStore) Restore() error {
	saved, err := s.storage.Load()
	if err != nil {
		return fmt.Errorf("restaurar sesión: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if saved == nil {
		s.session = nil
		return nil
	}
	if jwt.Expired(saved.Token, s.now()) {
		s.log.Info().Str("username", saved.User.Username).Msg("token guardado vencido, se descarta")
		s.session = nil
		return s.storage.Clear()
	}
	s.session = saved
	return nil
}

// Login intercambia usuario y contraseña por token + identidad y los persiste.
func (s *SessionStore) Login(ctx context.Context, username, password string) (entity.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return entity.Identity{}, domain.NewValidationError("username", "Username is required")
	}
	if password == "" {
		return entity.Identity{}, domain.NewValidationError("password", "Password is required")
	}
	session, err := s.api.Login(ctx, username, password)
	if err != nil {
		return entity.Identity{}, err
	}
	return s.establish(*session)
}

// Register valida localmente (usuario, email, longitud de contraseña) antes de llamar a la API.
func (s *SessionStore) Register(ctx context.Context, in repository.Registration) (entity.Identity, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	req := dto.RegisterRequest{Username: in.Username, Email: in.Email, Password: in.Password, Role: in.Role}
	if fe := s.v.First(req); fe != nil {
		return entity.Identity{}, domain.NewValidationError(fe.Field, fe.Message)
	}
	session, err := s.api.Register(ctx, in)
	if err != nil {
		return entity.Identity{}, err
	}
	return s.establish(*session)
}

func (s *SessionStore) establish(session entity.Session) (entity.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Save(session); err != nil {
		return entity.Identity{}, fmt.Errorf("guardar sesión: %w", err)
	}
	s.session = &session
	s.log.Debug().Str("username", session.User.Username).Str("role", session.User.Role).Msg("sesión iniciada")
	return session.User, nil
}

// Logout borra la credencial en memoria y en disco. Después, Credentials() es vacía.
func (s *SessionStore) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	if err := s.storage.Clear(); err != nil {
		return fmt.Errorf("cerrar sesión: %w", err)
	}
	return nil
}

// Credentials credencial para la próxima llamada; vacía sin sesión.
func (s *SessionStore) Credentials() entity.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return entity.Credentials{}
	}
	return s.session.Credentials()
}

// Identity usuario actual y si hay sesión.
func (s *SessionStore) Identity() (entity.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return entity.Identity{}, false
	}
	return s.session.User, true
}

// Authenticated indica si hay sesión.
func (s *SessionStore) Authenticated() bool {
	_, ok := s.Identity()
	return ok
}

// IsAdmin predicado puro sobre el rol actual.
func (s *SessionStore) IsAdmin() bool {
	u, ok := s.Identity()
	return ok && u.IsAdmin()
}

// ForgotPassword solicita el restablecimiento. El token en línea, si llega, solo se devuelve para mostrarlo.
func (s *SessionStore) ForgotPassword(ctx context.Context, email string) (*repository.PasswordResetTicket, error) {
	email = strings.TrimSpace(email)
	if fe := s.v.Var("email", email, "required,email"); fe != nil {
		return nil, domain.NewValidationError(fe.Field, fe.Message)
	}
	return s.api.ForgotPassword(ctx, email)
}

// ResetPassword valida el formulario y, si es correcto, fija la nueva contraseña.
func (s *SessionStore) ResetPassword(ctx context.Context, req ResetRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	return s.api.ResetPassword(ctx, strings.TrimSpace(req.Token), req.NewPassword)
}
