// Package filestore persiste la sesión del cliente en un archivo JSON local.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// sessionFile formato en disco: claves fijas "token" y "user".
type sessionFile struct {
	Token string           `json:"token"`
	User  dto.UserResponse `json:"user"`
}

// SessionStore implementa repository.SessionRepository sobre un archivo con permisos 0600.
type SessionStore struct {
	path string
}

// NewSessionStore construye el almacén sobre la ruta dada.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Path ruta del archivo de sesión.
func (s *SessionStore) Path() string { return s.path }

// Load devuelve (nil, nil) si no hay sesión. Un archivo corrupto es un error.
func (s *SessionStore) Load() (*entity.Session, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer sesión: %w", err)
	}
	var f sessionFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("sesión ilegible en %s: %w", s.path, err)
	}
	if f.Token == "" {
		return nil, nil
	}
	return &entity.Session{Token: f.Token, User: f.User.ToEntity()}, nil
}

// Save escribe a un temporal y renombra, para no dejar nunca un archivo a medias.
func (s *SessionStore) Save(session entity.Session) error {
	raw, err := json.MarshalIndent(sessionFile{Token: session.Token, User: dto.NewUserResponse(session.User)}, "", "  ")
	if err != nil {
		return fmt.Errorf("serializar sesión: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("crear directorio de sesión: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("crear temporal: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("permisos de sesión: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("escribir sesión: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cerrar sesión: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("guardar sesión: %w", err)
	}
	return nil
}

// Clear borra el archivo; que no exista no es error.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("borrar sesión: %w", err)
	}
	return nil
}
