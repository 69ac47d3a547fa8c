package auth_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sweetshop/internal/application/auth"
	"github.com/jhoicas/sweetshop/internal/application/sandbox"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/domain/repository"
	"github.com/jhoicas/sweetshop/internal/infrastructure/api"
	"github.com/jhoicas/sweetshop/internal/infrastructure/filestore"
	"github.com/jhoicas/sweetshop/internal/sandboxtest"
	pkgjwt "github.com/jhoicas/sweetshop/pkg/jwt"
	"github.com/jhoicas/sweetshop/pkg/logger"
)

// fakeAuthAPI cuenta llamadas para comprobar que la validación local no despacha nada.
type fakeAuthAPI struct {
	calls   int
	session *entity.Session
	err     error
}

func (f *fakeAuthAPI) Login(_ context.Context, _, _ string) (*entity.Session, error) {
	f.calls++
	return f.session, f.err
}

func (f *fakeAuthAPI) Register(_ context.Context, _ repository.Registration) (*entity.Session, error) {
	f.calls++
	return f.session, f.err
}

func (f *fakeAuthAPI) ForgotPassword(_ context.Context, _ string) (*repository.PasswordResetTicket, error) {
	f.calls++
	return &repository.PasswordResetTicket{Message: "ok"}, f.err
}

func (f *fakeAuthAPI) ResetPassword(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return "done", f.err
}

func newStore(t *testing.T, fake repository.AuthRepository) (*auth.SessionStore, *filestore.SessionStore) {
	t.Helper()
	file := filestore.NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	return auth.NewSessionStore(fake, file, logger.Nop()), file
}

func adminSession(token string) *entity.Session {
	return &entity.Session{Token: token, User: entity.Identity{ID: 7, Username: "ana", Role: entity.RoleAdmin}}
}

// ────────────────────────────────────────────────────────────────
// Login / Logout / Restore
// ────────────────────────────────────────────────────────────────

func TestLogin_PersisteYExponeCredencial(t *testing.T) {
	fake := &fakeAuthAPI{session: adminSession("tok-1")}
	store, file := newStore(t, fake)

	u, err := store.Login(context.Background(), "ana", "password123")
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.True(t, store.IsAdmin())
	assert.Equal(t, entity.Credentials{Token: "tok-1"}, store.Credentials())

	saved, err := file.Load()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "tok-1", saved.Token)
}

func TestLogin_ErrorDelServidorTextual(t *testing.T) {
	fake := &fakeAuthAPI{err: &domain.APIError{Kind: domain.ErrUnauthorized, Status: 401, Detail: "Incorrect username or password"}}
	store, _ := newStore(t, fake)

	_, err := store.Login(context.Background(), "ana", "mala-clave")
	require.Error(t, err)
	assert.Equal(t, "Incorrect username or password", err.Error())
	assert.Equal(t, 1, fake.calls, "sin reintentos automáticos")
	assert.False(t, store.Authenticated())
}

func TestLogout_LimpiaMemoriaYDisco(t *testing.T) {
	fake := &fakeAuthAPI{session: adminSession("tok-1")}
	store, file := newStore(t, fake)
	_, err := store.Login(context.Background(), "ana", "password123")
	require.NoError(t, err)

	require.NoError(t, store.Logout())

	assert.True(t, store.Credentials().Empty())
	assert.False(t, store.Authenticated())
	assert.False(t, store.IsAdmin())
	saved, err := file.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestRestore_RehidrataOInicioVacio(t *testing.T) {
	// Caso 1: sin archivo
	store, file := newStore(t, &fakeAuthAPI{})
	require.NoError(t, store.Restore())
	assert.False(t, store.Authenticated())

	// Caso 2: con sesión guardada (token opaco)
	require.NoError(t, file.Save(*adminSession("opaco")))
	require.NoError(t, store.Restore())
	u, ok := store.Identity()
	require.True(t, ok)
	assert.Equal(t, "ana", u.Username)
}

func TestRestore_JWTVencidoSeDescarta(t *testing.T) {
	store, file := newStore(t, &fakeAuthAPI{})
	expired, err := pkgjwt.Generate("cualquier-secreto", 7, "ana", "admin", "test", -10)
	require.NoError(t, err)
	require.NoError(t, file.Save(*adminSession(expired)))

	require.NoError(t, store.Restore())
	assert.False(t, store.Authenticated())
	saved, err := file.Load()
	require.NoError(t, err)
	assert.Nil(t, saved, "la sesión vencida también se borra del disco")
}

// ────────────────────────────────────────────────────────────────
// Validación local
// ────────────────────────────────────────────────────────────────

func TestRegister_ValidacionLocalSinPeticion(t *testing.T) {
	cases := []struct {
		name string
		in   repository.Registration
		msg  string
	}{
		{"sin usuario", repository.Registration{Email: "a@b.co", Password: "password123"}, "Username is required"},
		{"email inválido", repository.Registration{Username: "ana", Email: "ana", Password: "password123"}, "Invalid email format"},
		{"password corta", repository.Registration{Username: "ana", Email: "a@b.co", Password: "abc1234"}, "Password must be at least 8 characters long"},
		{"rol desconocido", repository.Registration{Username: "ana", Email: "a@b.co", Password: "password123", Role: "root"}, "Role must be one of: user, admin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeAuthAPI{}
			store, _ := newStore(t, fake)
			_, err := store.Register(context.Background(), tc.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, tc.msg, err.Error())
			assert.Zero(t, fake.calls)
		})
	}
}

func TestLogin_CamposVacios(t *testing.T) {
	fake := &fakeAuthAPI{}
	store, _ := newStore(t, fake)
	_, err := store.Login(context.Background(), "  ", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = store.Login(context.Background(), "ana", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, fake.calls)
}

// Restablecer con "abc1234" (7 caracteres) falla en local sin enviar nada.
func TestResetPassword_SieteCaracteres(t *testing.T) {
	fake := &fakeAuthAPI{}
	store, _ := newStore(t, fake)

	_, err := store.ResetPassword(context.Background(), auth.ResetRequest{Token: "tok", NewPassword: "abc1234", Confirm: "abc1234"})
	require.Error(t, err)
	assert.Equal(t, "Password must be at least 8 characters long", err.Error())
	assert.Zero(t, fake.calls)
}

func TestResetRequest_OrdenDeValidacion(t *testing.T) {
	// Caso 1: no coinciden, aunque además sea corta y falte el token
	err := auth.ResetRequest{NewPassword: "abc", Confirm: "abd"}.Validate()
	assert.Equal(t, auth.MsgPasswordsMismatch, err.Error())

	// Caso 2: coinciden pero corta y sin token
	err = auth.ResetRequest{NewPassword: "abc", Confirm: "abc"}.Validate()
	assert.Equal(t, auth.MsgPasswordTooShort, err.Error())

	// Caso 3: todo bien salvo el token
	err = auth.ResetRequest{NewPassword: "password123", Confirm: "password123"}.Validate()
	assert.Equal(t, auth.MsgResetTokenMissing, err.Error())

	assert.NoError(t, auth.ResetRequest{Token: "t", NewPassword: "password123", Confirm: "password123"}.Validate())
}

// ────────────────────────────────────────────────────────────────
// Integración contra el sandbox
// ────────────────────────────────────────────────────────────────

func TestIntegracion_LogoutDejaLlamadasAnonimas(t *testing.T) {
	srv := sandboxtest.New(t, sandboxtest.Options{Seed: true})
	client := api.NewClient(api.ClientConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	store := auth.NewSessionStore(api.NewAuthRepository(client), filestore.NewSessionStore(filepath.Join(t.TempDir(), "s.json")), nil)
	sweets := api.NewSweetRepository(client)
	ctx := context.Background()

	_, err := store.Login(ctx, sandbox.SeedUserUsername, sandbox.SeedUserPassword)
	require.NoError(t, err)
	_, err = sweets.List(ctx, store.Credentials())
	require.NoError(t, err)

	require.NoError(t, store.Logout())
	_, err = sweets.List(ctx, store.Credentials())
	assert.True(t, errors.Is(err, domain.ErrUnauthorized), "tras logout la llamada es anónima")
}

func TestIntegracion_RestablecerConTokenDelEnlace(t *testing.T) {
	srv := sandboxtest.New(t, sandboxtest.Options{Seed: true})
	client := api.NewClient(api.ClientConfig{BaseURL: srv.URL})
	store := auth.NewSessionStore(api.NewAuthRepository(client), filestore.NewSessionStore(filepath.Join(t.TempDir(), "s.json")), nil)
	ctx := context.Background()

	ticket, err := store.ForgotPassword(ctx, "alice@sweetshop.local")
	require.NoError(t, err)
	require.NotEmpty(t, ticket.Token)

	msg, err := store.ResetPassword(ctx, auth.ResetRequest{Token: ticket.Token, NewPassword: "nueva-clave-9", Confirm: "nueva-clave-9"})
	require.NoError(t, err)
	assert.Equal(t, "Password has been reset successfully", msg)

	_, err = store.Login(ctx, sandbox.SeedUserUsername, "nueva-clave-9")
	assert.NoError(t, err)
}
