package sandbox

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/pkg/jwt"
)

// resetTokenTTL vigencia de un token de restablecimiento.
const resetTokenTTL = time.Hour

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthOptions opciones del flujo de autenticación.
type AuthOptions struct {
	JWT JWTConfig
	// ExposeResetToken devuelve el token en la respuesta de forgot-password (solo desarrollo).
	ExposeResetToken bool
	Now              func() time.Time
}

// AuthUseCase casos de uso de autenticación: registro, login y restablecimiento de contraseña.
type AuthUseCase struct {
	accounts AccountStore
	resets   ResetTokenStore
	opts     AuthOptions
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(accounts AccountStore, resets ResetTokenStore, opts AuthOptions) *AuthUseCase {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AuthUseCase{accounts: accounts, resets: resets, opts: opts}
}

// Register crea el usuario (bcrypt) y devuelve token + usuario. El body ya viene validado.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.LoginResponse, error) {
	if existing, err := uc.accounts.AccountByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fail(domain.ErrConflict, msgDuplicateUser)
	}
	if existing, err := uc.accounts.AccountByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fail(domain.ErrConflict, msgDuplicateUser)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	acc, err := uc.accounts.CreateAccount(ctx, Account{
		Identity: entity.Identity{
			Username:  in.Username,
			Email:     strings.ToLower(in.Email),
			Role:      role,
			CreatedAt: uc.opts.Now(),
		},
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}
	return uc.issue(acc.Identity)
}

// Login verifica username/password y emite el JWT.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	acc, err := uc.accounts.AccountByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fail(domain.ErrUnauthorized, msgBadCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(in.Password)); err != nil {
		return nil, fail(domain.ErrUnauthorized, msgBadCredentials)
	}
	return uc.issue(acc.Identity)
}

// ForgotPassword genera un token de un solo uso. La respuesta no revela si el email existe.
func (uc *AuthUseCase) ForgotPassword(ctx context.Context, in dto.ForgotPasswordRequest) (*dto.ForgotPasswordResponse, error) {
	out := &dto.ForgotPasswordResponse{Message: msgResetRequested}
	acc, err := uc.accounts.AccountByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return out, nil
	}
	token := uuid.NewString()
	if err := uc.resets.SaveResetToken(ctx, token, acc.ID, uc.opts.Now().Add(resetTokenTTL)); err != nil {
		return nil, err
	}
	if uc.opts.ExposeResetToken {
		out.ResetToken = token
	}
	return out, nil
}

// ResetPassword consume el token y fija la nueva contraseña.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, in dto.ResetPasswordRequest) (*dto.MessageResponse, error) {
	userID, err := uc.resets.ConsumeResetToken(ctx, in.Token, uc.opts.Now())
	if err != nil {
		return nil, fail(domain.ErrInvalidInput, msgResetInvalid)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err := uc.accounts.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return nil, err
	}
	return &dto.MessageResponse{Message: msgResetDone}, nil
}

// Principal resuelve el usuario de un token ya verificado; el rol se lee del almacén, no del token.
func (uc *AuthUseCase) Principal(ctx context.Context, userID int64) (*entity.Identity, error) {
	acc, err := uc.accounts.AccountByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fail(domain.ErrUnauthorized, "User not found")
	}
	return &acc.Identity, nil
}

func (uc *AuthUseCase) issue(u entity.Identity) (*dto.LoginResponse, error) {
	token, err := jwt.Generate(uc.opts.JWT.Secret, u.ID, u.Username, u.Role, uc.opts.JWT.Issuer, uc.opts.JWT.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{AccessToken: token, TokenType: "bearer", User: dto.NewUserResponse(u)}, nil
}
