package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"

	"github.com/ukmcatur/caturbot/internal/clients/simcat"
	"github.com/ukmcatur/caturbot/internal/domain"
	"github.com/ukmcatur/caturbot/internal/storage"
)

var ErrNotLoggedIn = errors.New("belum login, gunakan /login dulu")

type authAPI interface {
	Login(email, password string) (*simcat.AuthResponse, error)
	Register(user *domain.User) (*domain.User, error)
	GetProfile(token string) (*domain.User, error)
}

type AuthService struct {
	storage  *storage.Storage
	api      authAPI
	validate *validator.Validate
}

func NewAuthService(s *storage.Storage, api authAPI) *AuthService {
	return &AuthService{
		storage:  s,
		api:      api,
		validate: validator.New(),
	}
}

// RegisterForm carries the /daftar dialog fields.
type RegisterForm struct {
	Name     string `validate:"required,min=2"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// LoginForm carries the /login dialog fields.
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Login exchanges credentials for a token and persists the session for
// the chat. The backend's auth response carries no user id, so the
// profile is fetched right after to know who is asking.
func (s *AuthService) Login(chatID int64, email, password string) (*domain.Session, error) {
	if err := s.validate.Struct(LoginForm{Email: email, Password: password}); err != nil {
		return nil, errors.New("format: /login email password")
	}

	auth, err := s.api.Login(email, password)
	if err != nil {
		return nil, fmt.Errorf("login gagal: %w", err)
	}
	if auth.AccessToken == "" {
		return nil, errors.New("login gagal: " + auth.Message)
	}

	profile, err := s.api.GetProfile(auth.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("ambil profil: %w", err)
	}

	sess := &domain.Session{
		ChatID:   chatID,
		Token:    auth.AccessToken,
		UserID:   profile.ID,
		Name:     profile.Name,
		Email:    profile.Email,
		Role:     domain.Role(auth.Role),
		LoggedIn: true,
	}
	if sess.Role == "" {
		sess.Role = profile.Role
	}

	if err := s.storage.SaveSession(sess); err != nil {
		return nil, fmt.Errorf("simpan sesi: %w", err)
	}
	return sess, nil
}

// Register creates a backend account. The new member still logs in
// afterwards; registration does not start a session.
func (s *AuthService) Register(form *RegisterForm) (*domain.User, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, errors.New("format: /daftar nama | email | password (min 6 karakter)")
	}

	user, err := s.api.Register(&domain.User{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Role:     domain.RoleMember,
	})
	if err != nil {
		return nil, fmt.Errorf("daftar gagal: %w", err)
	}
	return user, nil
}

// Logout wipes the persisted session for the chat.
func (s *AuthService) Logout(chatID int64) error {
	return s.storage.ClearSession(chatID)
}

// Session returns the active session for a chat. An expired token is
// treated as not logged in and the stale session is cleared, so the
// next authenticated action asks for a fresh login instead of failing
// against the backend.
func (s *AuthService) Session(chatID int64, now time.Time) (*domain.Session, error) {
	sess, err := s.storage.GetSession(chatID)
	if err != nil {
		return nil, err
	}
	if !sess.Active() {
		return nil, ErrNotLoggedIn
	}
	if TokenExpired(sess.Token, now) {
		_ = s.storage.ClearSession(chatID)
		return nil, errors.New("sesi kedaluwarsa, silakan /login ulang")
	}
	return sess, nil
}

// TokenExpired inspects the bearer token's exp claim without verifying
// the signature; verification is the backend's job, the client only
// wants to stop sending tokens it knows are dead. Opaque tokens pass
// through; the backend rejects them itself when invalid.
func TokenExpired(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(now)
}
