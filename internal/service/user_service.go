package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ukmcatur/caturbot/internal/clients/simcat"
	"github.com/ukmcatur/caturbot/internal/domain"
	"github.com/ukmcatur/caturbot/internal/storage"
)

type userAPI interface {
	GetProfile(token string) (*domain.User, error)
	UpdateProfile(token string, user *domain.User) (*domain.User, error)
	ChangePassword(token string, req *simcat.ChangePasswordRequest) error
	DeleteAccount(token string) error
}

type UserService struct {
	storage  *storage.Storage
	api      userAPI
	validate *validator.Validate
}

func NewUserService(s *storage.Storage, api userAPI) *UserService {
	return &UserService{storage: s, api: api, validate: validator.New()}
}

// Profile fetches the session user's account.
func (s *UserService) Profile(sess *domain.Session) (*domain.User, error) {
	user, err := s.api.GetProfile(sess.Token)
	if err != nil {
		return nil, fmt.Errorf("ambil profil: %w", err)
	}
	return user, nil
}

// ProfileForm carries the /ubahprofil dialog fields.
type ProfileForm struct {
	Name        string `validate:"required,min=2"`
	PhoneNumber string
	Address     string
}

// ParseProfileArgs parses "nama | no hp | alamat".
func (s *UserService) ParseProfileArgs(args string) (*ProfileForm, error) {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	form := &ProfileForm{Name: parts[0]}
	if len(parts) > 1 {
		form.PhoneNumber = parts[1]
	}
	if len(parts) > 2 {
		form.Address = parts[2]
	}
	if err := s.validate.Struct(form); err != nil {
		return nil, errors.New("format: /ubahprofil nama | no hp | alamat")
	}
	return form, nil
}

// UpdateProfile edits the account and refreshes the cached session
// fields so the bot greets with the new name.
func (s *UserService) UpdateProfile(sess *domain.Session, form *ProfileForm) (*domain.User, error) {
	current, err := s.api.GetProfile(sess.Token)
	if err != nil {
		return nil, fmt.Errorf("ambil profil: %w", err)
	}
	current.Name = form.Name
	if form.PhoneNumber != "" {
		current.PhoneNumber = form.PhoneNumber
	}
	if form.Address != "" {
		current.Address = form.Address
	}

	updated, err := s.api.UpdateProfile(sess.Token, current)
	if err != nil {
		return nil, fmt.Errorf("ubah profil: %w", err)
	}

	sess.Name = updated.Name
	if err := s.storage.SaveSession(sess); err != nil {
		return nil, fmt.Errorf("simpan sesi: %w", err)
	}
	return updated, nil
}

// PasswordForm carries the /gantipassword dialog fields. Confirm must
// repeat the new password.
type PasswordForm struct {
	Old     string `validate:"required"`
	New     string `validate:"required,min=6"`
	Confirm string `validate:"required,eqfield=New"`
}

// ChangePassword rotates the account password.
func (s *UserService) ChangePassword(sess *domain.Session, old, new_, confirm string) error {
	if err := s.validate.Struct(PasswordForm{Old: old, New: new_, Confirm: confirm}); err != nil {
		return errors.New("password baru minimal 6 karakter dan konfirmasi harus sama")
	}
	err := s.api.ChangePassword(sess.Token, &simcat.ChangePasswordRequest{
		OldPassword:     old,
		NewPassword:     new_,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return fmt.Errorf("ganti password: %w", err)
	}
	return nil
}

// DeleteAccount removes the account on the backend and drops the local
// session.
func (s *UserService) DeleteAccount(sess *domain.Session) error {
	if err := s.api.DeleteAccount(sess.Token); err != nil {
		return fmt.Errorf("hapus akun: %w", err)
	}
	if err := s.storage.ClearSession(sess.ChatID); err != nil {
		return fmt.Errorf("hapus sesi: %w", err)
	}
	return nil
}

// FormatProfile renders the /profil card.
func (s *UserService) FormatProfile(user *domain.User) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👤 <b>%s</b>\n", user.Name))
	sb.WriteString(fmt.Sprintf("✉️ %s\n", user.Email))
	if user.MemberID != "" {
		sb.WriteString(fmt.Sprintf("🪪 %s\n", user.MemberID))
	}
	if user.PhoneNumber != "" {
		sb.WriteString(fmt.Sprintf("📱 %s\n", user.PhoneNumber))
	}
	if user.Address != "" {
		sb.WriteString(fmt.Sprintf("🏠 %s\n", user.Address))
	}
	if user.IsAdmin() {
		sb.WriteString("⭐ Pengurus\n")
	}
	return sb.String()
}
