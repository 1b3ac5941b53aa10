package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ukmcatur/caturbot/internal/clients/simcat"
	"github.com/ukmcatur/caturbot/internal/domain"
	"github.com/ukmcatur/caturbot/internal/storage"
)

type fakeUserAPI struct {
	profile         *domain.User
	updated         *domain.User
	passwordChanged bool
	deleted         bool
}

func (f *fakeUserAPI) GetProfile(token string) (*domain.User, error) {
	return f.profile, nil
}

func (f *fakeUserAPI) UpdateProfile(token string, user *domain.User) (*domain.User, error) {
	f.updated = user
	return user, nil
}

func (f *fakeUserAPI) ChangePassword(token string, req *simcat.ChangePasswordRequest) error {
	f.passwordChanged = true
	return nil
}

func (f *fakeUserAPI) DeleteAccount(token string) error {
	f.deleted = true
	return nil
}

func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpdateProfileRefreshesSession(t *testing.T) {
	store := newTestStorage(t)
	api := &fakeUserAPI{profile: &domain.User{ID: 7, Name: "Budi", Email: "budi@mail.com"}}
	svc := NewUserService(store, api)

	sess := memberSession()
	require.NoError(t, store.SaveSession(sess))

	form, err := svc.ParseProfileArgs("Budi Santoso | 0812345 | Jl. Merdeka 1")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(sess, form)
	require.NoError(t, err)
	require.Equal(t, "Budi Santoso", updated.Name)
	require.Equal(t, "0812345", api.updated.PhoneNumber)

	saved, err := store.GetSession(sess.ChatID)
	require.NoError(t, err)
	require.Equal(t, "Budi Santoso", saved.Name)
}

func TestParseProfileArgsRequiresName(t *testing.T) {
	svc := NewUserService(newTestStorage(t), &fakeUserAPI{})

	_, err := svc.ParseProfileArgs(" | 0812 | alamat")
	require.Error(t, err)
}

func TestChangePasswordValidation(t *testing.T) {
	api := &fakeUserAPI{}
	svc := NewUserService(newTestStorage(t), api)
	sess := memberSession()

	require.Error(t, svc.ChangePassword(sess, "lama", "baru123", "beda123"))
	require.Error(t, svc.ChangePassword(sess, "lama", "abc", "abc"))
	require.False(t, api.passwordChanged)

	require.NoError(t, svc.ChangePassword(sess, "lama", "baru123", "baru123"))
	require.True(t, api.passwordChanged)
}

func TestDeleteAccountClearsSession(t *testing.T) {
	store := newTestStorage(t)
	api := &fakeUserAPI{}
	svc := NewUserService(store, api)

	sess := memberSession()
	require.NoError(t, store.SaveSession(sess))

	require.NoError(t, svc.DeleteAccount(sess))
	require.True(t, api.deleted)

	saved, err := store.GetSession(sess.ChatID)
	require.NoError(t, err)
	require.Nil(t, saved)
}
