package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ukmcatur/caturbot/internal/domain"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "caturbot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionRoundtrip(t *testing.T) {
	s := newTestStorage(t)

	sess, err := s.GetSession(100)
	require.NoError(t, err)
	require.Nil(t, sess)

	err = s.SaveSession(&domain.Session{
		ChatID:   100,
		Token:    "tok-abc",
		UserID:   7,
		Name:     "Budi",
		Email:    "budi@club.id",
		Role:     domain.RoleMember,
		LoggedIn: true,
	})
	require.NoError(t, err)

	sess, err = s.GetSession(100)
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, "tok-abc", sess.Token)
	require.Equal(t, int64(7), sess.UserID)
	require.Equal(t, domain.RoleMember, sess.Role)
	require.True(t, sess.Active())
}

func TestSessionOverwriteAndClear(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SaveSession(&domain.Session{ChatID: 1, Token: "old", UserID: 1, LoggedIn: true}))
	require.NoError(t, s.SaveSession(&domain.Session{ChatID: 1, Token: "new", UserID: 1, Role: domain.RoleAdmin, LoggedIn: true}))

	sess, err := s.GetSession(1)
	require.NoError(t, err)
	require.Equal(t, "new", sess.Token)
	require.Equal(t, domain.RoleAdmin, sess.Role)

	require.NoError(t, s.ClearSession(1))
	sess, err = s.GetSession(1)
	require.NoError(t, err)
	require.Nil(t, sess)
}

func TestListActiveSessions(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SaveSession(&domain.Session{ChatID: 1, Token: "a", LoggedIn: true}))
	require.NoError(t, s.SaveSession(&domain.Session{ChatID: 2, Token: "b", LoggedIn: false}))
	require.NoError(t, s.SaveSession(&domain.Session{ChatID: 3, Token: "c", LoggedIn: true}))

	active, err := s.ListActiveSessions()
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, int64(1), active[0].ChatID)
	require.Equal(t, int64(3), active[1].ChatID)
}

func TestMarkNotifiedDedupe(t *testing.T) {
	s := newTestStorage(t)

	first, err := s.MarkNotified(1, 42, "daybefore")
	require.NoError(t, err)
	require.True(t, first)

	again, err := s.MarkNotified(1, 42, "daybefore")
	require.NoError(t, err)
	require.False(t, again)

	// different kind is a separate reminder
	other, err := s.MarkNotified(1, 42, "digest")
	require.NoError(t, err)
	require.True(t, other)

	was, err := s.WasNotified(1, 42, "daybefore")
	require.NoError(t, err)
	require.True(t, was)
}
