package auth

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragonbytelabs/taskboard/internal/config"
	"github.com/dragonbytelabs/taskboard/internal/storage"
)

func newTestService() (*Service, *storage.Adapter) {
	adapter := storage.NewAdapter(storage.NewMemoryKV(0), log.New(io.Discard, "", 0))
	return NewService(adapter, config.Default().Auth, log.New(io.Discard, "", 0)), adapter
}

func TestLogin(t *testing.T) {
	s, adapter := newTestService()
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Login("intern@demo.com", "intern123", true))
	assert.True(t, s.IsAuthenticated())

	u := s.CurrentUser()
	require.NotNil(t, u)
	assert.Equal(t, "intern@demo.com", u.Email)
	assert.True(t, u.RememberMe)

	persisted := adapter.LoadUser()
	require.NotNil(t, persisted)
	assert.Equal(t, *u, *persisted)
}

func TestLogin_RejectsWrongCredentials(t *testing.T) {
	s, _ := newTestService()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong email", "admin@demo.com", "intern123"},
		{"wrong password", "intern@demo.com", "letmein"},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Login(tt.email, tt.password, false), ErrInvalidCredentials)
			assert.False(t, s.IsAuthenticated())
		})
	}
}

func TestLogout(t *testing.T) {
	s, adapter := newTestService()

	require.NoError(t, s.Login("intern@demo.com", "intern123", false))
	s.Logout()

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.CurrentUser())
	assert.Nil(t, adapter.LoadUser())
}

func TestNewService_RestoresPersistedSession(t *testing.T) {
	adapter := storage.NewAdapter(storage.NewMemoryKV(0), log.New(io.Discard, "", 0))

	first := NewService(adapter, config.Default().Auth, log.New(io.Discard, "", 0))
	require.NoError(t, first.Login("intern@demo.com", "intern123", true))

	second := NewService(adapter, config.Default().Auth, log.New(io.Discard, "", 0))
	assert.True(t, second.IsAuthenticated(), "a persisted session survives a restart")
}
