package auth

import (
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/dragonbytelabs/taskboard/internal/config"
	"github.com/dragonbytelabs/taskboard/internal/model"
	"github.com/dragonbytelabs/taskboard/internal/storage"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Service checks logins against the single fixed demo credential and keeps
// the session record persisted through the store adapter. There is exactly
// one identity; this is by construction a single-user board.
type Service struct {
	mu     sync.Mutex
	store  *storage.Adapter
	cfg    config.Auth
	logger *log.Logger

	user *model.User
}

func NewService(store *storage.Adapter, cfg config.Auth, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{store: store, cfg: cfg, logger: logger}
	s.user = store.LoadUser()
	return s
}

// Login validates the credential and persists the session. A failed store
// write does not fail the login; the session just won't survive a restart.
func (s *Service) Login(email, password string, rememberMe bool) error {
	email = strings.TrimSpace(email)
	if email != s.cfg.DemoEmail || password != s.cfg.DemoPassword {
		return ErrInvalidCredentials
	}

	u := model.User{Email: email, RememberMe: rememberMe}
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()

	if !s.store.SaveUser(u) {
		s.logger.Printf("auth: session for %s not persisted", email)
	}
	return nil
}

// Logout drops the session in memory and removes the persisted record.
func (s *Service) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if !s.store.ClearUser() {
		s.logger.Printf("auth: persisted session could not be cleared")
	}
}

func (s *Service) CurrentUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}
