package vault

import (
	"context"
	"fmt"
	"sync"

	"github.com/fahmaliyi/acctvault/logger"
)

// Session owns the in-memory vault for one process. Mutations are written
// through to storage and only become visible once the write has succeeded.
type Session struct {
	mu      sync.Mutex
	storage Storage
	current *Vault
	log     *logger.Logger
}

func NewSession(storage Storage, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{storage: storage, current: New(), log: log}
}

// Open loads the vault from storage. A failed read leaves the current
// state untouched and is reported as ErrUnavailable.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.storage.Read(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("read vault")
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	var renamed []string
	s.current, renamed = load(text)
	for _, name := range renamed {
		s.log.Warn().Str("name", name).Msg("duplicate account name renamed on load")
	}
	s.log.Info().Int("records", s.current.Len()).Msg("vault loaded")
	return nil
}

// Reload is Open under another name, for use after the storage location
// has changed.
func (s *Session) Reload(ctx context.Context) error {
	return s.Open(ctx)
}

// SetStorage swaps the persistence collaborator. Call Reload afterwards.
func (s *Session) SetStorage(storage Storage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage = storage
}

// Vault returns the committed snapshot.
func (s *Session) Vault() *Vault {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) Create(ctx context.Context, name, plaintext, password string) error {
	return s.apply(ctx, "create", name, func(v *Vault) (*Vault, error) {
		return v.Create(name, plaintext, password)
	})
}

func (s *Session) Update(ctx context.Context, oldName, newName, plaintext, password string) error {
	return s.apply(ctx, "update", oldName, func(v *Vault) (*Vault, error) {
		return v.Update(oldName, newName, plaintext, password)
	})
}

func (s *Session) Remove(ctx context.Context, name string) error {
	return s.apply(ctx, "remove", name, func(v *Vault) (*Vault, error) {
		return v.Remove(name), nil
	})
}

func (s *Session) Reorder(ctx context.Context, from, to int) error {
	return s.apply(ctx, "reorder", "", func(v *Vault) (*Vault, error) {
		return v.Reorder(from, to)
	})
}

// Reveal decrypts one record's secret. Nothing is retained.
func (s *Session) Reveal(name, password string) (string, error) {
	return s.Vault().Reveal(name, password)
}

func (s *Session) apply(ctx context.Context, op, name string, mutate func(*Vault) (*Vault, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.With().Str("op", op).Logger()

	next, err := mutate(s.current)
	if err != nil {
		log.Debug().Err(err).Str("name", name).Msg("mutation rejected")
		return err
	}
	if err := s.storage.Write(ctx, next.Serialize()); err != nil {
		log.Error().Err(err).Str("name", name).Msg("write vault")
		return err
	}
	s.current = next
	log.Info().Str("name", name).Int("records", next.Len()).Msg("vault saved")
	return nil
}
