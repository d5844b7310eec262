// internal/common/config/session.go
package config

import (
	"context"

	"wanted-applier/internal/models"
)

// FileSessionStore serves the token cached in the config file. It holds
// nothing unless account.cache_token is set.
type FileSessionStore struct {
	loader *Loader
	cfg    *Config
}

func (l *Loader) SessionStore(cfg *Config) *FileSessionStore {
	return &FileSessionStore{loader: l, cfg: cfg}
}

func (s *FileSessionStore) Load(_ context.Context, _ string) (*models.Session, error) {
	if !s.cfg.Account.CacheToken {
		return nil, nil
	}
	return s.cfg.Account.Session(), nil
}

func (s *FileSessionStore) Store(_ context.Context, _ string, session *models.Session) error {
	return s.loader.SaveSession(s.cfg, session)
}
