// internal/common/auth/session.go
package auth

import (
	"context"
	"time"

	"wanted-applier/internal/common/logger"
	"wanted-applier/internal/models"
)

// SessionStore is somewhere a session can be cached between runs. Load returns
// nil, nil when nothing is stored.
type SessionStore interface {
	Load(ctx context.Context, email string) (*models.Session, error)
	Store(ctx context.Context, email string, session *models.Session) error
}

// Resolver finds a usable session: the first store holding a valid one wins
// and the stores before it are refilled from it. Otherwise it logs in and
// writes the fresh session back to every store.
type Resolver struct {
	login  *Client
	stores []SessionStore
	logger logger.Logger
	now    func() time.Time
}

func NewResolver(login *Client, log logger.Logger, stores ...SessionStore) *Resolver {
	return &Resolver{
		login:  login,
		stores: stores,
		logger: log.WithFields(map[string]interface{}{"component": "session"}),
		now:    time.Now,
	}
}

func (r *Resolver) Resolve(ctx context.Context, email, password string) (*models.Session, error) {
	now := r.now()
	for i, store := range r.stores {
		session, err := store.Load(ctx, email)
		if err != nil {
			r.logger.Warn("Session cache unavailable", map[string]interface{}{
				"store": i,
				"error": err.Error(),
			})
			continue
		}
		if session.Valid(now) {
			r.logger.Debug("Reusing cached session", map[string]interface{}{
				"store":     i,
				"expiresAt": session.ExpiresAt().Format(time.RFC3339),
			})
			r.storeAll(ctx, email, session, r.stores[:i])
			return session, nil
		}
	}

	session, err := r.login.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Logged in", map[string]interface{}{
		"email":     email,
		"expiresAt": session.ExpiresAt().Format(time.RFC3339),
	})

	r.storeAll(ctx, email, session, r.stores)
	return session, nil
}

func (r *Resolver) storeAll(ctx context.Context, email string, session *models.Session, stores []SessionStore) {
	for i, store := range stores {
		if err := store.Store(ctx, email, session); err != nil {
			r.logger.Warn("Failed to cache session", map[string]interface{}{
				"store": i,
				"error": err.Error(),
			})
		}
	}
}
