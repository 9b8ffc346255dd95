// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/byte-squad-abac/bookreader/internal/config"
	"github.com/byte-squad-abac/bookreader/internal/home"
	"github.com/byte-squad-abac/bookreader/internal/library"
	"github.com/byte-squad-abac/bookreader/internal/session"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Library       *library.Library
	SessionStore  *session.Store
	ConfigManager *config.Manager
	Home          *home.Dir
	Logger        *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// LibraryFrom extracts the document library from context.
func LibraryFrom(ctx context.Context) *library.Library {
	if s := ServicesFrom(ctx); s != nil {
		return s.Library
	}
	return nil
}

// SessionStoreFrom extracts the reading-session store from context.
func SessionStoreFrom(ctx context.Context) *session.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.SessionStore
	}
	return nil
}

// ConfigManagerFrom extracts the config manager from context.
func ConfigManagerFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigManager
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}
