package interfaces

import (
	"context"

	control "trading-console/internal/domain/entity/control"
)

// Restarter physically restarts the feed process.
type Restarter interface {
	Restart(ctx context.Context) (string, error)
}

// SettingsStore persists bridge credentials.
type SettingsStore interface {
	Save(settings control.BridgeSettings) error
	Load() (*control.BridgeSettings, error)
}
