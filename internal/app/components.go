package app

import (
	"github.com/painel-economico/indicadores-server/internal/refresh"
	"github.com/painel-economico/indicadores-server/internal/service"
	"github.com/painel-economico/indicadores-server/internal/session"
	"github.com/painel-economico/indicadores-server/internal/store"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// RefreshCoordinator manages the background snapshot refresh. Nil
	// when background refresh is disabled.
	RefreshCoordinator refresh.Coordinator

	// Sessions issues and validates session tokens and runs the
	// expired-session sweep
	Sessions session.Authority

	// Service provides the dashboard business logic
	Service service.Service

	// Store is the persistence backend
	Store store.Store
}
