package repository

import (
	"context"

	"parish/internal/domain/entity"
)

// IntegrationRepository reads admin-managed external service bindings.
type IntegrationRepository interface {
	// ListActive returns the active integrations for a service category,
	// ordered by ascending ID. The order decides dispatch priority.
	ListActive(ctx context.Context, service string) ([]*entity.ServiceIntegration, error)
}
