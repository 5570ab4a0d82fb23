package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store reads persisted subscription records.
type Store interface {
	// Get returns the subscription of userID.
	// Returns ErrSubscriptionNotFound if the user has no subscription row.
	Get(ctx context.Context, userID uuid.UUID) (*Record, error)
}
