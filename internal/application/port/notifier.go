package port

import (
	"context"

	"github.com/garyjia/rfq-portal/internal/domain/entity"
)

// Notifier hands notices to the presentation layer
type Notifier interface {
	Notify(ctx context.Context, notice entity.Notice)
}
