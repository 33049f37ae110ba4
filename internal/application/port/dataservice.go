package port

import (
	"context"

	"github.com/garyjia/rfq-portal/internal/domain/entity"
)

// DataService fetches rows of a named data model. where is an ad hoc predicate
// such as "SELECTED_VENDOR = '42'" and may be empty, as may orderBy.
type DataService interface {
	GetData(ctx context.Context, model, where, orderBy string) ([]entity.Record, error)
}

// DataServiceFunc adapts a function to DataService
type DataServiceFunc func(ctx context.Context, model, where, orderBy string) ([]entity.Record, error)

// GetData calls f
func (f DataServiceFunc) GetData(ctx context.Context, model, where, orderBy string) ([]entity.Record, error) {
	return f(ctx, model, where, orderBy)
}
