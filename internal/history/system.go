package history

import (
	"context"

	"github.com/ocrdesk/ocrdesk/pkg/pagination"
)

// System defines the history record operations. Implementations handle
// database persistence and the record's backing blob.
type System interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record], error)
	Find(ctx context.Context, id int64) (*Record, error)
	Create(ctx context.Context, cmd CreateCommand) (*Record, error)
	Update(ctx context.Context, id int64, cmd UpdateCommand) (*Record, error)
	Delete(ctx context.Context, id int64) error

	// FindLatestByFileName returns the most recently created record with
	// the given original file name, or nil when none exists.
	FindLatestByFileName(ctx context.Context, fileName string) (*Record, error)
}
