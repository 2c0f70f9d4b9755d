package history

import (
	"net/url"

	"github.com/ocrdesk/ocrdesk/pkg/query"
	"github.com/ocrdesk/ocrdesk/pkg/repository"
)

var projection = query.NewProjectionMap("public", "file_history", "h").
	Project("id", "Id").
	Project("file_name", "FileName").
	Project("file_size", "FileSize").
	Project("file_type", "FileType").
	Project("status", "Status").
	Project("result", "Result").
	Project("page_count", "PageCount").
	Project("created_at", "CreatedAt")

const defaultSort = "CreatedAt"

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	err := s.Scan(
		&r.ID,
		&r.FileName,
		&r.FileSize,
		&r.FileType,
		&r.Status,
		&r.Result,
		&r.PageCount,
		&r.CreatedAt,
	)
	return r, err
}

// Filters contains optional criteria for filtering history queries.
type Filters struct {
	Query  *string
	Status *Status
}

// FiltersFromQuery extracts history filters from URL query parameters.
// A status of "all" disables status filtering.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if q := values.Get("q"); q != "" {
		f.Query = &q
	}

	if s := values.Get("status"); s != "" && s != "all" {
		status := Status(s)
		f.Status = &status
	}

	return f
}

// Apply adds filter conditions to the query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.WhereContains("FileName", f.Query)
	if f.Status != nil {
		b.WhereEquals("Status", *f.Status)
	}
	return b
}
