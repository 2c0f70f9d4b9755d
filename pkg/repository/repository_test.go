package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ocrdesk/ocrdesk/pkg/repository"
)

var (
	errNotFound  = errors.New("record not found")
	errDuplicate = errors.New("record already exists")
)

func TestMapError(t *testing.T) {
	passthrough := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("find: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{
			"wrapped unique violation",
			fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}),
			errDuplicate,
		},
		{"other pg error", &pgconn.PgError{Code: "23503"}, &pgconn.PgError{Code: "23503"}},
		{"unrelated error", passthrough, passthrough},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)

			if tt.want == nil {
				if got != nil {
					t.Errorf("MapError() = %v, want nil", got)
				}
				return
			}

			var wantPg *pgconn.PgError
			if errors.As(tt.want, &wantPg) {
				var gotPg *pgconn.PgError
				if !errors.As(got, &gotPg) || gotPg.Code != wantPg.Code {
					t.Errorf("MapError() = %v, want pg error code %s", got, wantPg.Code)
				}
				return
			}

			if !errors.Is(got, tt.want) {
				t.Errorf("MapError() = %v, want %v", got, tt.want)
			}
		})
	}
}
