package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ocrdesk/ocrdesk/internal/storage"
	"github.com/ocrdesk/ocrdesk/pkg/pagination"
	"github.com/ocrdesk/ocrdesk/pkg/query"
	"github.com/ocrdesk/ocrdesk/pkg/repository"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a history repository with database and blob storage integration.
func New(db *sql.DB, storage storage.System, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		storage:    storage,
		logger:     logger.With("system", "history"),
		pagination: pagination,
	}
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		OrderBy("", true)

	filters.Apply(qb)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.Limit)
	records, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	result := pagination.NewPageResult(records, total, page.Page, page.Limit)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id int64) (*Record, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		BuildSingle("Id", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) FindLatestByFileName(ctx context.Context, fileName string) (*Record, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("FileName", fileName).
		OrderBy("", true).
		BuildFirst()

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Create inserts the record first so its id can key the blob, then writes
// the blob. A failed blob write leaves the record behind; processing that
// record later reports the missing file rather than crashing.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Record, error) {
	status := cmd.Status
	if status == "" {
		status = StatusPending
	}

	q := `INSERT INTO file_history(file_name, file_size, file_type, status, page_count)
		VALUES($1, $2, $3, $4, $5)
		RETURNING id, file_name, file_size, file_type, status, result, page_count, created_at`

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record, error) {
		return repository.QueryOne(ctx, tx, q, []any{
			cmd.FileName, cmd.FileSize, cmd.FileType, status, cmd.PageCount,
		}, scanRecord)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if err := r.storage.Store(ctx, rec.StorageKey(), cmd.Data); err != nil {
		r.logger.Error("blob write failed after record creation",
			"id", rec.ID, "storage_key", rec.StorageKey(), "error", err)
		return nil, fmt.Errorf("store file: %w", err)
	}

	r.logger.Info("record created", "id", rec.ID, "file_name", rec.FileName, "status", rec.Status)
	return &rec, nil
}

func (r *repo) Update(ctx context.Context, id int64, cmd UpdateCommand) (*Record, error) {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if cmd.Status != nil {
		args = append(args, *cmd.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if cmd.ClearResult {
		sets = append(sets, "result = NULL")
	} else if cmd.Result != nil {
		args = append(args, *cmd.Result)
		sets = append(sets, fmt.Sprintf("result = $%d", len(args)))
	}

	if len(sets) == 0 {
		return r.Find(ctx, id)
	}

	args = append(args, id)
	q := fmt.Sprintf(`UPDATE file_history SET %s WHERE id = $%d
		RETURNING id, file_name, file_size, file_type, status, result, page_count, created_at`,
		strings.Join(sets, ", "), len(args))

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRecord)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return &rec, nil
}

// Delete removes the blob first, then the record. Blob deletion failures
// are logged and swallowed so a record is never stranded by a storage
// error.
func (r *repo) Delete(ctx context.Context, id int64) error {
	rec, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	if err := r.storage.Delete(ctx, rec.StorageKey()); err != nil {
		r.logger.Error("blob cleanup failed", "storage_key", rec.StorageKey(), "error", err)
	}

	q := `DELETE FROM file_history WHERE id = $1`
	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, q, id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("record deleted", "id", id)
	return nil
}
