package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/repository"
)

// tables maps remote resource names onto system-of-record tables
var tables = map[string]string{
	domain.ResourceSales:     "sales",
	domain.ResourceShifts:    "shifts",
	domain.ResourceInventory: "inventory",
}

// Remote is a repository.Remote backed directly by the system-of-record database
type Remote struct {
	pool *pgxpool.Pool
}

// NewRemote creates a direct Postgres remote
func NewRemote(pool *pgxpool.Pool) *Remote {
	return &Remote{pool: pool}
}

func table(resource string) (string, error) {
	t, ok := tables[resource]
	if !ok {
		return "", fmt.Errorf("%w: %s %q", domain.ErrRemoteRejected, ErrMsgUnknownResource, resource)
	}
	return pgx.Identifier{t}.Sanitize(), nil
}

func scanRecord(row pgx.Row, what string) (domain.Record, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		return nil, mapError(err, what)
	}
	return decodeRecord(raw)
}

// Fetch reads one record by id
func (r *Remote) Fetch(ctx context.Context, resource, id string) (domain.Record, error) {
	t, err := table(resource)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT to_jsonb(t) FROM %s t WHERE t.id = $1`, t)
	return scanRecord(r.pool.QueryRow(ctx, query, id), resource+"/"+id)
}

// Insert writes the record's columns and returns the stored row
func (r *Remote) Insert(ctx context.Context, resource string, data domain.Record) (domain.Record, error) {
	t, err := table(resource)
	if err != nil {
		return nil, err
	}
	cols := columns(data)
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrRemoteRejected, ErrMsgNoColumns)
	}
	payload, err := encodeRecord(data)
	if err != nil {
		return nil, err
	}

	list := identList(cols)
	query := fmt.Sprintf(
		`INSERT INTO %[1]s AS t (%[2]s) SELECT %[2]s FROM jsonb_populate_record(NULL::%[1]s, $1::jsonb) RETURNING to_jsonb(t)`,
		t, list)
	return scanRecord(r.pool.QueryRow(ctx, query, payload), resource+"/"+data.ID())
}

// Update applies a partial patch and bumps updated_at
func (r *Remote) Update(ctx context.Context, resource, id string, patch domain.Record) (domain.Record, error) {
	t, err := table(resource)
	if err != nil {
		return nil, err
	}
	cols := columns(patch, domain.FieldID, domain.FieldUpdatedAt, domain.FieldCreatedAt)
	if len(cols) == 0 {
		return r.Fetch(ctx, resource, id)
	}
	payload, err := encodeRecord(patch)
	if err != nil {
		return nil, err
	}

	list := identList(cols)
	query := fmt.Sprintf(
		`UPDATE %[1]s AS t SET (%[2]s) = (SELECT %[2]s FROM jsonb_populate_record(NULL::%[1]s, $1::jsonb)), updated_at = NOW()
		 WHERE t.id = $2 RETURNING to_jsonb(t)`,
		t, list)
	return scanRecord(r.pool.QueryRow(ctx, query, payload, id), resource+"/"+id)
}

// Delete removes a record
func (r *Remote) Delete(ctx context.Context, resource, id string) error {
	t, err := table(resource)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t), id)
	if err != nil {
		return mapError(err, resource+"/"+id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", domain.ErrRecordNotFound, resource, id)
	}
	return nil
}

// List reads the records matching filter
func (r *Remote) List(ctx context.Context, resource string, filter repository.Filter) ([]domain.Record, error) {
	t, err := table(resource)
	if err != nil {
		return nil, err
	}

	query, args := buildListQuery(t, filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, resource)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows, resource)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, resource)
	}
	return out, nil
}

// buildListQuery renders a filter as parameterized SQL
func buildListQuery(table string, filter repository.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	for _, c := range filter.Conditions {
		args = append(args, c.Value)
		col := "t." + pgx.Identifier{c.Field}.Sanitize()
		n := len(args)
		switch c.Op {
		case repository.OpGte:
			where = append(where, fmt.Sprintf("%s >= $%d", col, n))
		case repository.OpLte:
			where = append(where, fmt.Sprintf("%s <= $%d", col, n))
		case repository.OpIn:
			where = append(where, fmt.Sprintf("%s = ANY($%d)", col, n))
		default:
			where = append(where, fmt.Sprintf("%s = $%d", col, n))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT to_jsonb(t) FROM %s t", table)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	if filter.OrderBy != "" {
		dir := "ASC"
		if filter.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY t.%s %s", pgx.Identifier{filter.OrderBy}.Sanitize(), dir)
	}
	if filter.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", filter.Limit)
	}
	return b.String(), args
}

// CompleteSale records the sale, its items and stock movements in one transaction
func (r *Remote) CompleteSale(ctx context.Context, payload domain.Record) (domain.Record, error) {
	body, err := encodeRecord(payload)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, mapError(err, ErrMsgFailedToBeginTransaction)
	}
	defer SafeRollback(ctx, tx)

	rec, err := scanRecord(tx.QueryRow(ctx, `SELECT complete_sale($1::jsonb)`, body), "complete_sale")
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapError(err, ErrMsgFailedToCommit)
	}
	return rec, nil
}

// Ping checks database reachability
func (r *Remote) Ping(ctx context.Context) error {
	return mapError(r.pool.Ping(ctx), "ping")
}
