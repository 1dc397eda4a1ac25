package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/logger"
)

// SafeRollback rolls back a transaction and logs any error that isn't ErrTxClosed
func SafeRollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.FromContext(ctx).Error(LogMsgRollbackFailed, "error", err)
	}
}

// mapError translates driver errors onto the domain error taxonomy
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, what)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == PgErrorCodeInvalidAuthorization ||
			pgErr.Code == PgErrorCodeInvalidPassword ||
			pgErr.Code == PgErrorCodeInsufficientPrivilege:
			return fmt.Errorf("%w: %s: %s", domain.ErrUnauthorized, pgErr.Code, pgErr.Message)
		case strings.HasPrefix(pgErr.Code, PgErrorClassIntegrity),
			strings.HasPrefix(pgErr.Code, PgErrorClassDataException):
			return fmt.Errorf("%w: %s: %s", domain.ErrRemoteRejected, pgErr.Code, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

// columns returns the record's keys in a stable order, minus the excluded ones
func columns(r domain.Record, exclude ...string) []string {
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[e] = struct{}{}
	}
	cols := make([]string, 0, len(r))
	for k := range r {
		if _, ok := skip[k]; !ok {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	return cols
}

// identList quotes each column name
func identList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}

func encodeRecord(r domain.Record) (string, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrMsgEncodeRecord, err)
	}
	return string(raw), nil
}

func decodeRecord(raw []byte) (domain.Record, error) {
	var r domain.Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgDecodeRecord, err)
	}
	return r, nil
}
