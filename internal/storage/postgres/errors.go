package postgres

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/vailshop/catalog-admin/internal/domain/catalog"
)

// mapError translates driver errors into the catalog failure taxonomy:
// missing rows become ErrNotFound, SQLSTATE class 23 (integrity constraint
// violations) becomes ErrConstraint with the store's detail attached, and
// anything else is wrapped with the failing operation for diagnosis. Every
// failure is logged here, at the point of detection, with the operation,
// resource kind and id, then re-signaled to the caller.
func mapError(ctx context.Context, err error, op, kind, id string) error {
	var (
		pgErr  *pgconn.PgError
		mapped error
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		mapped = catalog.ErrNotFound
	case errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23"):
		mapped = errors.Wrapf(catalog.ErrConstraint, "%s %s: %s", op, kind, pgErr.Message)
	default:
		mapped = errors.Wrapf(err, "%s %s", op, kind)
	}

	zctx.From(ctx).Error("store operation failed",
		zap.String("op", op),
		zap.String("kind", kind),
		zap.String("id", id),
		zap.Error(mapped),
	)
	return mapped
}
