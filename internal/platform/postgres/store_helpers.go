package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/studytrack-api/internal/platform/logger"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// logStoreError logs unexpected failures and passes err through. Expected
// outcomes (not found, duplicates, foreign keys) are logged at debug.
func logStoreError(ctx context.Context, fallback *slog.Logger, entity, op string, err error) error {
	if err == nil {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, fallback)
	if store.IsNotFoundError(err) || store.IsDuplicateError(err) || isExpectedConstraint(err) {
		log.Debug(entity+" "+op+" rejected", slog.String("error", err.Error()))
		return err
	}
	log.Error("failed to "+op+" "+entity, slog.String("error", err.Error()))
	return store.NewStoreError(entity, op, "database error", err)
}

func isExpectedConstraint(err error) bool {
	return errors.Is(err, store.ErrForeignKey) || errors.Is(err, store.ErrInvalidEntity)
}
