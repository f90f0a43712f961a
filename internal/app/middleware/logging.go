package middleware

import (
	"context"
	"log/slog"
	"time"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/queries"
	"eventmarket/internal/domain/shared/failure"
)

// Logging records the outcome of each command. Expected business failures
// are logged at Info, server failures at Error.
func Logging(logger *slog.Logger) CommandMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, cmd)
			logOutcome(ctx, logger, "command", cmd.Key(), time.Since(start), err)
			return res, err
		})
	}
}

func QueryLogging(logger *slog.Logger) QueryMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, q)
			logOutcome(ctx, logger, "query", q.Key(), time.Since(start), err)
			return res, err
		})
	}
}

func logOutcome(ctx context.Context, logger *slog.Logger, kind, key string, took time.Duration, err error) {
	switch {
	case err == nil:
		level := slog.LevelInfo
		if kind == "query" {
			level = slog.LevelDebug
		}
		logger.Log(ctx, level, kind+" handled", "key", key, "duration", took)
	case failure.KindOf(err) == failure.KindServer:
		logger.ErrorContext(ctx, kind+" failed", "key", key, "duration", took, "error", err)
	default:
		logger.InfoContext(ctx, kind+" rejected", "key", key, "duration", took, "kind", failure.KindOf(err), "error", err)
	}
}
