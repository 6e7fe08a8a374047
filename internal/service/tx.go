package service

import (
	"context"
	"errors"
	log "log/slog"
)

// withTxRetry 存储层事务失败时重试一次，仍失败返回 UnExpectedError；业务错误原样返回
func withTxRetry(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if err == nil || !retryable(ctx, err) {
		return err
	}

	log.WarnContext(ctx, "transaction failed, retrying", "op", op, "err", err)
	err = fn()
	if err == nil || !retryable(ctx, err) {
		return err
	}

	log.ErrorContext(ctx, "transaction failed after retry", "op", op, "err", err)
	return UnExpectedError
}

func retryable(ctx context.Context, err error) bool {
	if _, ok := ErrorMap[err]; ok {
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
