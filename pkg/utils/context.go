package utils

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SleepResult indicates how a context-aware sleep ended.
type SleepResult int

const (
	// SleepCompleted means the full duration elapsed.
	SleepCompleted SleepResult = iota
	// SleepCancelled means the context was cancelled first.
	SleepCancelled
)

// ContextSleep sleeps for the specified duration while respecting context cancellation.
func ContextSleep(ctx context.Context, duration time.Duration) SleepResult {
	select {
	case <-time.After(duration):
		return SleepCompleted
	case <-ctx.Done():
		return SleepCancelled
	}
}

// ContextSleepWithLog sleeps for the specified duration while respecting context cancellation,
// logging a message if the context is cancelled.
func ContextSleepWithLog(ctx context.Context, duration time.Duration, logger *zap.Logger, cancelMessage string) SleepResult {
	select {
	case <-time.After(duration):
		return SleepCompleted
	case <-ctx.Done():
		if logger != nil && cancelMessage != "" {
			logger.Info(cancelMessage)
		}

		return SleepCancelled
	}
}

// ContextSleepUntilWithLog waits until the specified time while respecting context
// cancellation, logging a message if the context is cancelled.
func ContextSleepUntilWithLog(ctx context.Context, target time.Time, logger *zap.Logger, cancelMessage string) SleepResult {
	duration := time.Until(target)
	if duration <= 0 {
		return SleepCompleted
	}

	return ContextSleepWithLog(ctx, duration, logger, cancelMessage)
}

// ContextGuardWithLog checks if the context is cancelled and logs a message if so.
// Returns true if context is cancelled, false otherwise.
func ContextGuardWithLog(ctx context.Context, logger *zap.Logger, cancelMessage string) bool {
	select {
	case <-ctx.Done():
		if logger != nil && cancelMessage != "" {
			logger.Info(cancelMessage)
		}

		return true
	default:
		return false
	}
}

// ErrorSleep sleeps for the specified duration when an error occurs, respecting context
// cancellation. Returns true if should continue, false if the context was cancelled.
func ErrorSleep(ctx context.Context, duration time.Duration, logger *zap.Logger, workerName string) bool {
	result := ContextSleepWithLog(ctx, duration, logger,
		"Context cancelled during error wait, stopping "+workerName)

	return result == SleepCompleted
}

// IntervalSleep sleeps for a short interval between operations, respecting context
// cancellation. Returns true if should continue, false if the context was cancelled.
func IntervalSleep(ctx context.Context, duration time.Duration, logger *zap.Logger, workerName string) bool {
	result := ContextSleepWithLog(ctx, duration, logger,
		"Context cancelled during pause, stopping "+workerName)

	return result == SleepCompleted
}
