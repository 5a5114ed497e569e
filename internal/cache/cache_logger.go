package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates multiple patterns in batch
func BatchInvalidate(ctx context.Context, helper *CacheHelper, patterns []string) error {
	var lastErr error
	for _, pattern := range patterns {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"pattern", pattern)
		}
	}
	return lastErr
}

// InvalidateLabCache invalidates all lab-related caches
func InvalidateLabCache(ctx context.Context, cm *CacheManager, labID uint) {
	// Delete specific keys using single call
	SafeDelete(ctx, cm.Lab,
		fmt.Sprintf("id:%d", labID),
		fmt.Sprintf("details:%d", labID))

	// Invalidate patterns
	SafeInvalidatePattern(ctx, cm.Lab, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("lab:%d*", labID))
}

// InvalidateChallengeCache invalidates all challenge-related caches
func InvalidateChallengeCache(ctx context.Context, cm *CacheManager, challengeID, labID uint) {
	SafeDelete(ctx, cm.Challenge, fmt.Sprintf("id:%d", challengeID))
	SafeDelete(ctx, cm.Fast, fmt.Sprintf("id:%d", challengeID))
	InvalidateLabCache(ctx, cm, labID)
}

// InvalidateStatsCache invalidates the derived rollups for a lab
func InvalidateStatsCache(ctx context.Context, cm *CacheManager, labID uint) {
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("lab:%d*", labID))
}
