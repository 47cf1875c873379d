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

// InvalidateSessionCache invalidates all session-related caches
func InvalidateSessionCache(ctx context.Context, cm *CacheManager, sessionID uint, pinCode string) {
	SafeDelete(ctx, cm.Session,
		fmt.Sprintf("id:%d", sessionID),
		fmt.Sprintf("pin:%s", pinCode))

	SafeInvalidatePattern(ctx, cm.Leaderboard, fmt.Sprintf("session:%d*", sessionID))
}
