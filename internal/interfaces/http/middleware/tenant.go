package middleware

import (
	"net/http"

	"github.com/clubbill/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context and header keys for club (tenant) scoping
const (
	ClubIDKey     = "club_id"
	ClubHeaderKey = "X-Club-ID"
)

// ClubMiddlewareConfig holds configuration for club scoping middleware
type ClubMiddlewareConfig struct {
	// SkipPaths are paths that don't require club context (e.g., health check)
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// ClubScope extracts the club ID from the X-Club-ID header and stores it in
// the request context. Every billing route is club-scoped; requests without
// a valid club ID are rejected before reaching a handler.
func ClubScope(cfg ClubMiddlewareConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		raw := c.GetHeader(ClubHeaderKey)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Missing "+ClubHeaderKey+" header"))
			return
		}

		clubID, err := uuid.Parse(raw)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Debug("rejected malformed club id", zap.String("club_id", raw))
			}
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Invalid "+ClubHeaderKey+" header"))
			return
		}

		c.Set(ClubIDKey, clubID)
		c.Next()
	}
}

// GetClubID returns the club ID stored by ClubScope
func GetClubID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ClubIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
