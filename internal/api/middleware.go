package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/auth"
	"marketplace-service/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// requireAuth rejects requests without a valid bearer token and stores the token
// claims on the context.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			h.abort(c, apperr.Unauthenticated("Authentication required"))
			return
		}

		claims, err := h.tokens.Validate(strings.TrimSpace(token))
		if err != nil {
			h.abort(c, apperr.Unauthenticated("Invalid or expired token"))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requireRoles lets through callers whose role is one of roles. It must run after
// requireAuth.
func (h *Handler) requireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Authorize(claimsFrom(c), roles...); err != nil {
			h.abort(c, err)
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// rateLimit limits requests per client IP.
func (h *Handler) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.limiter == nil {
			c.Next()
			return
		}

		d, err := h.limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			h.logger.Warn("Rate limiter failed, letting request through", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			util.RateLimitedRequestsTotal.Inc()
			if d.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests"})
			return
		}
		c.Next()
	}
}

func (h *Handler) abort(c *gin.Context, err error) {
	h.respondError(c, err)
	c.Abort()
}
