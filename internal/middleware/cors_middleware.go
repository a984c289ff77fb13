package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSPolicy describes which browser origins may call the sync API.
// An Origins entry of "*" allows any origin.
type CORSPolicy struct {
	Origins []string
	Methods []string
	Headers []string
	MaxAge  time.Duration
}

func DefaultCORSPolicy(origins []string) CORSPolicy {
	return CORSPolicy{
		Origins: origins,
		Methods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		Headers: []string{"Authorization", "Content-Type"},
		MaxAge:  24 * time.Hour,
	}
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or
// "" when the origin is not allowed.
func (p CORSPolicy) allowOrigin(origin string) string {
	if origin == "" {
		return ""
	}
	if slices.Contains(p.Origins, "*") {
		return "*"
	}
	if slices.Contains(p.Origins, origin) {
		return origin
	}
	return ""
}

// CORS applies policy to every response and answers preflight requests with
// 204 before they reach a route.
func CORS(policy CORSPolicy) gin.HandlerFunc {
	origins := make([]string, 0, len(policy.Origins))
	for _, origin := range policy.Origins {
		origins = append(origins, strings.TrimSpace(origin))
	}
	policy.Origins = origins
	methods := strings.Join(policy.Methods, ",")
	headers := strings.Join(policy.Headers, ",")
	maxAge := strconv.Itoa(int(policy.MaxAge / time.Second))

	return func(c *gin.Context) {
		switch allowed := policy.allowOrigin(c.GetHeader("Origin")); allowed {
		case "":
		case "*":
			c.Header("Access-Control-Allow-Origin", allowed)
		default:
			c.Header("Access-Control-Allow-Origin", allowed)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		c.Header("Access-Control-Max-Age", maxAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
