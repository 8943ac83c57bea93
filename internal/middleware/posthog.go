package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/coinvest_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// untracked routes are health checks and docs, not account activity.
var untracked = map[string]bool{
	"/health":       true,
	"/":             true,
	"/swagger/*any": true,
}

// apiEventName turns a route template into an analytics event name:
// "/api/v1/admin/requests/:requestID/approve" becomes "api_admin_requests_approve".
func apiEventName(fullPath string) string {
	parts := strings.Split(strings.Trim(fullPath, "/"), "/")
	name := make([]string, 0, len(parts))
	for i, p := range parts {
		if p == "" || strings.HasPrefix(p, ":") || strings.HasPrefix(p, "*") {
			continue
		}
		if i == 1 && parts[0] == "api" && strings.HasPrefix(p, "v") {
			continue
		}
		name = append(name, strings.ReplaceAll(p, "-", "_"))
	}
	return strings.Join(name, "_")
}

// PosthogMiddleware reports every successful authenticated API call to PostHog,
// attributed to the calling account. Ledger state changes are reported
// separately through the event bus.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() {
			c.Next()
			return
		}

		c.Next()

		route := c.FullPath()
		if route == "" || untracked[route] || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		actor, ok := GetActorFromContext(c)
		if !ok {
			return
		}
		eventName := apiEventName(route)
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"route":       route,
			"status_code": c.Writer.Status(),
			"role":        string(actor.Role),
			"request_id":  GetRequestID(c.Request.Context()),
		}
		for _, param := range c.Params {
			props[param.Key] = param.Value
		}

		posthogClient.Enqueue(actor.AccountID, eventName, props)
	}
}
