package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospitalms/scheduler/internal/platform/auth"
)

// AuditEntry represents an audit log entry produced by the middleware.
// It captures who accessed what, when, from where, and the action type.
type AuditEntry struct {
	UserID     string
	UserRoles  []string
	Resource   string
	Action     string // read, create, update, delete
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// AuditRecorder is the interface that the audit middleware uses to persist
// audit entries, so that tests can provide a mock implementation.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit returns Echo middleware that intercepts requests to /api/v1/*,
// extracts the authenticated user from JWT claims, determines the resource
// from the URL path, and logs the access.
//
// If no AuditRecorder is provided, it falls back to structured zerolog logging.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			// Only audit API routes
			if !isAuditablePath(path) {
				return next(c)
			}

			// Execute the handler first so we capture the response status
			err := next(c)

			entry := AuditEntry{
				Timestamp:  time.Now().UTC(),
				Path:       path,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				StatusCode: c.Response().Status,
			}

			ctx := req.Context()
			entry.UserID = auth.UserIDFromContext(ctx)
			entry.UserRoles = auth.RolesFromContext(ctx)

			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			entry.Action = httpMethodToAction(req.Method)
			entry.Resource = extractResource(path)

			if len(recorders) > 0 && recorders[0] != nil {
				if recErr := recorders[0].RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			// Always emit a structured log for the audit trail
			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Strs("user_roles", entry.UserRoles).
				Str("resource", entry.Resource).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("access")

			return err
		}
	}
}

// isAuditablePath returns true if the path is under /api/v1/.
func isAuditablePath(path string) bool {
	return strings.HasPrefix(path, "/api/v1/")
}

// httpMethodToAction maps HTTP methods to audit action codes.
func httpMethodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// extractResource parses the resource name from a URL path.
//
// Supported patterns:
//   - /api/v1/appointments       -> appointments
//   - /api/v1/appointments/123   -> appointments
func extractResource(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	if len(segments) > 0 && segments[0] != "" {
		return segments[0]
	}
	return "unknown"
}
