package rbac

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/novamart/novamart/internal/platform/httpx"
	"github.com/novamart/novamart/internal/shared"
)

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Gate   *Gate
	Logger *slog.Logger
}

// RequireAny ensures the current principal has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if err := m.Gate.AuthorizeAny(r.Context(), principal, perms...); err != nil {
				m.respondDenied(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAll ensures the current principal has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if err := m.Gate.AuthorizeAll(r.Context(), principal, perms...); err != nil {
				m.respondDenied(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthenticated only checks that a principal is present.
func (m Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.PrincipalFromContext(r.Context()) == nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m Middleware) respondDenied(w http.ResponseWriter, r *http.Request, err error) {
	var denied *DeniedError
	if errors.As(err, &denied) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", denied.Error())
		return
	}
	if m.Logger != nil {
		m.Logger.Error("rbac authorize", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
