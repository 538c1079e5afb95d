package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/novamart/novamart/internal/shared"
	"github.com/novamart/novamart/internal/users"
)

// PrincipalLoader resolves the session's user into a request principal.
type PrincipalLoader struct {
	Users  *users.Service
	Logger *slog.Logger
}

// Middleware attaches the principal to the context when a valid session user
// exists. Anonymous requests pass through without a principal.
func (p PrincipalLoader) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := strconv.ParseInt(sess.User(), 10, 64)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := p.Users.Get(r.Context(), id)
		if err != nil {
			if !errors.Is(err, users.ErrNotFound) && p.Logger != nil {
				p.Logger.Error("load principal", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}
		if !user.IsActive {
			next.ServeHTTP(w, r)
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), &shared.Principal{
			ID:     user.ID,
			Email:  user.Email,
			Name:   user.Name,
			RoleID: user.RoleID,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
