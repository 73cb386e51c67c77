// Package rbac restricts routes to operator roles. It reads the claims that
// middleware.Auth stored, so it must run after it.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/bodega/pkg/middleware"
	"github.com/shashiranjanraj/bodega/pkg/response"
)

// HasRole allows only operators holding one of roles.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok {
				response.Unauthorized(w)
				return
			}
			if !allowed[role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ForMethods applies mw only to requests whose method is listed, e.g. admin
// checks on DELETE inside a group that also serves reads.
func ForMethods(mw func(http.Handler) http.Handler, methods ...string) func(http.Handler) http.Handler {
	set := make(map[string]bool, len(methods))
	for _, m := range methods {
		set[m] = true
	}
	return func(next http.Handler) http.Handler {
		guarded := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if set[r.Method] {
				guarded.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
