package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/ayush/task-manager/backend/internal/apperr"
	"github.com/ayush/task-manager/backend/internal/auth"
	"github.com/ayush/task-manager/backend/internal/models"
	"github.com/ayush/task-manager/backend/internal/render"
)

// Verifier turns a bearer token into a principal.
type Verifier interface {
	Verify(token string) (auth.Principal, error)
}

// RequireRole is middleware that validates the bearer token and injects the
// principal into the request context. A missing token is 401; a token that
// fails verification or carries a role outside roles is 403.
func RequireRole(v Verifier, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				render.Error(w, r, apperr.New(apperr.Unauthorized, "Unauthorized request"))
				return
			}

			p, err := v.Verify(token)
			if err != nil {
				render.Error(w, r, err)
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, p.Role) {
				render.Error(w, r, apperr.New(apperr.Forbidden, "insufficient role"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
