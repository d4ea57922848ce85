package app

import (
	"net/http"

	"github.com/birthdayreminder/birthdayreminder/internal/auth"
	"github.com/birthdayreminder/birthdayreminder/internal/rest"
	"github.com/birthdayreminder/birthdayreminder/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type identityValidator interface {
	Validate(token string) (auth.Identity, error)
}

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {
	r.Use(authenticate(deps.AuthTokenValidator, deps.UserService))
}

// authenticate puts the bearer token's user into the request context. Requests
// without an Authorization header pass through anonymously; handlers that need
// a user answer 401 on their own.
func authenticate(validator identityValidator, users user.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			header := req.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, req)
				return
			}

			token, ok := auth.BearerToken(header)
			if !ok {
				rest.WriteError(w, http.StatusUnauthorized, "Invalid authorization header")
				return
			}
			identity, err := validator.Validate(token)
			if err != nil {
				log.Debugf("rejected token: %v", err)
				rest.WriteError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			u, err := users.EnsureUser(req.Context(), identity.UserId, identity.Email)
			if err != nil {
				log.Errorf("failed to ensure user %s: %v", identity.UserId, err)
				rest.WriteError(w, http.StatusInternalServerError, err.Error())
				return
			}
			log.Tracef("authenticated user %s", u.Id)
			next.ServeHTTP(w, req.WithContext(user.WithUser(req.Context(), u)))
		})
	}
}
