package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// sessionUserKey holds the User resolved from the bearer token by the auth
// middleware.
type sessionUserKey struct{}

var ErrNoUser = errors.New("no authenticated user in request")

// CurrentId is the owner id every birthday query is scoped to.
func CurrentId(ctx context.Context) (uuid.UUID, error) {
	u, err := CurrentUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return u.Id, nil
}

func CurrentUser(ctx context.Context) (User, error) {
	u, ok := ctx.Value(sessionUserKey{}).(User)
	if !ok || u.Id == uuid.Nil {
		log.Trace("request has no session user")
		return User{}, ErrNoUser
	}
	return u, nil
}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, sessionUserKey{}, u)
}
