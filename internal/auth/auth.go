// Package auth carries the authenticated user through request contexts.
package auth

import (
	"context"
	"github.com/maxaizer/realjobs/internal/entities"
)

type userKey struct{}

func WithUser(ctx context.Context, user entities.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// CurrentUser returns the user attached by WithUser, if any.
func CurrentUser(ctx context.Context) (entities.User, bool) {
	user, ok := ctx.Value(userKey{}).(entities.User)
	if !ok || user.ID == "" {
		return entities.User{}, false
	}
	return user, true
}
