package auth

import (
	"context"
	"errors"
)

// XUserIDHeader carries the actor identifier resolved by the identity collaborator.
const XUserIDHeader = "X-User-Id"

var ErrNoActor = errors.New("actor id is empty")

type ctxKey struct{}

func SetAuthContext(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func GetUserID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(ctxKey{}).(string)
	if !ok || id == "" {
		return "", ErrNoActor
	}
	return id, nil
}
