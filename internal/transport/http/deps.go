package http

import (
	"context"

	"github.com/go-api-accounts/internal/application/profilepic"
	"github.com/go-api-accounts/internal/application/user"
	"github.com/go-api-accounts/internal/application/verification"
)

// Pinger reports whether the primary store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds the application services the router exposes.
type Deps struct {
	Users        user.Service
	Verification verification.Service
	ProfilePics  profilepic.Service
	DB           Pinger
}
