package store

import (
	"context"
	"errors"
	"time"
)

const (
	PlanUnlimited = "UNLIMITED"
	RoleAdmin     = "ADMIN"
)

// ErrDuplicateUser is returned when a create collides with an existing
// user for the same email. Callers treat it as "someone else won the
// race" and re-read.
var ErrDuplicateUser = errors.New("store: user already exists")

// User is the authenticated identity record.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"createdAt"`
}

type Membership struct {
	UserID      string `json:"userId"`
	WorkspaceID string `json:"workspaceId"`
	Role        string `json:"role"`
}

// Store is the repository contract for users and their workspaces.
// Lookups return (nil, nil) when nothing matches; an error always means
// the store itself failed. Each call is atomic on its own.
type Store interface {
	FindUserByID(ctx context.Context, id string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByAPIToken(ctx context.Context, token string) (*User, error)

	CreateUser(ctx context.Context, u *User) error
	CreateWorkspace(ctx context.Context, w *Workspace) error
	CreateMembership(ctx context.Context, m *Membership) error

	// CreateUserWithWorkspace creates the user, its workspace, and the
	// admin membership in a single transaction.
	CreateUserWithWorkspace(ctx context.Context, u *User, w *Workspace, m *Membership) error

	CreateAPIToken(ctx context.Context, userID, name, token string) error
}
