package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/gapify/workflow-builder/internal/db"
)

const pqUniqueViolation = "23505"

// Postgres is the canonical Store implementation.
type Postgres struct {
	db *db.DB
}

func NewPostgres(db *db.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) FindUserByID(ctx context.Context, id string) (*User, error) {
	return s.findUser(ctx, `
		SELECT id, name, email, created_at
		FROM users
		WHERE id = $1
	`, id)
}

func (s *Postgres) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.findUser(ctx, `
		SELECT id, name, email, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email)
}

func (s *Postgres) FindUserByAPIToken(ctx context.Context, token string) (*User, error) {
	return s.findUser(ctx, `
		SELECT u.id, u.name, u.email, u.created_at
		FROM users u
		JOIN api_tokens t ON t.user_id = u.id
		WHERE t.token = $1
	`, token)
}

func (s *Postgres) findUser(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: user lookup failed: %w", err)
	}
	return &u, nil
}

func (s *Postgres) CreateUser(ctx context.Context, u *User) error {
	return createUser(ctx, s.db, u)
}

func (s *Postgres) CreateWorkspace(ctx context.Context, w *Workspace) error {
	return createWorkspace(ctx, s.db, w)
}

func (s *Postgres) CreateMembership(ctx context.Context, m *Membership) error {
	return createMembership(ctx, s.db, m)
}

func (s *Postgres) CreateUserWithWorkspace(ctx context.Context, u *User, w *Workspace, m *Membership) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin provisioning tx: %w", err)
	}
	defer tx.Rollback()

	if err := createUser(ctx, tx, u); err != nil {
		return err
	}
	if err := createWorkspace(ctx, tx, w); err != nil {
		return err
	}
	if err := createMembership(ctx, tx, m); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit provisioning tx: %w", err)
	}
	return nil
}

func (s *Postgres) CreateAPIToken(ctx context.Context, userID, name, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_tokens (user_id, name, token)
		VALUES ($1, $2, $3)
	`, userID, name, token)
	if err != nil {
		return fmt.Errorf("store: create api token: %w", err)
	}
	return nil
}

// execer covers both *db.DB and *sql.Tx.
type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func createUser(ctx context.Context, e execer, u *User) error {
	err := e.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, u.ID, u.Name, u.Email).Scan(&u.CreatedAt)

	if isUniqueViolation(err) {
		return ErrDuplicateUser
	}
	if err != nil {
		return fmt.Errorf("store: create user: %w", err)
	}
	return nil
}

func createWorkspace(ctx context.Context, e execer, w *Workspace) error {
	err := e.QueryRowContext(ctx, `
		INSERT INTO workspaces (id, name, plan)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, w.ID, w.Name, w.Plan).Scan(&w.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: create workspace: %w", err)
	}
	return nil
}

func createMembership(ctx context.Context, e execer, m *Membership) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO memberships (user_id, workspace_id, role)
		VALUES ($1, $2, $3)
	`, m.UserID, m.WorkspaceID, m.Role)
	if err != nil {
		return fmt.Errorf("store: create membership: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// compile-time interface check
var _ Store = (*Postgres)(nil)
