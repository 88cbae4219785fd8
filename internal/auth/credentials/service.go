package credentials

import (
	"context"
	"errors"
	"strings"

	"github.com/gapify/workflow-builder/internal/auth/provision"
	"github.com/gapify/workflow-builder/internal/db"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("credentials already exist")
)

// Service handles first-party email/password accounts. Users created
// here get the same workspace provisioning as federated ones.
type Service struct {
	db          *db.DB
	provisioner *provision.Service
}

func NewService(db *db.DB, provisioner *provision.Service) *Service {
	return &Service{db: db, provisioner: provisioner}
}

func (s *Service) Register(ctx context.Context, email, password string) (string, error) {

	// 1. Find or create the user (with workspace) by email
	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	user, err := s.provisioner.EnsureUser(ctx, name, email)
	if err != nil {
		return "", err
	}

	// 2. Refuse a second password for the same user
	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM credentials WHERE user_id = $1
		)
	`, user.ID).Scan(&exists)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrAlreadyRegistered
	}

	// 3. Hash and store
	hash, version, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
	`, user.ID, hash, version)
	if err != nil {
		return "", err
	}

	return user.ID, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {

	var (
		userID       string
		passwordHash string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, c.password_hash
		FROM users u
		JOIN credentials c ON c.user_id = u.id
		WHERE LOWER(u.email) = LOWER($1)
	`, email).Scan(&userID, &passwordHash)
	if err != nil {
		// hide whether the user exists
		return "", ErrInvalidCredentials
	}

	if err := VerifyPassword(passwordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	return userID, nil
}
