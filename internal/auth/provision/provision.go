// Package provision creates first-time users together with their
// workspace.
package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gapify/workflow-builder/internal/logger"
	"github.com/gapify/workflow-builder/internal/store"
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// EnsureUser returns the user for the given email, creating the user,
// its workspace, and the admin membership if none exists. Safe to call
// repeatedly and concurrently for the same email: the store's unique
// email index decides the winner, losers re-read the committed row.
func (s *Service) EnsureUser(ctx context.Context, name, email string) (*store.User, error) {
	existing, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	user := &store.User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
	}
	workspace := &store.Workspace{
		ID:   uuid.NewString(),
		Name: user.Name + "'s Workspace",
		Plan: store.PlanUnlimited,
	}
	membership := &store.Membership{
		UserID:      user.ID,
		WorkspaceID: workspace.ID,
		Role:        store.RoleAdmin,
	}

	err = s.store.CreateUserWithWorkspace(ctx, user, workspace, membership)
	if errors.Is(err, store.ErrDuplicateUser) {
		// Concurrent provisioning of the same account; the committed
		// user wins.
		winner, findErr := s.store.FindUserByEmail(ctx, email)
		if findErr != nil {
			return nil, findErr
		}
		if winner == nil {
			return nil, fmt.Errorf("provision: user for %s vanished after duplicate create", email)
		}
		return winner, nil
	}
	if err != nil {
		return nil, err
	}

	logger.Info("provisioned user", map[string]any{
		"user_id":      user.ID,
		"workspace_id": workspace.ID,
	})

	return user, nil
}
