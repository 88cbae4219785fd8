package store

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process Store used in tests and local development.
// Same contract as Postgres, including duplicate-email detection.
type Memory struct {
	mu          sync.Mutex
	users       map[string]*User      // by id
	workspaces  map[string]*Workspace // by id
	memberships []*Membership
	apiTokens   map[string]string // token -> user id
}

func NewMemory() *Memory {
	return &Memory{
		users:      make(map[string]*User),
		workspaces: make(map[string]*Workspace),
		apiTokens:  make(map[string]string),
	}
}

func (m *Memory) FindUserByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findByEmailLocked(email), nil
}

func (m *Memory) findByEmailLocked(email string) *User {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied
		}
	}
	return nil
}

func (m *Memory) FindUserByAPIToken(_ context.Context, token string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.apiTokens[token]; ok {
		if u, ok := m.users[id]; ok {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *Memory) CreateUser(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createUserLocked(u)
}

func (m *Memory) createUserLocked(u *User) error {
	if m.findByEmailLocked(u.Email) != nil {
		return ErrDuplicateUser
	}
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *Memory) CreateWorkspace(_ context.Context, w *Workspace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *w
	m.workspaces[w.ID] = &copied
	return nil
}

func (m *Memory) CreateMembership(_ context.Context, mem *Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *mem
	m.memberships = append(m.memberships, &copied)
	return nil
}

func (m *Memory) CreateUserWithWorkspace(_ context.Context, u *User, w *Workspace, mem *Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createUserLocked(u); err != nil {
		return err
	}
	wc := *w
	m.workspaces[w.ID] = &wc
	mc := *mem
	m.memberships = append(m.memberships, &mc)
	return nil
}

func (m *Memory) CreateAPIToken(_ context.Context, userID, _ string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiTokens[token] = userID
	return nil
}

// DeleteUser removes a user record, leaving any sessions pointing at it
// dangling. Test helper for the dangling-reference path.
func (m *Memory) DeleteUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// Workspaces returns all workspaces, for assertions.
func (m *Memory) Workspaces() []Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Workspace, 0, len(m.workspaces))
	for _, w := range m.workspaces {
		out = append(out, *w)
	}
	return out
}

// Memberships returns all memberships, for assertions.
func (m *Memory) Memberships() []Membership {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Membership, 0, len(m.memberships))
	for _, mem := range m.memberships {
		out = append(out, *mem)
	}
	return out
}

// compile-time interface check
var _ Store = (*Memory)(nil)
