package credentials

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gapify/workflow-builder/internal/auth/provision"
	"github.com/gapify/workflow-builder/internal/db"
	"github.com/gapify/workflow-builder/internal/store"
)

func newServiceFixture(t *testing.T) (*Service, *store.Memory, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	users := store.NewMemory()
	svc := NewService(&db.DB{DB: sqlDB}, provision.NewService(users))
	return svc, users, mock
}

func TestRegisterProvisionsUserAndStoresHash(t *testing.T) {
	svc, users, mock := newServiceFixture(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO credentials`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), HashVersionBcrypt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	userID, err := svc.Register(context.Background(), "new@example.com", "long password")
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	// Password users get the same workspace provisioning as federated ones.
	user, err := users.FindUserByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "new", user.Name)
	assert.Len(t, users.Workspaces(), 1)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRejectsSecondPassword(t *testing.T) {
	svc, _, mock := newServiceFixture(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.Register(context.Background(), "new@example.com", "long password")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestAuthenticate(t *testing.T) {
	svc, _, mock := newServiceFixture(t)

	hash, _, err := HashPassword("long password")
	require.NoError(t, err)

	mock.ExpectQuery(`JOIN credentials`).
		WithArgs("user@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow("u-1", hash))

	userID, err := svc.Authenticate(context.Background(), "user@example.com", "long password")
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, _, mock := newServiceFixture(t)

	hash, _, err := HashPassword("long password")
	require.NoError(t, err)

	mock.ExpectQuery(`JOIN credentials`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow("u-1", hash))

	_, err = svc.Authenticate(context.Background(), "user@example.com", "not it")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc, _, mock := newServiceFixture(t)

	mock.ExpectQuery(`JOIN credentials`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}))

	_, err := svc.Authenticate(context.Background(), "ghost@example.com", "whatever")
	// The error hides whether the account exists.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
