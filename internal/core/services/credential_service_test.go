package services

import (
	"context"
	"errors"
	"testing"

	"droneview/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"
)

func newCredentialFixture(t *testing.T) (*CredentialService, *MockBackend, *fakeCredentialRepo) {
	backend := new(MockBackend)
	repo := &fakeCredentialRepo{}
	svc := NewCredentialService(backend, repo, zaptest.NewLogger(t))
	return svc, backend, repo
}

func TestLogin_Success(t *testing.T) {
	svc, backend, repo := newCredentialFixture(t)

	backend.On("Login", mock.Anything, domain.Credentials{Username: "u", Password: "p"}).
		Return(&domain.AuthPayload{Token: "T", UserID: "1", Username: "u", Role: "admin"}, nil)

	ok, err := svc.Login(context.Background(), domain.Credentials{Username: "u", Password: "p"})
	assert.NoError(t, err)
	assert.True(t, ok)

	cred := svc.Credential()
	assert.Equal(t, "T", cred.Token)
	assert.Equal(t, domain.UserID("1"), cred.User.ID)
	assert.Equal(t, domain.RoleAdmin, cred.User.Role)

	// write-through persistence
	persisted, _ := repo.Load()
	assert.Equal(t, "T", persisted.Token)
}

func TestLogin_Rejected_LeavesStateUntouched(t *testing.T) {
	svc, backend, _ := newCredentialFixture(t)

	backend.On("Login", mock.Anything, mock.Anything).Return(nil, domain.ErrRejected)

	ok, err := svc.Login(context.Background(), domain.Credentials{Username: "u", Password: "bad"})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, svc.Credential().Empty())
}

func TestLogin_TransportFailure_Propagates(t *testing.T) {
	svc, backend, _ := newCredentialFixture(t)

	boom := errors.New("connection refused")
	backend.On("Login", mock.Anything, mock.Anything).Return(nil, boom)

	ok, err := svc.Login(context.Background(), domain.Credentials{Username: "u", Password: "p"})
	assert.ErrorIs(t, err, boom)
	assert.False(t, ok)
	assert.True(t, svc.Credential().Empty())
}

func TestLogin_UnknownRole_FailsClosed(t *testing.T) {
	svc, backend, _ := newCredentialFixture(t)

	backend.On("Login", mock.Anything, mock.Anything).
		Return(&domain.AuthPayload{Token: "T", UserID: "1", Username: "u", Role: "superuser"}, nil)

	ok, err := svc.Login(context.Background(), domain.Credentials{Username: "u", Password: "p"})
	assert.ErrorIs(t, err, domain.ErrUnknownRole)
	assert.False(t, ok)
	assert.True(t, svc.Credential().Empty())
}

func TestLogout_Idempotent(t *testing.T) {
	svc, backend, repo := newCredentialFixture(t)

	backend.On("Login", mock.Anything, mock.Anything).
		Return(&domain.AuthPayload{Token: "T", UserID: "1", Username: "u", Role: "user"}, nil)
	_, err := svc.Login(context.Background(), domain.Credentials{Username: "u", Password: "p"})
	assert.NoError(t, err)

	svc.Logout()
	svc.Logout()

	assert.True(t, svc.Credential().Empty())
	assert.Nil(t, svc.Credential().User)
	persisted, _ := repo.Load()
	assert.True(t, persisted.Empty())
}

func TestSetToken_EmptyClearsUser(t *testing.T) {
	svc, _, _ := newCredentialFixture(t)

	svc.SetToken("T")
	assert.NoError(t, svc.SetUser(&domain.User{ID: "1", Username: "u", Role: domain.RoleUser}))

	svc.SetToken("")

	cred := svc.Credential()
	assert.True(t, cred.Empty())
	assert.Nil(t, cred.User, "token absent must imply user absent")
}

func TestSetUser_RejectsUnknownRole(t *testing.T) {
	svc, _, _ := newCredentialFixture(t)

	err := svc.SetUser(&domain.User{ID: "1", Username: "u", Role: "root"})
	assert.ErrorIs(t, err, domain.ErrUnknownRole)
	assert.Nil(t, svc.Credential().User)
}

func TestNewCredentialService_ReloadsPersistedSession(t *testing.T) {
	backend := new(MockBackend)
	repo := &fakeCredentialRepo{}
	repo.cred = domain.Credential{
		Token: "T",
		User:  &domain.User{ID: "1", Username: "u", Role: domain.RoleAdmin},
	}

	svc := NewCredentialService(backend, repo, zaptest.NewLogger(t))
	cred := svc.Credential()
	assert.Equal(t, "T", cred.Token)
	assert.Equal(t, domain.RoleAdmin, cred.User.Role)
}

func TestRegister_RejectedIsFalse(t *testing.T) {
	svc, backend, _ := newCredentialFixture(t)

	backend.On("Register", mock.Anything, mock.Anything).Return(domain.ErrRejected)

	ok, err := svc.Register(context.Background(), domain.Registration{Username: "u", Password: "p"})
	assert.NoError(t, err)
	assert.False(t, ok)
}
