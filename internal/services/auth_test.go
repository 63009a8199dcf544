package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"posteventcalendar/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHasher is a transparent PasswordHasher for tests.
type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) {
	return salt + ":" + password, nil
}

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

type fakeIssuer struct {
	err error
}

func (f *fakeIssuer) Issue(userID int64, username string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("token-%d-%s", userID, username), nil
}

func newAuthTestService(users *fakeUserRepo) domain.AuthService {
	return NewAuthService(users, fakeHasher{}, &fakeIssuer{}, time.Hour)
}

func TestAuthSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("success normalizes username", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := newAuthTestService(users)

		user, err := svc.SignUp(ctx, "  Alice.W  ", "s3cretpass", " Alice ")
		require.NoError(t, err)
		assert.Equal(t, "alice.w", user.Username)
		assert.Equal(t, "Alice", user.Name)
		assert.Equal(t, "salt:s3cretpass", user.PasswordHash)
		assert.NotZero(t, user.ID)
	})

	t.Run("invalid username", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := newAuthTestService(users)

		for _, username := range []string{"ab", "way-too-long-username-here", "has space", ""} {
			_, err := svc.SignUp(ctx, username, "s3cretpass", "")
			assert.ErrorIs(t, err, domain.ErrInvalidInput, "username %q", username)
		}
	})

	t.Run("short password", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := newAuthTestService(users)

		_, err := svc.SignUp(ctx, "alice", "short", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("duplicate username", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := newAuthTestService(users)

		_, err := svc.SignUp(ctx, "alice", "s3cretpass", "")
		require.NoError(t, err)
		_, err = svc.SignUp(ctx, "ALICE", "s3cretpass", "")
		assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	})
}

func TestAuthLogin(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (domain.AuthService, *fakeUserRepo) {
		users := newFakeUserRepo()
		svc := newAuthTestService(users)
		_, err := svc.SignUp(ctx, "alice", "s3cretpass", "Alice")
		require.NoError(t, err)
		return svc, users
	}

	t.Run("success", func(t *testing.T) {
		svc, _ := setup(t)
		token, err := svc.Login(ctx, "Alice", "s3cretpass")
		require.NoError(t, err)
		assert.Equal(t, "token-1-alice", token)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.Login(ctx, "alice", "wrongpass")
		assert.EqualError(t, err, "invalid credentials")
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.Login(ctx, "bob", "s3cretpass")
		assert.EqualError(t, err, "invalid credentials")
	})
}
