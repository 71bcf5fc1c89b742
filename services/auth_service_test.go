package services

import (
	"chat-wire/auth"
	"chat-wire/errors"
	"chat-wire/repositories"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) IAuthService {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	imageHost, err := NewDiskImageHost(slog.Default(), t.TempDir(), "/uploads")
	require.NoError(t, err)

	return NewAuthService(repositories.NewUserRepository(db), imageHost, time.Hour)
}

func TestSignup_Creates_The_Account_And_Issues_A_Token(t *testing.T) {
	req := require.New(t)
	service := newAuthService(t)

	// When a user signs up
	user, token, err := service.Signup("Jane Doe", "jane@example.com", "Sup3r$ecretPass")
	req.NoError(err)
	req.NotEmpty(user.ID)
	req.Equal("Jane Doe", user.FullName)

	// Then the issued token authenticates that user
	claims, err := auth.ValidateToken(token.String())
	req.NoError(err)
	req.Equal(user.ID, claims.UserID)
}

func TestSignup_Rejects_A_Weak_Password(t *testing.T) {
	req := require.New(t)
	service := newAuthService(t)

	_, _, err := service.Signup("Jane Doe", "jane@example.com", "weakpassword")

	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func TestSignup_Twice_With_Same_Email_Fails(t *testing.T) {
	req := require.New(t)
	service := newAuthService(t)

	_, _, err := service.Signup("Jane Doe", "jane@example.com", "Sup3r$ecretPass")
	req.NoError(err)

	_, _, err = service.Signup("Jane Imposter", "jane@example.com", "Sup3r$ecretPass")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestLogin_With_Correct_Credentials(t *testing.T) {
	req := require.New(t)
	service := newAuthService(t)

	// Given an existing account
	created, _, err := service.Signup("Jane Doe", "jane@example.com", "Sup3r$ecretPass")
	req.NoError(err)

	// When logging in with the right credentials
	user, token, err := service.Login("jane@example.com", "Sup3r$ecretPass")

	// Then the session is issued for the same account
	req.NoError(err)
	req.Equal(created.ID, user.ID)
	req.NotEmpty(token.String())
}

func TestLogin_Failures_Are_Indistinguishable(t *testing.T) {
	req := require.New(t)
	service := newAuthService(t)

	_, _, err := service.Signup("Jane Doe", "jane@example.com", "Sup3r$ecretPass")
	req.NoError(err)

	// Wrong password and unknown email both yield the same generic error
	_, _, err = service.Login("jane@example.com", "wrong password")
	req.ErrorIs(err, errors.ErrInvalidCredentials)

	_, _, err = service.Login("ghost@example.com", "Sup3r$ecretPass")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}

func TestMe_Returns_The_Account_Without_Secrets(t *testing.T) {
	req := require.New(t)
	service := newAuthService(t)

	created, _, err := service.Signup("Jane Doe", "jane@example.com", "Sup3r$ecretPass")
	req.NoError(err)

	user, err := service.Me(created.ID)
	req.NoError(err)
	req.Equal("jane@example.com", user.Email)
}

func TestUpdateProfile_Stores_The_New_Avatar(t *testing.T) {
	req := require.New(t)
	service := newAuthService(t)

	created, _, err := service.Signup("Jane Doe", "jane@example.com", "Sup3r$ecretPass")
	req.NoError(err)

	// When uploading a data-URI avatar
	user, err := service.UpdateProfile(context.Background(), created.ID,
		"data:image/png;base64,"+tinyPNG)

	req.NoError(err)
	req.Contains(user.AvatarURL, "/uploads/")
}

func TestUpdateProfile_Rejects_Non_Image_Avatars(t *testing.T) {
	req := require.New(t)
	service := newAuthService(t)

	created, _, err := service.Signup("Jane Doe", "jane@example.com", "Sup3r$ecretPass")
	req.NoError(err)

	_, err = service.UpdateProfile(context.Background(), created.ID, "not base64 at all!!!")
	req.ErrorIs(err, errors.ErrNotAnImage)
}
