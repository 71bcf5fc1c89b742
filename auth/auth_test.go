package auth

import (
	"chat-wire/errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Then_ComparePassword(t *testing.T) {
	req := require.New(t)

	// Given a hashed password
	hash, err := HashPassword("Sup3r$ecretPass")
	req.NoError(err)
	req.Contains(hash, "$argon2id$")

	// Then only the original password matches
	ok, err := ComparePassword("Sup3r$ecretPass", hash)
	req.NoError(err)
	req.True(ok)

	ok, err = ComparePassword("wrong password", hash)
	req.NoError(err)
	req.False(ok)
}

func TestHashPassword_Salts_Are_Unique(t *testing.T) {
	req := require.New(t)

	first, err := HashPassword("Sup3r$ecretPass")
	req.NoError(err)
	second, err := HashPassword("Sup3r$ecretPass")
	req.NoError(err)

	// Same password, different salt, different hash
	req.NotEqual(first, second)
}

func TestComparePassword_Rejects_Malformed_Hash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("whatever", "not-an-argon2-hash")
	req.Error(err)
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name    string
		request SignupRequest
		wantErr bool
	}{
		{
			name:    "valid signup",
			request: SignupRequest{FullName: "Jane Doe", Email: "jane@example.com", Password: "Sup3r$ecretPass"},
			wantErr: false,
		},
		{
			name:    "missing full name",
			request: SignupRequest{Email: "jane@example.com", Password: "Sup3r$ecretPass"},
			wantErr: true,
		},
		{
			name:    "invalid email",
			request: SignupRequest{FullName: "Jane Doe", Email: "not-an-email", Password: "Sup3r$ecretPass"},
			wantErr: true,
		},
		{
			name:    "password too short",
			request: SignupRequest{FullName: "Jane Doe", Email: "jane@example.com", Password: "Sh0rt$"},
			wantErr: true,
		},
		{
			name:    "password without special character",
			request: SignupRequest{FullName: "Jane Doe", Email: "jane@example.com", Password: "Sup3rSecretPass9"},
			wantErr: true,
		},
		{
			name:    "password without uppercase",
			request: SignupRequest{FullName: "Jane Doe", Email: "jane@example.com", Password: "sup3r$ecretpass"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignup(tt.request)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateSignup_Weak_Password_Uses_The_Sentinel(t *testing.T) {
	req := require.New(t)

	err := ValidateSignup(SignupRequest{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Password: "alllowercasepassword",
	})
	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func TestGenerateToken_Then_ValidateToken(t *testing.T) {
	req := require.New(t)
	userID := uuid.NewString()

	// Given a freshly issued token
	token, err := GenerateToken(userID, []string{"user"}, time.Hour)
	req.NoError(err)
	req.NotEmpty(token)

	// When it is validated
	claims, err := ValidateToken(token)

	// Then the claims identify the user
	req.NoError(err)
	req.Equal(userID, claims.UserID)
	req.Equal([]string{"user"}, claims.Roles)
}

func TestValidateToken_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken(uuid.NewString(), []string{"user"}, -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(token)
	req.Error(err)
}

func TestValidateToken_Rejects_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := ValidateToken("definitely.not.a.jwt")
	req.Error(err)
}
