//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"chat-wire/auth"
	"chat-wire/domain"
	"chat-wire/errors"
	"chat-wire/repositories"
	"context"
	"fmt"
	"time"
)

type IAuthService interface {
	Signup(fullName, email, password string) (domain.User, Token, error)
	Login(email, password string) (domain.User, Token, error)
	Me(userID string) (domain.User, error)
	UpdateProfile(ctx context.Context, userID, avatar string) (domain.User, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	images         ImageHost
	tokenDuration  time.Duration
}

type Token string

func (t Token) String() string {
	return string(t)
}

func NewAuthService(repo repositories.IUserRepository, images ImageHost,
	tokenDuration time.Duration) IAuthService {
	return &AuthService{userRepository: repo, images: images, tokenDuration: tokenDuration}
}

func (s *AuthService) Signup(fullName, email, password string) (domain.User, Token, error) {
	valReq := auth.SignupRequest{
		FullName: fullName,
		Email:    email,
		Password: password,
	}

	// 1. Validate business rules (email format, password complexity)
	// We check this before any expensive cryptographic operation.
	if err := auth.ValidateSignup(valReq); err != nil {
		return domain.User{}, "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// 2. Hash the password using Argon2id
	// Done in the service layer to keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash
	user, err := s.userRepository.CreateUser(fullName, email, hashedPassword)
	if err != nil {
		return domain.User{}, "", err // Will propagate ErrUserAlreadyExists if email is taken
	}

	// 4. Generate the initial session token
	token, err := auth.GenerateToken(user.ID, user.Roles, s.tokenDuration)
	if err != nil {
		return domain.User{}, "", errors.ErrTokenGeneration
	}

	return fromRepositoryUser(user), Token(token), nil
}

func (s *AuthService) Login(email, password string) (domain.User, Token, error) {
	// 1. Retrieve user by email from storage
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return domain.User{}, "", errors.ErrInvalidCredentials
	}

	// 2. Compare the provided password with the stored hash
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return domain.User{}, "", errors.ErrInvalidCredentials
	}

	// 3. Issue the JWT token
	token, err := auth.GenerateToken(user.ID, user.Roles, s.tokenDuration)
	if err != nil {
		return domain.User{}, "", errors.ErrTokenGeneration
	}

	return fromRepositoryUser(user), Token(token), nil
}

func (s *AuthService) Me(userID string) (domain.User, error) {
	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return domain.User{}, err
	}
	return fromRepositoryUser(user), nil
}

// UpdateProfile hosts the new avatar image and stores its reference on
// the account. Identity fields are immutable; only the avatar changes.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, avatar string) (domain.User, error) {
	data, extension, err := decodeImagePayload(avatar)
	if err != nil {
		return domain.User{}, err
	}
	avatarURL, err := s.images.Upload(ctx, data, extension)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.userRepository.UpdateAvatar(userID, avatarURL)
	if err != nil {
		return domain.User{}, err
	}
	return fromRepositoryUser(user), nil
}
