//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chat-wire/errors"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(fullName, email, hashedPassword string) (User, error)
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (User, error)
	ListUsers(excludeID string) ([]User, error)
	UpdateAvatar(id, avatarURL string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the domain-friendly representation of a user in the repository layer.
// Equivalent to DiskMessage for the account domain.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	AvatarURL    string    `json:"avatar,omitempty"`
	PasswordHash string    `json:"passwordHash"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
}

func userKey(id string) []byte { return []byte("user:" + id) }

func emailKey(email string) []byte { return []byte("idx:email:" + email) }

// CreateUser persists the user in BadgerDB under "user:{id}" and keeps a
// secondary index "idx:email:{email}" for login lookups. Both writes happen
// in one transaction so the index can never point at a missing record.
func (u UserRepository) CreateUser(fullName, email, hashedPassword string) (User, error) {
	user := User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey(email), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(userKey(user.ID), data)
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// GetUserByEmail resolves the email index first, then loads the record.
func (u UserRepository) GetUserByEmail(email string) (User, error) {
	var id string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u.GetUserByID(id)
}

func (u UserRepository) GetUserByID(id string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// ListUsers returns every known account except the caller's, for the
// sidebar roster. A prefix scan over "user:" is enough at this scale.
func (u UserRepository) ListUsers(excludeID string) ([]User, error) {
	var users []User
	prefix := []byte("user:")

	err := u.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var user User
				if err := json.Unmarshal(val, &user); err != nil {
					return err
				}
				if user.ID != excludeID {
					users = append(users, user)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return users, err
}

// UpdateAvatar replaces the avatar reference on an existing record.
// Only profile fields are mutable; identity fields never change.
func (u UserRepository) UpdateAvatar(id, avatarURL string) (User, error) {
	user, err := u.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	user.AvatarURL = avatarURL

	data, err := json.Marshal(user)
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}
	err = u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(id), data)
	})
	return user, err
}
