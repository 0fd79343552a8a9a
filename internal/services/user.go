package services

import (
	"context"
	"errors"

	"github.com/ch4uTR/TarimKocum/internal/store"
	"github.com/ch4uTR/TarimKocum/types"
	"golang.org/x/crypto/bcrypt"
)

const defaultUserRole = "user"

// ErrInvalidCredentials is returned when authentication fails. Callers get
// the same error for an unknown username and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// RegisterParams carries the signup fields.
type RegisterParams struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Role        string
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register creates a new account with a bcrypt-hashed password. It fails
// with store.ErrConflict when the username or email is already registered.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (types.User, error) {
	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, params.Username, params.Email)
	if err != nil {
		return types.User{}, err
	}
	if exists {
		return types.User{}, store.ErrConflict
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	role := params.Role
	if role == "" {
		role = defaultUserRole
	}

	return s.repo.Create(ctx, types.User{
		Username:     params.Username,
		Email:        params.Email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		PhoneNumber:  params.PhoneNumber,
		PasswordHash: string(hashed),
		IsActive:     true,
		Role:         role,
	})
}

// Authenticate returns the user only when the username exists and the
// password verifies against the stored hash.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// GetByID loads one user.
func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}
