package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/app/repositories"
	"github.com/shashiranjanraj/bodega/pkg/auth"
	"github.com/shashiranjanraj/bodega/pkg/orm"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService() *AuthService {
	return &AuthService{users: repositories.NewUserRepository()}
}

// Login checks the operator's password and issues an access/refresh pair.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (auth.TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, in.Email)
	if orm.IsNotFound(err) {
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return auth.TokenPair{}, err
	}
	if !auth.CheckPassword(u.Password, in.Password) {
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	return auth.IssuePair(u.ID.String(), u.Role)
}

// Refresh trades a refresh token for a new pair. The operator must still
// exist; its current role goes into the new tokens.
func (s *AuthService) Refresh(ctx context.Context, in RefreshInput) (auth.TokenPair, error) {
	claims, err := auth.ValidateRefreshToken(in.RefreshToken)
	if err != nil {
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Me(ctx, claims.UserID)
	if errors.Is(err, ErrNotFound) {
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return auth.TokenPair{}, err
	}
	return auth.IssuePair(u.ID.String(), u.Role)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Find(ctx, id)
	return u, findError(err)
}

// IssueFor mints a pair for an existing operator without a password.
func (s *AuthService) IssueFor(ctx context.Context, email string) (auth.TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return auth.TokenPair{}, findError(err)
	}
	return auth.IssuePair(u.ID.String(), u.Role)
}

// CreateUser stores an operator with a bcrypt-hashed password.
func (s *AuthService) CreateUser(ctx context.Context, name, email, password, role string) (*models.User, error) {
	if role != models.RoleAdmin && role != models.RoleOperator {
		return nil, invalid("role", "role must be %s or %s", models.RoleAdmin, models.RoleOperator)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := models.User{Name: name, Email: strings.ToLower(strings.TrimSpace(email)), Password: hash, Role: role}
	if err := s.users.Create(ctx, &u); err != nil {
		return nil, writeError(err)
	}
	return &u, nil
}
