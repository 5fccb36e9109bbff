package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/feastly/food-ordering-backend/internal/model"
	"github.com/feastly/food-ordering-backend/internal/repository"
	"github.com/feastly/food-ordering-backend/internal/utils"
)

// UserStore is the slice of the credential store the orchestrator consumes.
type UserStore interface {
	Create(ctx context.Context, fullName, email, passwordHash string, roleID uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RoleStore resolves seeded roles by name.
type RoleStore interface {
	GetByName(ctx context.Context, name string) (model.Role, error)
}

// TokenLedger is the durable refresh token store with rotation semantics.
type TokenLedger interface {
	Issue(ctx context.Context, userID uint64) (model.RefreshToken, error)
	Lookup(ctx context.Context, token string) (model.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	Rotate(ctx context.Context, old model.RefreshToken) (model.RefreshToken, error)
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// Denylist records access tokens invalidated before their natural expiry.
type Denylist interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
}

// AuthResult is the profile-shaped response shared by register, login and
// refresh.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	Email        string
	FirstName    string
	LastName     string
}

// AuthService orchestrates the register / login / logout / refresh flows.
// Each call is an independent request-scoped unit of work; nothing is shared
// between calls except through the durable stores.
type AuthService struct {
	users    UserStore
	roles    RoleStore
	tokens   TokenLedger
	denylist Denylist

	secret     []byte // HMAC signing key for access tokens
	accessTTL  time.Duration
	bcryptCost int
}

func NewAuthService(users UserStore, roles RoleStore, tokens TokenLedger, denylist Denylist,
	secret []byte, accessTTL time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		users: users, roles: roles, tokens: tokens, denylist: denylist,
		secret: secret, accessTTL: accessTTL, bcryptCost: bcryptCost,
	}
}

// Register creates a user with the CUSTOMER role and immediately issues an
// access/refresh pair. Fails with ErrEmailTaken if the email already has an
// account, and with ErrRoleNotSeeded if the seed role is missing.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password string) (AuthResult, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(email)
	if firstName == "" || email == "" || password == "" {
		return AuthResult{}, ErrValidation
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, err
	}

	role, err := s.roles.GetByName(ctx, model.RoleCustomer)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrRoleNotSeeded
		}
		return AuthResult{}, err
	}

	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return AuthResult{}, err
	}

	fullName := firstName
	if lastName != "" {
		fullName = firstName + " " + lastName
	}
	user, err := s.users.Create(ctx, fullName, email, hash, role.ID)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, err
	}
	log.Printf("auth: registered user id=%d email=%s", user.ID, user.Email)

	return s.issuePair(ctx, user, firstName, lastName)
}

// Login verifies credentials and issues a fresh token pair. Unknown email
// and wrong password both report ErrInvalidCredentials so the response leaks
// nothing about which factor was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return AuthResult{}, ErrValidation
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}
	log.Printf("auth: login user id=%d email=%s", user.ID, user.Email)

	first, last := SplitFullName(user.FullName)
	return s.issuePair(ctx, user, first, last)
}

// LogoutResult reports the outcome of a logout attempt. Structural token
// failures are an outcome, not an error: the flow never errors toward the
// caller once a bearer value was presented.
type LogoutResult struct {
	Success bool
	Message string
}

// Logout extracts the subject from the bearer access token, revokes all of
// the user's refresh tokens and denylists the access token for the rest of
// its lifetime. A missing or malformed Authorization header fails with
// ErrValidation and changes nothing.
func (s *AuthService) Logout(ctx context.Context, authHeader string) (LogoutResult, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return LogoutResult{}, ErrValidation
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if raw == "" {
		return LogoutResult{}, ErrValidation
	}

	subject, expiresAt, err := utils.VerifyAccessToken(s.secret, raw)
	if err != nil {
		log.Printf("auth: logout with invalid token: %v", err)
		return LogoutResult{Success: false, Message: "Invalid or expired token"}, nil
	}

	if user, err := s.users.GetByEmail(ctx, subject); err == nil {
		if err := s.tokens.RevokeAllForUser(ctx, user.ID); err != nil {
			return LogoutResult{}, err
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return LogoutResult{}, err
	}

	if err := s.denylist.Add(ctx, raw, expiresAt); err != nil {
		return LogoutResult{}, err
	}
	log.Printf("auth: logout user email=%s", subject)
	return LogoutResult{Success: true, Message: "Logout successful"}, nil
}

// Refresh exchanges a live refresh token for a new access/refresh pair. The
// presented token is single-use: rotation revokes it, so replaying it fails
// with ErrTokenRevoked. An expired token is deleted as a side effect of the
// failed check.
func (s *AuthService) Refresh(ctx context.Context, token string) (AuthResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return AuthResult{}, ErrValidation
	}

	current, err := s.tokens.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrTokenNotFound
		}
		return AuthResult{}, err
	}
	if time.Now().UTC().After(current.ExpiryDate) {
		if err := s.tokens.Delete(ctx, current.Token); err != nil {
			log.Printf("auth: deleting expired refresh token failed: %v", err)
		}
		return AuthResult{}, ErrTokenExpired
	}
	if current.Revoked {
		return AuthResult{}, ErrTokenRevoked
	}

	user, err := s.users.GetByID(ctx, current.UserID)
	if err != nil {
		return AuthResult{}, err
	}

	rotated, err := s.tokens.Rotate(ctx, current)
	if err != nil {
		return AuthResult{}, err
	}
	access, err := utils.IssueAccessToken(s.secret, user.Email, s.accessTTL)
	if err != nil {
		return AuthResult{}, err
	}
	log.Printf("auth: refreshed tokens for user id=%d", user.ID)

	first, last := SplitFullName(user.FullName)
	return AuthResult{
		AccessToken:  access,
		RefreshToken: rotated.Token,
		Email:        user.Email,
		FirstName:    first,
		LastName:     last,
	}, nil
}

func (s *AuthService) issuePair(ctx context.Context, user model.User, first, last string) (AuthResult, error) {
	access, err := utils.IssueAccessToken(s.secret, user.Email, s.accessTTL)
	if err != nil {
		return AuthResult{}, err
	}
	refresh, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		Email:        user.Email,
		FirstName:    first,
		LastName:     last,
	}, nil
}

// SplitFullName splits a stored full name on the first whitespace run:
// the first token is the first name, the remainder the last name. A
// single-word name yields an empty last name. Lossy for middle names, but
// kept for compatibility with how names were captured at registration.
func SplitFullName(full string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = strings.TrimSpace(parts[1])
	}
	return first, last
}
