package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/cosmic-nutrition/backend/internal/domain"
	"github.com/pageza/cosmic-nutrition/backend/internal/models"
	"github.com/pageza/cosmic-nutrition/backend/internal/types"
	"gorm.io/gorm"
)

// SyncResult reports what Sync did.
type SyncResult struct {
	User *models.User
	// Created is true when a new row was inserted.
	Created bool
	// Raced is true when a concurrent sync inserted the same identity first.
	Raced bool
}

// UserService mirrors identities from the auth provider into the local database.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Sync finds a user by auth0 id or email and creates one when neither matches.
// Existing rows are never modified. The body's auth0 id must equal the token subject.
func (s *UserService) Sync(ctx context.Context, tokenSubject string, req *types.SyncUserRequest) (*SyncResult, error) {
	if req.Auth0ID != tokenSubject {
		return nil, fmt.Errorf("%w: token does not match user ID", domain.ErrForbidden)
	}

	email := strings.TrimSpace(req.Email)
	if req.Auth0ID == "" || email == "" {
		return nil, domain.NewValidationError("auth0Id", "Auth0 ID and email are required.")
	}

	db := s.db.WithContext(ctx)

	var existing models.User
	err := db.Where("auth0_id = ? OR email = ?", req.Auth0ID, email).First(&existing).Error
	if err == nil {
		return &SyncResult{User: &existing}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user := &models.User{Auth0ID: req.Auth0ID, Email: email}
	if err := db.Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return &SyncResult{Raced: true}, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &SyncResult{User: user, Created: true}, nil
}

// isDuplicateKey detects unique violations from either dialect. TranslateError
// covers postgres; the sqlite driver reports them as plain text.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
