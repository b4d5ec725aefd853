package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"watchvault/models"
	"watchvault/pkg/session"
)

// gormUserStore adapts the users table to the session.UserStore contract.
type gormUserStore struct {
	db *gorm.DB
}

func (s gormUserStore) FindByUsername(ctx context.Context, username string) (*session.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toSessionUser(u), nil
}

func (s gormUserStore) FindByID(ctx context.Context, id string) (*session.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toSessionUser(u), nil
}

func (s gormUserStore) Create(ctx context.Context, username, passwordHash string) (*session.User, error) {
	u := models.User{ID: uuid.NewString(), Username: username, HashedPassword: []byte(passwordHash)}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if isUniqueConstraintError(err) { // race after the optimistic pre-check
			return nil, fmt.Errorf("username: %w", session.ErrAlreadyExists)
		}
		return nil, err
	}
	return toSessionUser(u), nil
}

func toSessionUser(u models.User) *session.User {
	return &session.User{ID: u.ID, Username: u.Username, PasswordHash: string(u.HashedPassword)}
}

// gormTokenStore adapts the refresh_tokens table to the session.TokenStore
// contract. DeleteByID and DeleteAllByUser are single DELETE statements; the
// database decides the winner of concurrent consumes and RowsAffected reports it.
type gormTokenStore struct {
	db *gorm.DB
}

func (s gormTokenStore) Create(ctx context.Context, rec session.TokenRecord) error {
	row := models.RefreshToken{
		ID:        rec.ID,
		UserID:    rec.UserID,
		TokenHash: rec.HashedSecret,
		Revoked:   rec.Revoked,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s gormTokenStore) FindByID(ctx context.Context, id string) (*session.TokenRecord, error) {
	var row models.RefreshToken
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session.TokenRecord{
		ID:           row.ID,
		HashedSecret: row.TokenHash,
		UserID:       row.UserID,
		Revoked:      row.Revoked,
	}, nil
}

func (s gormTokenStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s gormTokenStore) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
