package repository

import (
	"context"

	"gorm.io/gorm"

	"friendship-service/internal/models"
)

// FriendshipRepository is the gateway for both friendship requests and
// established friendships. Friendship lookups take the pair in either
// order; rows are stored canonically.
type FriendshipRepository interface {
	SaveRequest(ctx context.Context, req *models.FriendshipRequest) error
	FindRequest(ctx context.Context, to, from string) (*models.FriendshipRequest, error)
	DeleteRequest(ctx context.Context, to, from string) error
	FindAllRequests(ctx context.Context) ([]models.FriendshipRequest, error)
	// GetRequestsByEmail returns all pending requests the user is involved
	// in, on either side.
	GetRequestsByEmail(ctx context.Context, email string) ([]models.FriendshipRequest, error)

	SaveFriendship(ctx context.Context, f *models.Friendship) error
	FindFriendship(ctx context.Context, a, b string) (*models.Friendship, error)
	DeleteFriendship(ctx context.Context, a, b string) error
	FindAllFriendships(ctx context.Context) ([]models.Friendship, error)
	// GetFriendsByEmail resolves the user's friends to their User records.
	GetFriendsByEmail(ctx context.Context, email string) ([]models.User, error)
}

type friendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

func (r *friendshipRepository) SaveRequest(ctx context.Context, req *models.FriendshipRequest) error {
	return translateError(r.db.WithContext(ctx).Create(req).Error)
}

func (r *friendshipRepository) FindRequest(ctx context.Context, to, from string) (*models.FriendshipRequest, error) {
	var req models.FriendshipRequest
	err := r.db.WithContext(ctx).
		First(&req, "to_email = ? AND from_email = ?", to, from).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &req, nil
}

func (r *friendshipRepository) DeleteRequest(ctx context.Context, to, from string) error {
	result := r.db.WithContext(ctx).
		Delete(&models.FriendshipRequest{}, "to_email = ? AND from_email = ?", to, from)
	if result.Error != nil {
		return translateError(result.Error)
	}
	// Zero rows means a concurrent accept/reject won the race; the loser
	// observes not-found, never a crash.
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *friendshipRepository) FindAllRequests(ctx context.Context) ([]models.FriendshipRequest, error) {
	var reqs []models.FriendshipRequest
	err := r.db.WithContext(ctx).Find(&reqs).Error
	return reqs, translateError(err)
}

func (r *friendshipRepository) GetRequestsByEmail(ctx context.Context, email string) ([]models.FriendshipRequest, error) {
	var reqs []models.FriendshipRequest
	err := r.db.WithContext(ctx).
		Where("to_email = ? OR from_email = ?", email, email).
		Find(&reqs).Error
	return reqs, translateError(err)
}

func (r *friendshipRepository) SaveFriendship(ctx context.Context, f *models.Friendship) error {
	canonical := models.NewFriendship(f.UserAEmail, f.UserBEmail)
	canonical.CreatedAt = f.CreatedAt
	return translateError(r.db.WithContext(ctx).Create(&canonical).Error)
}

func (r *friendshipRepository) FindFriendship(ctx context.Context, a, b string) (*models.Friendship, error) {
	pair := models.NewFriendship(a, b)
	var f models.Friendship
	err := r.db.WithContext(ctx).
		First(&f, "user_a_email = ? AND user_b_email = ?", pair.UserAEmail, pair.UserBEmail).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &f, nil
}

func (r *friendshipRepository) DeleteFriendship(ctx context.Context, a, b string) error {
	pair := models.NewFriendship(a, b)
	result := r.db.WithContext(ctx).
		Delete(&models.Friendship{}, "user_a_email = ? AND user_b_email = ?", pair.UserAEmail, pair.UserBEmail)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *friendshipRepository) FindAllFriendships(ctx context.Context) ([]models.Friendship, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).Find(&friendships).Error
	return friendships, translateError(err)
}

func (r *friendshipRepository) GetFriendsByEmail(ctx context.Context, email string) ([]models.User, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).
		Where("user_a_email = ? OR user_b_email = ?", email, email).
		Find(&friendships).Error
	if err != nil {
		return nil, translateError(err)
	}

	if len(friendships) == 0 {
		return []models.User{}, nil
	}

	emails := make([]string, 0, len(friendships))
	for _, f := range friendships {
		emails = append(emails, f.Other(email))
	}

	var friends []models.User
	err = r.db.WithContext(ctx).Where("email IN ?", emails).Find(&friends).Error
	return friends, translateError(err)
}
