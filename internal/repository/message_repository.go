package repository

import (
	"context"

	"gorm.io/gorm"

	"friendship-service/internal/models"
)

type MessageRepository interface {
	Save(ctx context.Context, msg *models.Message) error
	FindByID(ctx context.Context, id string) (*models.Message, error)
	FindAll(ctx context.Context) ([]models.Message, error)
	// FindBetween returns the conversation between two users in send order,
	// regardless of direction.
	FindBetween(ctx context.Context, a, b string) ([]models.Message, error)
	DeleteByID(ctx context.Context, id string) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Save(ctx context.Context, msg *models.Message) error {
	return translateError(r.db.WithContext(ctx).Create(msg).Error)
}

func (r *messageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	err := r.db.WithContext(ctx).First(&msg, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &msg, nil
}

func (r *messageRepository) FindAll(ctx context.Context) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).Find(&msgs).Error
	return msgs, translateError(err)
}

func (r *messageRepository) FindBetween(ctx context.Context, a, b string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_email = ? AND receiver_email = ?) OR (sender_email = ? AND receiver_email = ?)",
			a, b, b, a).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, translateError(err)
}

func (r *messageRepository) DeleteByID(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Message{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
