package repository

import (
	"context"

	"github.com/siddeshwardm/chat-application/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create inserts a new message record.
func (r *MessageRepo) Create(ctx context.Context, m *models.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// Conversation returns every message exchanged between a and b, oldest first.
func (r *MessageRepo) Conversation(ctx context.Context, a, b uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// MarkSeen flags every unseen message from sender to receiver as seen.
func (r *MessageRepo) MarkSeen(ctx context.Context, sender, receiver uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND seen = ?", sender, receiver, false).
		Update("seen", true)
	return res.RowsAffected, res.Error
}

// UnreadCountsBySender counts unseen messages addressed to receiver, keyed by sender.
func (r *MessageRepo) UnreadCountsBySender(ctx context.Context, receiver uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []struct {
		SenderID uuid.UUID
		Count    int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("sender_id, COUNT(*) AS count").
		Where("receiver_id = ? AND seen = ?", receiver, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.SenderID] = row.Count
	}
	return counts, nil
}

// DeleteForUsers removes every message sent or received by any of ids.
func (r *MessageRepo) DeleteForUsers(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("sender_id IN ? OR receiver_id IN ?", ids, ids).
		Delete(&models.Message{})
	return res.RowsAffected, res.Error
}
