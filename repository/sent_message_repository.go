package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/redelink/redelink/models"
)

// ErrDuplicateSendRecord signals that an identical send record already
// exists for the same contract, template, and minute. Callers treat it as
// success-equivalent; the reminder was already recorded.
var ErrDuplicateSendRecord = errors.New("duplicate send record")

// ErrPassRunExists signals that a reminder pass row already exists for the
// requested date.
var ErrPassRunExists = errors.New("reminder pass already recorded for date")

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

type sentMessageRepository struct {
	*BaseRepository[models.SentMessage, models.SentMessageFilter]
}

// NewSentMessageRepository creates a new sent message repository
func NewSentMessageRepository(db *gorm.DB) SentMessageRepository {
	return &sentMessageRepository{
		BaseRepository: NewBaseRepository[models.SentMessage, models.SentMessageFilter](db, applySentMessageFilter),
	}
}

func applySentMessageFilter(q *gorm.DB, filter models.SentMessageFilter) *gorm.DB {
	if filter.ID != nil {
		q = q.Where("id = ?", *filter.ID)
	}
	if filter.ContractID != nil {
		q = q.Where("contract_id = ?", *filter.ContractID)
	}
	if filter.TemplateID != nil {
		q = q.Where("template_id = ?", *filter.TemplateID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.SentAfter != nil {
		q = q.Where("sent_at >= ?", *filter.SentAfter)
	}
	if filter.SentBefore != nil {
		q = q.Where("sent_at <= ?", *filter.SentBefore)
	}
	return q
}

func (r *sentMessageRepository) Append(ctx context.Context, record *models.SentMessage) error {
	if err := r.Save(ctx, record); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSendRecord
		}
		return err
	}
	return nil
}

func (r *sentMessageRepository) UpdateStatus(ctx context.Context, id uint, status models.MessageSendStatus) error {
	return r.getDB(ctx).
		Model(&models.SentMessage{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// RecentSends only returns successful records; a failed delivery must not
// start the cooldown window.
func (r *sentMessageRepository) RecentSends(ctx context.Context, contractIDs []uint, since time.Time) ([]*models.SentMessage, error) {
	if len(contractIDs) == 0 {
		return nil, nil
	}
	var records []*models.SentMessage
	err := r.getDB(ctx).
		Model(&models.SentMessage{}).
		Where("contract_id IN ? AND sent_at >= ? AND status = ?", contractIDs, since, models.MessageSendStatusSuccessful).
		Order("sent_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
