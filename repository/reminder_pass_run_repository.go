package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/redelink/redelink/models"
	"github.com/redelink/redelink/utils"
)

type reminderPassRunRepository struct {
	*BaseRepository[models.ReminderPassRun, models.ReminderPassRunFilter]
}

// NewReminderPassRunRepository creates a new reminder pass run repository
func NewReminderPassRunRepository(db *gorm.DB) ReminderPassRunRepository {
	return &reminderPassRunRepository{
		BaseRepository: NewBaseRepository[models.ReminderPassRun, models.ReminderPassRunFilter](db, applyReminderPassRunFilter),
	}
}

func applyReminderPassRunFilter(q *gorm.DB, filter models.ReminderPassRunFilter) *gorm.DB {
	if filter.ID != nil {
		q = q.Where("id = ?", *filter.ID)
	}
	if filter.PassDate != nil {
		q = q.Where("pass_date = ?", utils.DateOnly(*filter.PassDate))
	}
	if filter.PassDateAfter != nil {
		q = q.Where("pass_date >= ?", utils.DateOnly(*filter.PassDateAfter))
	}
	return q
}

// Begin claims the pass for run.PassDate. The unique index on pass_date
// makes this the authoritative guard against two processes running the same
// daily pass.
func (r *reminderPassRunRepository) Begin(ctx context.Context, run *models.ReminderPassRun) error {
	run.PassDate = utils.DateOnly(run.PassDate)
	if err := r.Save(ctx, run); err != nil {
		if isUniqueViolation(err) {
			return ErrPassRunExists
		}
		return err
	}
	return nil
}

func (r *reminderPassRunRepository) Finish(ctx context.Context, run *models.ReminderPassRun) error {
	return r.Update(ctx, run)
}

// Abort drops the claim taken by Begin when the pass failed before doing any
// work, so a retry for the same date is not locked out.
func (r *reminderPassRunRepository) Abort(ctx context.Context, run *models.ReminderPassRun) error {
	return r.getDB(ctx).
		Where("pass_date = ?", utils.DateOnly(run.PassDate)).
		Delete(&models.ReminderPassRun{}).Error
}

func (r *reminderPassRunRepository) ByPassDate(ctx context.Context, date time.Time) (*models.ReminderPassRun, error) {
	var run models.ReminderPassRun
	err := r.getDB(ctx).
		Where("pass_date = ?", utils.DateOnly(date)).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}
