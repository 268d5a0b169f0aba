package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/redelink/redelink/models"
)

type accountingRepository struct {
	db *gorm.DB
}

// NewAccountingRepository creates a read-only repository over the radacct
// table. FreeRADIUS owns writes; ordering of radacctid reflects insertion
// order and is the tie-breaker everywhere, never the timestamps.
func NewAccountingRepository(db *gorm.DB) AccountingRepository {
	return &accountingRepository{db: db}
}

func (r *accountingRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// buildEventConditions renders filter into SQL fragments applied to the raw
// radacct rows, before the window function picks the latest row per
// username. The Online filter cannot be applied here because it concerns the
// latest row only; it is applied after the window in latestQuery.
func buildEventConditions(filter models.AccountingFilter) (string, []interface{}) {
	conds := []string{"1=1"}
	var args []interface{}

	if filter.Username != nil {
		conds = append(conds, "username = ?")
		args = append(args, *filter.Username)
	}
	if filter.NASIPAddress != nil {
		conds = append(conds, "nasipaddress = ?")
		args = append(args, *filter.NASIPAddress)
	}
	if filter.Search != nil && *filter.Search != "" {
		conds = append(conds, "(username ILIKE ? OR COALESCE(framedipaddress, '') ILIKE ? OR COALESCE(callingstationid, '') ILIKE ?)")
		pattern := "%" + *filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if filter.StartedAfter != nil {
		conds = append(conds, "acctstarttime >= ?")
		args = append(args, *filter.StartedAfter)
	}

	return strings.Join(conds, " AND "), args
}

// latestQuery is the windowed selection of the newest row per subscriber.
// ROW_NUMBER over radacctid DESC keeps filtering and pagination inside the
// database instead of scanning the full log per request.
func latestQuery(filter models.AccountingFilter) (string, []interface{}) {
	where, args := buildEventConditions(filter)

	onlineCond := ""
	switch filter.Online {
	case models.OnlineStateOnline:
		onlineCond = " AND acctstoptime IS NULL"
	case models.OnlineStateOffline:
		onlineCond = " AND acctstoptime IS NOT NULL"
	}

	query := fmt.Sprintf(`
		SELECT * FROM (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY username ORDER BY radacctid DESC) AS rn
			FROM radacct
			WHERE %s
		) latest
		WHERE rn = 1%s`, where, onlineCond)

	return query, args
}

func (r *accountingRepository) LatestPerSubscriber(ctx context.Context, filter models.AccountingFilter, limit int, offset int) ([]*models.AccountingEvent, error) {
	query, args := latestQuery(filter)
	query += " ORDER BY username ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", offset)
	}

	var events []*models.AccountingEvent
	if err := r.getDB(ctx).Raw(query, args...).Scan(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *accountingRepository) CountSubscribers(ctx context.Context, filter models.AccountingFilter) (int64, error) {
	query, args := latestQuery(filter)
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s) counted", query)

	var count int64
	if err := r.getDB(ctx).Raw(countQuery, args...).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *accountingRepository) History(ctx context.Context, username string, limit int, offset int) ([]*models.AccountingEvent, error) {
	q := r.getDB(ctx).
		Model(&models.AccountingEvent{}).
		Where("username = ?", username).
		Order("radacctid DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var events []*models.AccountingEvent
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *accountingRepository) CountHistory(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.getDB(ctx).
		Model(&models.AccountingEvent{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *accountingRepository) OpenSessions(ctx context.Context, username string) ([]*models.AccountingEvent, error) {
	var events []*models.AccountingEvent
	err := r.getDB(ctx).
		Model(&models.AccountingEvent{}).
		Where("username = ? AND acctstoptime IS NULL", username).
		Order("radacctid DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *accountingRepository) OpenSessionsFor(ctx context.Context, usernames []string) ([]*models.AccountingEvent, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	var events []*models.AccountingEvent
	err := r.getDB(ctx).
		Model(&models.AccountingEvent{}).
		Where("username IN ? AND acctstoptime IS NULL", usernames).
		Order("radacctid DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
