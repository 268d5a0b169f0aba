package businessflow

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/redelink/redelink/app/dto"
	"github.com/redelink/redelink/models"
	"github.com/redelink/redelink/repository"
)

// fakeAccountingRepo serves a fixed accounting log without SQL. It honors
// the search and online filters the way the windowed query does.
type fakeAccountingRepo struct {
	repository.AccountingRepository
	latest  []*models.AccountingEvent
	open    []*models.AccountingEvent
	history []*models.AccountingEvent
	err     error
}

func matchesFilter(ev *models.AccountingEvent, filter models.AccountingFilter) bool {
	if filter.Search != nil && !strings.Contains(ev.Username, *filter.Search) {
		return false
	}
	switch filter.Online {
	case models.OnlineStateOnline:
		return ev.AcctStopTime == nil
	case models.OnlineStateOffline:
		return ev.AcctStopTime != nil
	}
	return true
}

func (f *fakeAccountingRepo) filtered(filter models.AccountingFilter) []*models.AccountingEvent {
	var out []*models.AccountingEvent
	for _, ev := range f.latest {
		if matchesFilter(ev, filter) {
			out = append(out, ev)
		}
	}
	return out
}

func (f *fakeAccountingRepo) LatestPerSubscriber(ctx context.Context, filter models.AccountingFilter, limit, offset int) ([]*models.AccountingEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	matched := f.filtered(filter)
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (f *fakeAccountingRepo) CountSubscribers(ctx context.Context, filter models.AccountingFilter) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.filtered(filter))), nil
}

func (f *fakeAccountingRepo) OpenSessionsFor(ctx context.Context, usernames []string) ([]*models.AccountingEvent, error) {
	names := make(map[string]bool, len(usernames))
	for _, u := range usernames {
		names[u] = true
	}
	var out []*models.AccountingEvent
	for _, ev := range f.open {
		if names[ev.Username] {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeAccountingRepo) History(ctx context.Context, username string, limit, offset int) ([]*models.AccountingEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.AccountingEvent
	for _, ev := range f.history {
		if ev.Username == username {
			out = append(out, ev)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAccountingRepo) CountHistory(ctx context.Context, username string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, ev := range f.history {
		if ev.Username == username {
			n++
		}
	}
	return n, nil
}

func TestListStatuses(t *testing.T) {
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	t.Run("returns page with online count and stale tags", func(t *testing.T) {
		repo := &fakeAccountingRepo{
			latest: []*models.AccountingEvent{
				openEvent(20, "alice", base),
				closedEvent(15, "bob", base, base.Add(time.Hour)),
			},
			open: []*models.AccountingEvent{
				openEvent(20, "alice", base),
				openEvent(12, "alice", base.Add(-time.Hour)),
			},
		}
		flow := NewSubscriberStatusFlow(repo)

		resp, err := flow.ListStatuses(context.Background(), &dto.SubscriberStatusListRequest{Page: 1, PageSize: 20})
		require.NoError(t, err)

		require.Len(t, resp.Items, 2)
		assert.Equal(t, int64(1), resp.OnlineCount)
		assert.Equal(t, int64(2), resp.Pagination.Total)

		assert.Equal(t, "alice", resp.Items[0].Username)
		assert.True(t, resp.Items[0].IsOnline)
		require.Len(t, resp.Items[0].StaleSessions, 1)
		assert.Equal(t, int64(12), resp.Items[0].StaleSessions[0].RadAcctID)

		assert.Equal(t, "bob", resp.Items[1].Username)
		assert.False(t, resp.Items[1].IsOnline)
	})

	t.Run("online count respects the list filter", func(t *testing.T) {
		repo := &fakeAccountingRepo{
			latest: []*models.AccountingEvent{
				openEvent(20, "alice", base),
				openEvent(18, "bob", base),
				closedEvent(15, "alina", base, base.Add(time.Hour)),
			},
		}
		flow := NewSubscriberStatusFlow(repo)

		// Search narrows to alice and alina; bob is online but outside the
		// filter, so the counter must not include him.
		resp, err := flow.ListStatuses(context.Background(), &dto.SubscriberStatusListRequest{Search: "ali", Page: 1, PageSize: 20})
		require.NoError(t, err)

		require.Len(t, resp.Items, 2)
		assert.Equal(t, int64(1), resp.OnlineCount)
		assert.Equal(t, int64(2), resp.Pagination.Total)
	})

	t.Run("offline filter still counts the online subscribers it hides", func(t *testing.T) {
		repo := &fakeAccountingRepo{
			latest: []*models.AccountingEvent{
				openEvent(20, "alice", base),
				closedEvent(15, "bob", base, base.Add(time.Hour)),
			},
		}
		flow := NewSubscriberStatusFlow(repo)

		resp, err := flow.ListStatuses(context.Background(), &dto.SubscriberStatusListRequest{Online: "offline", Page: 1, PageSize: 20})
		require.NoError(t, err)

		require.Len(t, resp.Items, 1)
		assert.Equal(t, "bob", resp.Items[0].Username)
		assert.Equal(t, int64(1), resp.OnlineCount)
	})

	t.Run("invalid page is rejected", func(t *testing.T) {
		flow := NewSubscriberStatusFlow(&fakeAccountingRepo{})
		_, err := flow.ListStatuses(context.Background(), &dto.SubscriberStatusListRequest{Page: -1, PageSize: 20})
		assert.ErrorIs(t, err, ErrInvalidPage)
	})

	t.Run("store failure surfaces as unavailable", func(t *testing.T) {
		flow := NewSubscriberStatusFlow(&fakeAccountingRepo{err: errors.New("connection refused")})
		_, err := flow.ListStatuses(context.Background(), &dto.SubscriberStatusListRequest{Page: 1, PageSize: 20})
		require.Error(t, err)
		assert.True(t, IsStoreUnavailable(err))
	})
}

func TestHistory(t *testing.T) {
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	t.Run("returns sessions for known subscriber", func(t *testing.T) {
		repo := &fakeAccountingRepo{
			history: []*models.AccountingEvent{
				openEvent(30, "alice", base.Add(2*time.Hour)),
				closedEvent(20, "alice", base, base.Add(time.Hour)),
			},
		}
		flow := NewSubscriberStatusFlow(repo)

		resp, err := flow.History(context.Background(), &dto.SessionHistoryRequest{Username: "alice", Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.Username)
		assert.Len(t, resp.Items, 2)
		assert.Equal(t, int64(2), resp.Pagination.Total)
	})

	t.Run("defaults to the last ten sessions", func(t *testing.T) {
		var events []*models.AccountingEvent
		for i := 0; i < 12; i++ {
			events = append(events, closedEvent(int64(100-i), "alice", base, base.Add(time.Hour)))
		}
		flow := NewSubscriberStatusFlow(&fakeAccountingRepo{history: events})

		resp, err := flow.History(context.Background(), &dto.SessionHistoryRequest{Username: "alice"})
		require.NoError(t, err)
		assert.Len(t, resp.Items, 10)
		assert.Equal(t, 10, resp.Pagination.PageSize)
		assert.Equal(t, int64(12), resp.Pagination.Total)
	})

	t.Run("unknown subscriber is not found", func(t *testing.T) {
		flow := NewSubscriberStatusFlow(&fakeAccountingRepo{})
		_, err := flow.History(context.Background(), &dto.SessionHistoryRequest{Username: "ghost", Page: 1, PageSize: 10})
		assert.ErrorIs(t, err, ErrSubscriberNotFound)
	})

	t.Run("empty username is not found", func(t *testing.T) {
		flow := NewSubscriberStatusFlow(&fakeAccountingRepo{})
		_, err := flow.History(context.Background(), &dto.SessionHistoryRequest{Username: "", Page: 1, PageSize: 10})
		assert.ErrorIs(t, err, ErrSubscriberNotFound)
	})
}

func TestExportStatuses(t *testing.T) {
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	repo := &fakeAccountingRepo{
		latest: []*models.AccountingEvent{
			openEvent(20, "alice", base),
			closedEvent(15, "bob", base, base.Add(time.Hour)),
		},
	}
	flow := NewSubscriberStatusFlow(repo)

	data, err := flow.ExportStatuses(context.Background(), &dto.SubscriberStatusListRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	rows, err := file.GetRows("Subscribers")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Username", rows[0][0])
	assert.Equal(t, "alice", rows[1][0])
	assert.Equal(t, "bob", rows[2][0])
}
