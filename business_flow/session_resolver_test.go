package businessflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redelink/redelink/models"
	"github.com/redelink/redelink/utils"
)

func openEvent(id int64, username string, start time.Time) *models.AccountingEvent {
	return &models.AccountingEvent{
		RadAcctID:     id,
		Username:      username,
		AcctSessionID: "sess-" + username,
		AcctStartTime: start,
	}
}

func closedEvent(id int64, username string, start, stop time.Time) *models.AccountingEvent {
	ev := openEvent(id, username, start)
	ev.AcctStopTime = utils.ToPtr(stop)
	return ev
}

func TestResolveLatestPerSubscriber(t *testing.T) {
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	t.Run("highest radacctid wins regardless of timestamps", func(t *testing.T) {
		// The older row carries a later start time, as happens when a NAS
		// clock drifts ahead. Insertion order must still decide.
		events := []*models.AccountingEvent{
			closedEvent(100, "alice", base.Add(5*time.Hour), base.Add(6*time.Hour)),
			openEvent(200, "alice", base),
		}

		views := ResolveLatestPerSubscriber(events)
		require.Len(t, views, 1)
		assert.Equal(t, "alice", views[0].Username)
		assert.True(t, views[0].IsOnline)
		assert.Equal(t, int64(200), views[0].CurrentEvent.RadAcctID)
	})

	t.Run("closed latest event reports offline", func(t *testing.T) {
		events := []*models.AccountingEvent{
			openEvent(10, "bob", base),
			closedEvent(20, "bob", base.Add(time.Hour), base.Add(2*time.Hour)),
		}

		views := ResolveLatestPerSubscriber(events)
		require.Len(t, views, 1)
		assert.False(t, views[0].IsOnline)
		assert.Equal(t, int64(20), views[0].CurrentEvent.RadAcctID)
		// The older open row is a ghost and must be surfaced, not closed.
		require.Len(t, views[0].StaleSessions, 1)
		assert.Equal(t, int64(10), views[0].StaleSessions[0].RadAcctID)
	})

	t.Run("multiple open sessions tag all but the newest as stale", func(t *testing.T) {
		events := []*models.AccountingEvent{
			openEvent(1, "carol", base),
			openEvent(2, "carol", base.Add(time.Hour)),
			openEvent(3, "carol", base.Add(2*time.Hour)),
		}

		views := ResolveLatestPerSubscriber(events)
		require.Len(t, views, 1)
		assert.True(t, views[0].IsOnline)
		assert.Equal(t, int64(3), views[0].CurrentEvent.RadAcctID)
		require.Len(t, views[0].StaleSessions, 2)
		assert.Equal(t, int64(2), views[0].StaleSessions[0].RadAcctID)
		assert.Equal(t, int64(1), views[0].StaleSessions[1].RadAcctID)
		assert.True(t, views[0].HasStaleSessions())
	})

	t.Run("last seen uses stop time for closed and start time for open", func(t *testing.T) {
		stop := base.Add(3 * time.Hour)
		events := []*models.AccountingEvent{
			closedEvent(5, "dave", base, stop),
			openEvent(6, "erin", base.Add(time.Minute)),
		}

		views := ResolveLatestPerSubscriber(events)
		require.Len(t, views, 2)
		assert.Equal(t, "dave", views[0].Username)
		assert.Equal(t, stop, views[0].LastSeen)
		assert.Equal(t, "erin", views[1].Username)
		assert.Equal(t, base.Add(time.Minute), views[1].LastSeen)
	})

	t.Run("views sort by username", func(t *testing.T) {
		events := []*models.AccountingEvent{
			openEvent(1, "zeta", base),
			openEvent(2, "alpha", base),
			openEvent(3, "mike", base),
		}

		views := ResolveLatestPerSubscriber(events)
		require.Len(t, views, 3)
		assert.Equal(t, "alpha", views[0].Username)
		assert.Equal(t, "mike", views[1].Username)
		assert.Equal(t, "zeta", views[2].Username)
	})

	t.Run("empty usernames and nil events are ignored", func(t *testing.T) {
		events := []*models.AccountingEvent{
			nil,
			openEvent(1, "", base),
			openEvent(2, "frank", base),
		}

		views := ResolveLatestPerSubscriber(events)
		require.Len(t, views, 1)
		assert.Equal(t, "frank", views[0].Username)
	})
}

func TestTagStaleSessions(t *testing.T) {
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	t.Run("single open session has no stale rows", func(t *testing.T) {
		assert.Nil(t, TagStaleSessions([]*models.AccountingEvent{openEvent(1, "alice", base)}))
	})

	t.Run("empty input has no stale rows", func(t *testing.T) {
		assert.Nil(t, TagStaleSessions(nil))
	})

	t.Run("newest open session is excluded", func(t *testing.T) {
		stale := TagStaleSessions([]*models.AccountingEvent{
			openEvent(7, "alice", base),
			openEvent(9, "alice", base.Add(time.Hour)),
			openEvent(8, "alice", base.Add(30*time.Minute)),
		})
		require.Len(t, stale, 2)
		assert.Equal(t, int64(8), stale[0].RadAcctID)
		assert.Equal(t, int64(7), stale[1].RadAcctID)
	})
}
