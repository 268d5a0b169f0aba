package businessflow

import (
	"sort"

	"github.com/redelink/redelink/models"
)

// ResolveLatestPerSubscriber collapses a slice of accounting events into one
// SubscriberStatusView per username. The current event for a subscriber is
// the one with the highest RadAcctID. Insertion order decides, not the
// timestamps; NAS clocks drift and interim updates rewrite acctupdatetime,
// so radacctid is the only ordering the log guarantees.
//
// When a subscriber has more than one open session, the newest open session
// is the current one and every older open session is tagged stale. Stale
// sessions are reported, never closed and never treated as an error; ghost
// rows from NAS reboots resolve themselves when the next stop record lands.
func ResolveLatestPerSubscriber(events []*models.AccountingEvent) []*models.SubscriberStatusView {
	byUser := make(map[string][]*models.AccountingEvent)
	for _, ev := range events {
		if ev == nil || ev.Username == "" {
			continue
		}
		byUser[ev.Username] = append(byUser[ev.Username], ev)
	}

	views := make([]*models.SubscriberStatusView, 0, len(byUser))
	for username, evs := range byUser {
		views = append(views, resolveSubscriber(username, evs))
	}

	sort.Slice(views, func(i, j int) bool { return views[i].Username < views[j].Username })
	return views
}

func resolveSubscriber(username string, events []*models.AccountingEvent) *models.SubscriberStatusView {
	sorted := make([]*models.AccountingEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RadAcctID > sorted[j].RadAcctID })

	current := sorted[0]

	// Any open row older than the current event is a ghost left behind by a
	// lost stop record or a NAS reboot.
	var stale []*models.AccountingEvent
	for _, ev := range sorted[1:] {
		if ev.IsOpen() {
			stale = append(stale, ev)
		}
	}

	return &models.SubscriberStatusView{
		Username:      username,
		IsOnline:      current.IsOpen(),
		CurrentEvent:  current,
		LastSeen:      current.LastSeen(),
		StaleSessions: stale,
	}
}

// TagStaleSessions builds the stale list for one subscriber from its open
// sessions, newest first by RadAcctID. The head of the slice is the current
// session and is excluded.
func TagStaleSessions(openSessions []*models.AccountingEvent) []*models.AccountingEvent {
	if len(openSessions) <= 1 {
		return nil
	}
	sorted := make([]*models.AccountingEvent, len(openSessions))
	copy(sorted, openSessions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RadAcctID > sorted[j].RadAcctID })
	return sorted[1:]
}
