// Package models contains domain entities and business models for the operations backend
package models

import (
	"time"
)

// AccountingEvent is a single RADIUS accounting row from the radacct table.
// The table is append-only and owned by the RADIUS server; this application
// only ever reads it. RadAcctID reflects authoritative insertion order and is
// always preferred over client-reported timestamps, which may be skewed.
type AccountingEvent struct {
	RadAcctID        int64      `gorm:"column:radacctid;primaryKey" json:"radacctid"`
	Username         string     `gorm:"column:username;size:64;not null;index:idx_radacct_username" json:"username"`
	NASIPAddress     string     `gorm:"column:nasipaddress;size:45;not null;index:idx_radacct_nasipaddress" json:"nasipaddress"`
	AcctSessionID    string     `gorm:"column:acctsessionid;size:64;not null" json:"acctsessionid"`
	AcctStartTime    time.Time  `gorm:"column:acctstarttime;not null" json:"acctstarttime"`
	AcctStopTime     *time.Time `gorm:"column:acctstoptime" json:"acctstoptime,omitempty"`
	AcctInputOctets  int64      `gorm:"column:acctinputoctets;default:0" json:"acctinputoctets"`
	AcctOutputOctets int64      `gorm:"column:acctoutputoctets;default:0" json:"acctoutputoctets"`
	AcctTerminateCause *string  `gorm:"column:acctterminatecause;size:32" json:"acctterminatecause,omitempty"`
	CallingStationID *string    `gorm:"column:callingstationid;size:50" json:"callingstationid,omitempty"`
	FramedIPAddress  *string    `gorm:"column:framedipaddress;size:45" json:"framedipaddress,omitempty"`
}

func (AccountingEvent) TableName() string { return "radacct" }

// IsOpen reports whether the session has not been stopped yet.
func (e *AccountingEvent) IsOpen() bool { return e.AcctStopTime == nil }

// LastSeen is the stop time for closed sessions and the start time for open
// ones; the dashboard shows it as the subscriber's last activity.
func (e *AccountingEvent) LastSeen() time.Time {
	if e.AcctStopTime != nil {
		return *e.AcctStopTime
	}
	return e.AcctStartTime
}

// OnlineState selects online-only or offline-only rows in accounting queries.
type OnlineState string

const (
	OnlineStateAny     OnlineState = ""
	OnlineStateOnline  OnlineState = "online"
	OnlineStateOffline OnlineState = "offline"
)

// AccountingFilter represents filter criteria for accounting queries.
// Search matches username, framed IP, and calling station as a substring.
type AccountingFilter struct {
	Username     *string
	NASIPAddress *string
	Search       *string
	Online       OnlineState
	StartedAfter *time.Time
}

// SubscriberStatusView is the derived per-subscriber connectivity view.
// It is ephemeral and recomputed on every query, never persisted.
type SubscriberStatusView struct {
	Username      string             `json:"username"`
	IsOnline      bool               `json:"is_online"`
	CurrentEvent  *AccountingEvent   `json:"current_event,omitempty"`
	LastSeen      time.Time          `json:"last_seen"`
	StaleSessions []*AccountingEvent `json:"stale_sessions,omitempty"`
	RecentHistory []*AccountingEvent `json:"recent_history,omitempty"`
}

// HasStaleSessions reports whether more than one open event was found for
// the subscriber. The newest open event stays current; the rest are listed
// in StaleSessions so callers can alert on the data-quality issue.
func (v *SubscriberStatusView) HasStaleSessions() bool {
	return len(v.StaleSessions) > 0
}
