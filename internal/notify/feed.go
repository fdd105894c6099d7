// Package notify keeps the ephemeral notification feed behind the bell:
// most-recent-first, capped, with an unread counter. The feed is cached in
// the local store so it survives restarts; it is never server-persisted.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// Severity levels of a notification.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// MaxEntries caps the feed; the oldest entry falls off first.
const MaxEntries = 50

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Project   string    `json:"project"`
	JiraID    string    `json:"jiraId"`
	Summary   string    `json:"summary"`
	Link      string    `json:"link"`
	Timestamp time.Time `json:"timestamp"`
}

// Cache is the slice of the local store the feed persists into.
type Cache interface {
	Set(key string, value any) error
	Get(key string, out any) bool
}

const (
	cacheKeyEntries = "notifications"
	cacheKeyUnread  = "unreadCount"
)

type Feed struct {
	entries []Notification
	unread  int
	cache   Cache
}

// NewFeed loads any cached entries. A nil cache keeps the feed in memory
// only.
func NewFeed(cache Cache) *Feed {
	f := &Feed{cache: cache}
	if cache != nil {
		cache.Get(cacheKeyEntries, &f.entries)
		cache.Get(cacheKeyUnread, &f.unread)
		if len(f.entries) > MaxEntries {
			f.entries = f.entries[:MaxEntries]
		}
	}
	return f
}

// Push prepends a notification, evicting the oldest past the cap, and bumps
// the unread counter.
func (f *Feed) Push(n Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	f.entries = append([]Notification{n}, f.entries...)
	if len(f.entries) > MaxEntries {
		f.entries = f.entries[:MaxEntries]
	}
	f.unread++
	f.persist()
}

// Entries returns the feed most-recent-first.
func (f *Feed) Entries() []Notification { return f.entries }

func (f *Feed) Unread() int { return f.unread }

// MarkAllRead clears the unread counter; opening the bell calls this.
func (f *Feed) MarkAllRead() {
	f.unread = 0
	f.persist()
}

func (f *Feed) persist() {
	if f.cache == nil {
		return
	}
	f.cache.Set(cacheKeyEntries, f.entries)
	f.cache.Set(cacheKeyUnread, f.unread)
}
