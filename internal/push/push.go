// Package push listens on the backend's notification channel: a persistent
// socket delivering one message type, a JSON payload describing a PR's new
// state. The listener reconnects on a fixed backoff schedule and is a
// guarded process-wide singleton torn down on logout.
package push

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/SamuelAraag/pr-manager-cloud/internal/notify"
)

// SettleDelay is how long a push-triggered reload waits for the origin to
// settle before re-fetching.
const SettleDelay = 500 * time.Millisecond

// Backoff is the reconnect schedule; the last step repeats.
var Backoff = []time.Duration{0, 2 * time.Second, 10 * time.Second, 30 * time.Second}

// Event is the payload of one push message.
type Event struct {
	Project          string `json:"Project"`
	Summary          string `json:"Summary"`
	Status           string `json:"Status"`
	Approved         bool   `json:"Approved"`
	ApprovedBy       string `json:"ApprovedBy"`
	NeedsCorrection  bool   `json:"NeedsCorrection"`
	CorrectionReason string `json:"CorrectionReason"`
	ReqVersion       string `json:"ReqVersion"`
	DeployedToStg    bool   `json:"DeployedToStg"`
	Version          string `json:"Version"`
	TaskLink         string `json:"TaskLink"`
	PRLink           string `json:"PrLink"`
}

// Decode parses a raw message. ok is false on malformed payloads; the caller
// still raises a generic notification and reloads.
func Decode(raw []byte) (Event, bool) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, false
	}
	return ev, true
}

// Notification derives the user-facing notice from the event fields alone,
// without re-fetching.
func (e Event) Notification() (message, severity string) {
	switch {
	case e.Status == "Archived":
		return "PR archived: " + e.Summary, notify.SeverityWarning
	case e.Approved:
		return "PR approved by " + e.ApprovedBy, notify.SeveritySuccess
	case e.NeedsCorrection:
		return "Correction requested: " + e.CorrectionReason, notify.SeverityError
	case e.ReqVersion == "pending":
		return "New version request", notify.SeverityInfo
	case e.DeployedToStg:
		return "Deployed to staging (v" + e.Version + ")", notify.SeveritySuccess
	default:
		return e.Summary, notify.SeverityInfo
	}
}

// HubURL derives the notification endpoint from the API base URL.
func HubURL(baseURL string) string {
	hub := strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api") + "/notificationHub"
	switch {
	case strings.HasPrefix(hub, "https://"):
		return "wss://" + strings.TrimPrefix(hub, "https://")
	case strings.HasPrefix(hub, "http://"):
		return "ws://" + strings.TrimPrefix(hub, "http://")
	}
	return hub
}

// Listener owns the socket lifecycle. Start and Stop are idempotent.
type Listener struct {
	url       string
	onMessage func(raw []byte)
	log       *zap.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
}

func NewListener(url string, onMessage func(raw []byte), log *zap.Logger) *Listener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Listener{url: url, onMessage: onMessage, log: log}
}

func (l *Listener) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.started = true
	go l.run(ctx)
}

func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.started {
		return
	}
	l.cancel()
	l.started = false
}

func (l *Listener) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started
}

func (l *Listener) run(ctx context.Context) {
	attempt := 0
	for {
		wait := Backoff[min(attempt, len(Backoff)-1)]
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, nil)
		if err != nil {
			l.log.Warn("push connect failed", zap.String("url", l.url), zap.Error(err))
			attempt++
			continue
		}
		l.log.Info("push connected", zap.String("url", l.url))
		attempt = 0

		closed := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-closed:
			}
		}()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			l.onMessage(raw)
		}
		close(closed)
		conn.Close()

		if ctx.Err() != nil {
			return
		}
		attempt = 1
	}
}
