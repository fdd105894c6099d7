package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelAraag/pr-manager-cloud/internal/notify"
)

func TestDecode(t *testing.T) {
	raw := []byte(`{"Project":"Alpha","Summary":"fix login","Approved":true,"ApprovedBy":"carol"}`)
	ev, ok := Decode(raw)
	require.True(t, ok)
	assert.Equal(t, "Alpha", ev.Project)
	assert.True(t, ev.Approved)
	assert.Equal(t, "carol", ev.ApprovedBy)
}

func TestDecodeMalformed(t *testing.T) {
	_, ok := Decode([]byte("not json at all"))
	assert.False(t, ok)
}

func TestNotificationSeverity(t *testing.T) {
	cases := []struct {
		name     string
		ev       Event
		message  string
		severity string
	}{
		{
			name:     "archived wins over everything",
			ev:       Event{Status: "Archived", Summary: "old one", Approved: true},
			message:  "PR archived: old one",
			severity: notify.SeverityWarning,
		},
		{
			name:     "approved",
			ev:       Event{Approved: true, ApprovedBy: "carol"},
			message:  "PR approved by carol",
			severity: notify.SeveritySuccess,
		},
		{
			name:     "needs correction",
			ev:       Event{NeedsCorrection: true, CorrectionReason: "broken build"},
			message:  "Correction requested: broken build",
			severity: notify.SeverityError,
		},
		{
			name:     "version request pending",
			ev:       Event{ReqVersion: "pending"},
			message:  "New version request",
			severity: notify.SeverityInfo,
		},
		{
			name:     "deployed to staging",
			ev:       Event{DeployedToStg: true, Version: "26.01.30.428"},
			message:  "Deployed to staging (v26.01.30.428)",
			severity: notify.SeveritySuccess,
		},
		{
			name:     "plain update",
			ev:       Event{Summary: "touched readme"},
			message:  "touched readme",
			severity: notify.SeverityInfo,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			message, severity := tc.ev.Notification()
			assert.Equal(t, tc.message, message)
			assert.Equal(t, tc.severity, severity)
		})
	}
}

func TestHubURL(t *testing.T) {
	assert.Equal(t, "wss://pr.example.com/notificationHub", HubURL("https://pr.example.com/api"))
	assert.Equal(t, "ws://localhost:7268/notificationHub", HubURL("http://localhost:7268/api/"))
	assert.Equal(t, "wss://pr.example.com/notificationHub", HubURL("https://pr.example.com"))
}

func TestListenerStartStopIdempotent(t *testing.T) {
	l := NewListener("ws://127.0.0.1:1/notificationHub", func([]byte) {}, nil)

	l.Start()
	l.Start() // second start is a no-op
	assert.True(t, l.Running())

	l.Stop()
	assert.False(t, l.Running())
	l.Stop() // stopping an idle listener is a no-op
}
