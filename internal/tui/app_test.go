package tui

import (
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelAraag/pr-manager-cloud/internal/config"
	"github.com/SamuelAraag/pr-manager-cloud/internal/model"
	"github.com/SamuelAraag/pr-manager-cloud/internal/notify"
	"github.com/SamuelAraag/pr-manager-cloud/internal/store"
)

func adminToken() string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"role":"Admin"}`))
	return "h." + payload + ".s"
}

func testModel(t *testing.T, loggedIn bool) Model {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	if loggedIn {
		require.NoError(t, st.SaveSession("alice", 1, adminToken()))
	}
	cfg := config.Config{
		BaseURL:      "http://pr-manager.test/api",
		PollInterval: time.Minute,
	}
	return New(cfg, st, nil)
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func snapshotWith(prs ...model.PullRequest) *model.Snapshot {
	return &model.Snapshot{
		PullRequests: prs,
		Batches:      []model.VersionBatch{},
		Sprints:      []model.Sprint{},
	}
}

func TestStoredSessionResumesIntoLoading(t *testing.T) {
	m := testModel(t, true)
	assert.Equal(t, stateLoading, m.session)

	m = testModel(t, false)
	assert.Equal(t, stateLoggedOut, m.session)
}

func TestDataLoadedEntersReadyAndStartsSingletons(t *testing.T) {
	m := testModel(t, true)
	defer m.clearSession()

	m = step(t, m, dataLoadedMsg{snap: snapshotWith(
		model.PullRequest{ID: 1, Project: "Alpha", Summary: "fix", Dev: "alice"},
	)})

	assert.Equal(t, stateReady, m.session)
	assert.Equal(t, 1, m.cls.OpenCount)
	assert.True(t, m.poller.Running())
	assert.Equal(t, []string{"pr:1"}, m.rendered.Rows)
}

func TestDataUnavailableKeepsPriorSnapshot(t *testing.T) {
	m := testModel(t, true)
	defer m.clearSession()

	m = step(t, m, dataLoadedMsg{snap: snapshotWith(
		model.PullRequest{ID: 1, Project: "Alpha", Summary: "fix", Dev: "alice"},
	)})
	m = step(t, m, dataLoadedMsg{}) // nil snapshot: fetch failed

	assert.Equal(t, stateReady, m.session)
	assert.Equal(t, 1, m.cls.OpenCount) // prior data untouched
	assert.NotEmpty(t, m.toast)
}

func TestStaleReloadDiscarded(t *testing.T) {
	m := testModel(t, true)
	defer m.clearSession()

	m = step(t, m, dataLoadedMsg{seq: 2, snap: snapshotWith(
		model.PullRequest{ID: 1, Project: "Alpha", Summary: "newer", Dev: "alice"},
	)})
	// A reload issued earlier resolves late; its result must not win.
	m = step(t, m, dataLoadedMsg{seq: 1, snap: snapshotWith()})

	assert.Equal(t, 1, m.cls.OpenCount)
	assert.Equal(t, "newer", m.snap.PullRequests[0].Summary)
}

func TestOptimisticPatchKnownID(t *testing.T) {
	m := testModel(t, true)
	defer m.clearSession()

	m = step(t, m, dataLoadedMsg{snap: snapshotWith(
		model.PullRequest{ID: 1, Project: "Alpha", Summary: "fix", Dev: "alice"},
	)})
	m = step(t, m, prUpdatedMsg{
		pr:   &model.PullRequest{ID: 1, Project: "Alpha", Summary: "fix", Dev: "alice", Approved: true},
		note: "PR approved",
	})

	// The approved PR left the open bucket without a round trip.
	assert.Equal(t, 0, m.cls.OpenCount)
	assert.Equal(t, 1, m.cls.ApprovedCount)
	assert.False(t, m.busy)
}

func TestArchiveRemovesFromSnapshot(t *testing.T) {
	m := testModel(t, true)
	defer m.clearSession()

	m = step(t, m, dataLoadedMsg{snap: snapshotWith(
		model.PullRequest{ID: 1, Project: "Alpha", Summary: "fix", Dev: "alice"},
		model.PullRequest{ID: 2, Project: "Alpha", Summary: "more", Dev: "alice"},
	)})
	m = step(t, m, prArchivedMsg{prID: 1})

	assert.Equal(t, 1, m.cls.OpenCount)
	assert.Equal(t, []string{"pr:2"}, m.rendered.Rows)
}

func TestMutationErrorToastsAndKeepsState(t *testing.T) {
	m := testModel(t, true)
	defer m.clearSession()

	m = step(t, m, dataLoadedMsg{snap: snapshotWith(
		model.PullRequest{ID: 1, Project: "Alpha", Summary: "fix", Dev: "alice"},
	)})
	m = step(t, m, prUpdatedMsg{err: assert.AnError})

	assert.Equal(t, 1, m.cls.OpenCount)
	assert.Equal(t, assert.AnError.Error(), m.toast)
}

func TestTabSwitchClampsCursor(t *testing.T) {
	m := testModel(t, true)
	defer m.clearSession()

	m = step(t, m, dataLoadedMsg{snap: snapshotWith(
		model.PullRequest{ID: 1, Project: "Alpha", Summary: "fix", Dev: "alice"},
		model.PullRequest{ID: 2, Project: "Alpha", Summary: "more", Dev: "alice"},
	)})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, m.cursor)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	assert.Equal(t, tabApproved, m.tab)
	assert.Equal(t, 0, m.cursor)
}

func TestBellTabMarksRead(t *testing.T) {
	m := testModel(t, true)
	defer m.clearSession()

	m.feed.Push(notify.Notification{Message: "something happened"})
	require.Equal(t, 1, m.feed.Unread())

	m = step(t, m, dataLoadedMsg{snap: snapshotWith()})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}})

	assert.Equal(t, tabBell, m.tab)
	assert.Equal(t, 0, m.feed.Unread())
}

func TestLogoutTearsDownSession(t *testing.T) {
	m := testModel(t, true)

	m = step(t, m, dataLoadedMsg{snap: snapshotWith(
		model.PullRequest{ID: 1, Project: "Alpha", Summary: "fix", Dev: "alice"},
	)})
	require.True(t, m.poller.Running())

	m = step(t, m, logoutMsg{})

	assert.Equal(t, stateLoggedOut, m.session)
	assert.False(t, m.poller.Running())
	assert.False(t, m.listener.Running())
	assert.Empty(t, m.snap.PullRequests)
	assert.Empty(t, m.store.GetString(store.KeyToken))
	// previousUser survives for the next login form.
	assert.Equal(t, "alice", m.store.GetString(store.KeyPreviousUser))
}

func TestPushSchedulesSettleReload(t *testing.T) {
	m := testModel(t, true)
	defer m.clearSession()

	m = step(t, m, dataLoadedMsg{snap: snapshotWith()})

	raw := []byte(`{"Project":"Alpha","Approved":true,"ApprovedBy":"carol"}`)
	next, cmd := m.Update(pushMsg{raw: raw})
	m = next.(Model)

	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.feed.Unread())
	assert.Equal(t, "PR approved by carol", m.toast)
}

func TestConfirmGuardsDestructiveActions(t *testing.T) {
	m := testModel(t, true)
	defer m.clearSession()

	m = step(t, m, dataLoadedMsg{snap: snapshotWith(
		model.PullRequest{ID: 1, Project: "Alpha", Summary: "fix", Dev: "alice"},
	)})

	// "x" on the selected PR arms the confirm modal instead of firing.
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Equal(t, modalConfirm, m.modal)
	assert.NotEmpty(t, m.confirm.prompt)

	// "n" backs out without touching anything.
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.Equal(t, modalNone, m.modal)
	assert.Equal(t, 1, m.cls.OpenCount)
	assert.False(t, m.busy)
}
