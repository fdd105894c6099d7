package tui

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/SamuelAraag/pr-manager-cloud/internal/api"
	"github.com/SamuelAraag/pr-manager-cloud/internal/auth"
	"github.com/SamuelAraag/pr-manager-cloud/internal/config"
	"github.com/SamuelAraag/pr-manager-cloud/internal/model"
	"github.com/SamuelAraag/pr-manager-cloud/internal/notify"
	"github.com/SamuelAraag/pr-manager-cloud/internal/push"
	"github.com/SamuelAraag/pr-manager-cloud/internal/store"
	appsync "github.com/SamuelAraag/pr-manager-cloud/internal/sync"
	"github.com/SamuelAraag/pr-manager-cloud/internal/ui"
	"github.com/SamuelAraag/pr-manager-cloud/internal/view"
)

// — state ———————————————————————————————————————————————————————————————————

type sessionState int

const (
	stateLoggedOut sessionState = iota
	stateLoading
	stateReady
)

type modalState int

const (
	modalNone modalState = iota
	modalPRForm
	modalVersionForm
	modalConfigForm
	modalSprintForm
	modalConfirm
)

type tab int

const (
	tabOpen tab = iota
	tabApproved
	tabTesting
	tabHistory
	tabBell
)

var tabNames = []string{"Open", "Approved", "Testing (STG)", "History", "Bell"}

const toastVisible = 3 * time.Second

// — spinner —————————————————————————————————————————————————————————————————

var spinnerFrames = []string{"|", "/", "-", "\\"}

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// — messages ————————————————————————————————————————————————————————————————

type dataLoadedMsg struct {
	seq  uint64
	snap *model.Snapshot // nil when any collection was unavailable
}

type usersLoadedMsg struct {
	users []model.User
}

type loginDoneMsg struct {
	result *model.LoginResult
	err    error
}

// prUpdatedMsg carries the updated entity of a successful PR mutation; the
// handler applies it as an optimistic replace-by-id patch.
type prUpdatedMsg struct {
	pr   *model.PullRequest
	note string
	err  error
}

type prArchivedMsg struct {
	prID int
	err  error
}

// mutationDoneMsg is a write whose response carries no patchable entity; on
// success the handler falls back to a full reload.
type mutationDoneMsg struct {
	note string
	err  error
}

type configLoadedMsg struct {
	cfg *model.AutomationConfig
}

type configSavedMsg struct {
	err error
}

type pollTickMsg struct{}

type pushMsg struct {
	raw []byte
}

type settleReloadMsg struct{}

type clearToastMsg struct {
	seq int
}

// — model ———————————————————————————————————————————————————————————————————

type Model struct {
	cfg      config.Config
	log      *zap.Logger
	client   *api.Client
	store    *store.Store
	roles    *auth.Store
	feed     *notify.Feed
	poller   *appsync.Poller
	listener *push.Listener
	events   chan tea.Msg

	// reload generations: polls, refreshes and push reloads race freely, so
	// each carries a sequence number and stale results are discarded.
	loadSeq    *atomic.Uint64
	appliedSeq uint64

	session sessionState
	modal   modalState
	tab     tab

	width, height int
	spinnerFrame  int
	busy          bool

	toast         string
	toastSeverity string
	toastSeq      int

	// snapshot and views derived from it; the snapshot is mutated only here,
	// never by renderers.
	snap     model.Snapshot
	cls      view.Classification
	rendered RenderResult
	bindings []ui.Binding
	cursor   int

	users []model.User

	login   loginForm
	prForm  prForm
	verForm versionForm
	cfgForm configForm
	sprint  textinput.Model
	confirm confirmState
}

type confirmState struct {
	prompt string
	cmd    tea.Cmd
}

func New(cfg config.Config, st *store.Store, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	roles := auth.NewStore(func() string { return st.GetString(store.KeyToken) })
	client := api.NewClient(cfg.BaseURL, func() string { return st.GetString(store.KeyToken) }, log)
	if cfg.IsLocalDev() {
		client.AllowSelfSigned()
	}

	events := make(chan tea.Msg, 32)
	m := Model{
		cfg:     cfg,
		log:     log,
		client:  client,
		store:   st,
		roles:   roles,
		feed:    notify.NewFeed(st),
		events:  events,
		loadSeq: &atomic.Uint64{},
		sprint:  textinput.New(),
	}
	m.poller = appsync.NewPoller(cfg.PollInterval, func() {
		events <- pollTickMsg{}
	})
	m.listener = push.NewListener(push.HubURL(cfg.BaseURL), func(raw []byte) {
		events <- pushMsg{raw: raw}
	}, log)

	m.login = newLoginForm()
	if prev := st.GetString(store.KeyPreviousUser); prev != "" {
		m.login.username.SetValue(prev)
	}
	m.sprint.Placeholder = "e.g. Sprint 28"
	m.sprint.CharLimit = 60

	info := st.UserInfo()
	if info.Name != "" && info.Token != "" {
		m.session = stateLoading
	}
	return m
}

// — commands ————————————————————————————————————————————————————————————————

// waitEvent forwards poller ticks and push messages into the event loop.
func (m Model) waitEvent() tea.Msg {
	return <-m.events
}

// loadDataCmd fetches the three collections concurrently. Any unavailable
// read yields a nil snapshot; callers toast and keep prior state.
func (m Model) loadDataCmd() tea.Cmd {
	client := m.client
	seq := m.loadSeq.Add(1)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var prs []model.PullRequest
		var batches []model.VersionBatch
		var sprints []model.Sprint

		var wg sync.WaitGroup
		wg.Add(3)
		go func() { defer wg.Done(); prs = client.FetchPRs(ctx) }()
		go func() { defer wg.Done(); batches = client.FetchBatches(ctx) }()
		go func() { defer wg.Done(); sprints = client.FetchSprints(ctx) }()
		wg.Wait()

		if prs == nil || sprints == nil {
			return dataLoadedMsg{seq: seq}
		}
		return dataLoadedMsg{seq: seq, snap: &model.Snapshot{
			PullRequests: prs,
			Batches:      batches,
			Sprints:      sprints,
		}}
	}
}

func (m Model) loadUsersCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return usersLoadedMsg{users: client.FetchUsers(ctx)}
	}
}

func settleReloadCmd() tea.Cmd {
	return tea.Tick(push.SettleDelay, func(time.Time) tea.Msg {
		return settleReloadMsg{}
	})
}

func (m *Model) toastCmd(message, severity string) tea.Cmd {
	m.toast = message
	m.toastSeverity = severity
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastVisible, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

// — lifecycle ———————————————————————————————————————————————————————————————

// ensureSingletons starts the poller and push channel; both guard against a
// second start themselves.
func (m *Model) ensureSingletons() {
	m.poller.Start()
	m.listener.Start()
}

// clearSession tears the session down: singletons stopped, stored identity
// removed, snapshot reset.
func (m *Model) clearSession() {
	m.poller.Stop()
	m.listener.Stop()
	if err := m.store.ClearSession(); err != nil {
		m.log.Warn("clear session failed", zap.Error(err))
	}
	m.snap = model.Snapshot{}
	m.cls = view.Classification{}
	m.rendered = RenderResult{}
	m.bindings = nil
	m.cursor = 0
	m.busy = false
	m.session = stateLoggedOut
	m.modal = modalNone
	m.login = newLoginForm()
	if prev := m.store.GetString(store.KeyPreviousUser); prev != "" {
		m.login.username.SetValue(prev)
	}
}

// setSnapshot replaces the owned snapshot and re-derives everything.
func (m *Model) setSnapshot(snap model.Snapshot) {
	m.snap = snap
	m.refresh()
}

// refresh reclassifies and rebuilds the current tab's tree, then runs the
// role visibility pass and recollects the binding table. Runs after every
// state change; nothing from the previous pass is retained.
func (m *Model) refresh() {
	m.cls = view.Classify(m.snap)

	rc := RenderContext{
		CurrentUser: m.store.GetString(store.KeyAppUser),
		Selected:    m.selectedEntity(),
	}
	switch m.tab {
	case tabOpen:
		m.rendered = RenderOpenTab(m.cls, rc)
	case tabApproved:
		m.rendered = RenderApprovedTab(m.cls, rc)
	case tabTesting:
		m.rendered = RenderTestingTab(m.cls, rc)
	case tabHistory:
		m.rendered = RenderHistoryTab(m.cls, rc)
	case tabBell:
		m.rendered = RenderBellTab(m.feed.Entries())
	}

	if m.cursor >= len(m.rendered.Rows) {
		m.cursor = len(m.rendered.Rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	// Selection may have been clamped; rebuild once more so the cursor mark
	// lands on a real row.
	if rc.Selected != m.selectedEntity() {
		m.refresh()
		return
	}

	m.roles.ApplyVisibility(m.rendered.Tree)
	m.bindings = ui.Bindings(m.rendered.Tree)
}

func (m *Model) selectedEntity() string {
	if m.cursor < 0 || m.cursor >= len(m.rendered.Rows) {
		return ""
	}
	return m.rendered.Rows[m.cursor]
}

// — tea.Model ———————————————————————————————————————————————————————————————

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), m.waitEvent, m.loadUsersCmd()}
	if m.session == stateLoading {
		cmds = append(cmds, m.loadDataCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		return m, tickCmd()

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case usersLoadedMsg:
		m.users = msg.users
		m.login.setUsers(msg.users)
		return m, nil

	case dataLoadedMsg:
		if msg.seq < m.appliedSeq {
			// A newer reload already landed; this result lost the race.
			return m, nil
		}
		m.appliedSeq = msg.seq
		if msg.snap == nil {
			// Data unavailable: keep whatever we had, stay interactive.
			m.busy = false
			if m.session == stateLoading {
				m.session = stateReady
			}
			return m, m.toastCmd("failed to load data from the API", notify.SeverityError)
		}
		m.setSnapshot(*msg.snap)
		m.busy = false
		if m.session == stateLoading {
			m.session = stateReady
		}
		if m.session == stateReady && m.store.GetString(store.KeyAppUser) != "" {
			m.ensureSingletons()
		}
		return m, nil

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case prUpdatedMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.toastCmd(msg.err.Error(), notify.SeverityError)
		}
		toast := m.toastCmd(msg.note, notify.SeveritySuccess)
		if msg.pr != nil && view.ReplacePR(&m.snap, *msg.pr) {
			m.refresh()
			return m, toast
		}
		return m, tea.Batch(toast, m.loadDataCmd())

	case prArchivedMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.toastCmd(msg.err.Error(), notify.SeverityError)
		}
		view.RemovePR(&m.snap, msg.prID)
		m.refresh()
		return m, m.toastCmd("PR archived", notify.SeveritySuccess)

	case mutationDoneMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.toastCmd(msg.err.Error(), notify.SeverityError)
		}
		return m, tea.Batch(m.toastCmd(msg.note, notify.SeveritySuccess), m.loadDataCmd())

	case configLoadedMsg:
		m.cfgForm.load(msg.cfg, m.store)
		m.modal = modalConfigForm
		m.busy = false
		return m, nil

	case configSavedMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.toastCmd(msg.err.Error(), notify.SeverityError)
		}
		m.modal = modalNone
		return m, tea.Batch(m.toastCmd("configuration saved", notify.SeveritySuccess), m.loadDataCmd())

	case pollTickMsg:
		// Poll only while a session is held; otherwise the timer should be
		// gone already.
		if m.store.GetString(store.KeyAppUser) == "" {
			m.poller.Stop()
			return m, m.waitEvent
		}
		return m, tea.Batch(m.waitEvent, m.loadDataCmd())

	case pushMsg:
		return m.handlePush(msg)

	case settleReloadMsg:
		return m, m.loadDataCmd()

	case prCreatedMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.toastCmd(msg.err.Error(), notify.SeverityError)
		}
		toast := m.toastCmd("PR created", notify.SeveritySuccess)
		if msg.pr != nil {
			view.AppendPR(&m.snap, *msg.pr)
			m.refresh()
			return m, toast
		}
		return m, tea.Batch(toast, m.loadDataCmd())

	case logoutMsg:
		m.clearSession()
		return m, m.toastCmd("logged out", notify.SeverityInfo)
	}

	return m.updateByState(msg)
}

// handlePush turns a push payload into a notification and schedules the
// settle-delayed reload. Malformed payloads still notify and reload, just
// without the delay.
func (m Model) handlePush(msg pushMsg) (tea.Model, tea.Cmd) {
	ev, ok := push.Decode(msg.raw)
	if !ok {
		m.log.Warn("push payload did not parse")
		m.feed.Push(notify.Notification{
			Message:  "Update received",
			Severity: notify.SeverityInfo,
		})
		toast := m.toastCmd("Update received", notify.SeverityInfo)
		m.refresh()
		return m, tea.Batch(m.waitEvent, toast, m.loadDataCmd())
	}

	message, severity := ev.Notification()
	m.feed.Push(notify.Notification{
		Message:  message,
		Severity: severity,
		Project:  ev.Project,
		JiraID:   notify.ExtractJiraID(ev.TaskLink),
		Summary:  ev.Summary,
		Link:     ev.PRLink,
	})
	toast := m.toastCmd(message, severity)
	m.refresh()
	return m, tea.Batch(m.waitEvent, toast, settleReloadCmd())
}

func (m Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.login.errText = msg.err.Error()
		return m, nil
	}
	result := msg.result
	if err := m.store.SaveSession(result.User.Name, result.User.ID, result.Token); err != nil {
		m.login.errText = err.Error()
		return m, nil
	}
	m.session = stateLoading
	m.modal = modalNone
	m.ensureSingletons()
	return m, tea.Batch(m.toastCmd("logged in as "+result.User.Name, notify.SeveritySuccess), m.loadDataCmd())
}
