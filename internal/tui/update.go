package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/SamuelAraag/pr-manager-cloud/internal/api"
	"github.com/SamuelAraag/pr-manager-cloud/internal/auth"
	"github.com/SamuelAraag/pr-manager-cloud/internal/model"
	"github.com/SamuelAraag/pr-manager-cloud/internal/notify"
	"github.com/SamuelAraag/pr-manager-cloud/internal/view"
)

// defaultCorrectionReason goes out when the reviewer does not type one.
const defaultCorrectionReason = "Correction requested"

func (m Model) updateByState(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return m, nil
	}

	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.session == stateLoggedOut:
		return m.updateLogin(key)
	case m.session == stateLoading:
		return m, nil
	case m.modal == modalPRForm:
		return m.updatePRForm(key)
	case m.modal == modalVersionForm:
		return m.updateVersionForm(key)
	case m.modal == modalConfigForm:
		return m.updateConfigForm(key)
	case m.modal == modalSprintForm:
		return m.updateSprintForm(key)
	case m.modal == modalConfirm:
		return m.updateConfirm(key)
	default:
		return m.updateReady(key)
	}
}

func (m Model) updateConfirm(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "y", "enter":
		cmd := m.confirm.cmd
		m.confirm = confirmState{}
		m.modal = modalNone
		m.busy = true
		return m, cmd
	case "n", "esc":
		m.confirm = confirmState{}
		m.modal = modalNone
		return m, nil
	}
	return m, nil
}

// confirmThen arms the confirm modal; the command runs only on "y".
func (m *Model) confirmThen(prompt string, cmd tea.Cmd) {
	m.confirm = confirmState{prompt: prompt, cmd: cmd}
	m.modal = modalConfirm
}

func (m Model) updateReady(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.refresh()
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.rendered.Rows)-1 {
			m.cursor++
			m.refresh()
		}
		return m, nil

	case "1", "2", "3", "4", "5":
		n, _ := strconv.Atoi(key.String())
		return m.switchTab(tab(n - 1))
	case "b":
		return m.switchTab(tabBell)

	case "r":
		m.session = stateLoading
		return m, m.loadDataCmd()

	case "n":
		m.prForm = newPRForm(m.users, nil)
		m.modal = modalPRForm
		return m, nil

	case "S":
		if !m.roles.Can(auth.PermManageSprints) {
			return m, m.toastCmd("no permission to manage sprints", notify.SeverityWarning)
		}
		m.sprint.SetValue("")
		m.sprint.Focus()
		m.modal = modalSprintForm
		return m, nil

	case "t":
		if !m.roles.Can(auth.PermConfigureTokens) {
			return m, m.toastCmd("no permission to configure automation", notify.SeverityWarning)
		}
		m.busy = true
		return m, m.loadConfigCmd()

	case "ctrl+l":
		m.confirmThen("Log out?", func() tea.Msg {
			return logoutMsg{}
		})
		return m, nil
	}

	if cmd, handled := m.dispatch(key.String()); handled {
		return m, cmd
	}
	return m, nil
}

type logoutMsg struct{}

func (m Model) switchTab(t tab) (tea.Model, tea.Cmd) {
	if t < tabOpen || t > tabBell {
		return m, nil
	}
	m.tab = t
	m.cursor = 0
	if t == tabBell {
		m.feed.MarkAllRead()
	}
	m.refresh()
	return m, nil
}

// dispatch matches a key against the binding table of the selected row and
// runs the bound action. Bindings were already role-filtered by the
// visibility pass.
func (m *Model) dispatch(key string) (tea.Cmd, bool) {
	entity := m.selectedEntity()
	if entity == "" {
		return nil, false
	}
	for _, b := range m.bindings {
		if b.EntityID != entity || b.Key != key {
			continue
		}
		return m.runAction(b.EntityID, b.Action), true
	}
	return nil, false
}

func (m *Model) runAction(entityID, action string) tea.Cmd {
	switch action {
	case actEdit:
		pr := m.findPR(prNumFromEntity(entityID))
		if pr == nil {
			return nil
		}
		m.prForm = newPRForm(m.users, pr)
		m.modal = modalPRForm
		return nil

	case actApprove:
		id := prNumFromEntity(entityID)
		m.confirmThen("Approve this PR?", m.approveCmd(id))
		return nil

	case actRequestCorrection:
		id := prNumFromEntity(entityID)
		m.confirmThen("Request a correction on this PR?", m.requestCorrectionCmd(id))
		return nil

	case actMarkFixed:
		id := prNumFromEntity(entityID)
		m.confirmThen("Mark this PR as fixed?", m.markFixedCmd(id))
		return nil

	case actArchive:
		id := prNumFromEntity(entityID)
		m.confirmThen("Archive this PR?", m.archiveCmd(id))
		return nil

	case actRequestVersion:
		card := m.findCard(entityID)
		if card == nil {
			return nil
		}
		ids := prIDs(card.PRs)
		m.confirmThen(fmt.Sprintf("Request a version for %s (%d PRs)?", card.Project, len(ids)),
			m.requestVersionCmd(ids))
		return nil

	case actSaveVersion:
		card := m.findCard(entityID)
		if card == nil || card.BatchID == "" {
			return nil
		}
		m.verForm = newVersionForm(card.BatchID, card.Version)
		m.modal = modalVersionForm
		return nil

	case actCancelRequest:
		if batchID := batchIDFromEntity(entityID); batchID != "" {
			m.confirmThen("Cancel the version request?", m.cancelRequestCmd(batchID))
			return nil
		}
		// Backlog requests have no batch yet; cancel by the PR ids instead.
		if card := m.findCard(entityID); card != nil {
			m.confirmThen("Cancel the version request?", m.cancelRequestByPRsCmd(prIDs(card.PRs)))
		}
		return nil

	case actCreateIssue:
		batchID := batchIDFromEntity(entityID)
		m.confirmThen("Create the GitLab issue for this batch?", m.createIssueCmd(batchID))
		return nil

	case actDeploy:
		if !view.HasActiveSprint(m.snap) {
			return m.toastCmd("no active sprint; create one before releasing", notify.SeverityWarning)
		}
		batchID := batchIDFromEntity(entityID)
		m.confirmThen("Release this batch to staging?", m.releaseCmd(batchID))
		return nil

	case actDeleteBatch:
		batchID := batchIDFromEntity(entityID)
		m.confirmThen("Delete this batch? PRs return to the backlog.", m.deleteBatchCmd(batchID))
		return nil

	case actRemoveVersion:
		batchID := batchIDFromEntity(entityID)
		m.confirmThen("Remove the version from this batch?", m.removeVersionCmd(batchID))
		return nil

	case actRemovePR:
		batchID := batchIDFromEntity(entityID)
		prID := prNumFromEntity(entityID)
		m.confirmThen("Remove this PR from the batch?", m.removePRCmd(batchID, prID))
		return nil

	case actCompleteSprint:
		id := sprintIDFromEntity(entityID)
		m.confirmThen("Complete this sprint? Its batches move to history.", m.completeSprintCmd(id))
		return nil
	}
	return nil
}

// — entity id parsing ———————————————————————————————————————————————————————

func prNumFromEntity(id string) int {
	idx := strings.LastIndex(id, "pr:")
	if idx < 0 {
		return 0
	}
	n, _ := strconv.Atoi(id[idx+len("pr:"):])
	return n
}

func batchIDFromEntity(id string) string {
	if !strings.HasPrefix(id, "batch:") {
		return ""
	}
	rest := strings.TrimPrefix(id, "batch:")
	if slash := strings.Index(rest, "/pr:"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func sprintIDFromEntity(id string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(id, "sprint:"))
	return n
}

func prIDs(prs []model.PullRequest) []int {
	ids := make([]int, 0, len(prs))
	for _, pr := range prs {
		ids = append(ids, pr.ID)
	}
	return ids
}

func (m *Model) findPR(id int) *model.PullRequest {
	for i := range m.snap.PullRequests {
		if m.snap.PullRequests[i].ID == id {
			return &m.snap.PullRequests[i]
		}
	}
	return nil
}

func (m *Model) findCard(entityID string) *view.ApprovedCard {
	for i := range m.cls.Approved {
		card := &m.cls.Approved[i]
		want := backlogEntity(card.Project)
		if card.BatchID != "" {
			want = batchEntity(card.BatchID)
		}
		if want == entityID {
			return card
		}
	}
	return nil
}

// — mutation commands ———————————————————————————————————————————————————————

func mutationCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func (m Model) approveCmd(prID int) tea.Cmd {
	client := m.client
	approverID := m.store.UserInfo().ID
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		pr, err := client.ApprovePR(ctx, prID, approverID)
		return prUpdatedMsg{pr: pr, note: "PR approved", err: err}
	}
}

func (m Model) requestCorrectionCmd(prID int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		pr, err := client.RequestCorrection(ctx, prID, defaultCorrectionReason)
		return prUpdatedMsg{pr: pr, note: "correction requested", err: err}
	}
}

func (m Model) markFixedCmd(prID int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		pr, err := client.MarkPRFixed(ctx, prID)
		return prUpdatedMsg{pr: pr, note: "PR marked as fixed", err: err}
	}
}

func (m Model) archiveCmd(prID int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		err := client.ArchivePR(ctx, prID)
		return prArchivedMsg{prID: prID, err: err}
	}
}

func (m Model) requestVersionCmd(ids []int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		_, err := client.RequestVersionBatch(ctx, ids)
		return mutationDoneMsg{note: "version requested", err: err}
	}
}

func (m Model) saveVersionCmd(req api.SaveBatchRequest) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		_, err := client.SaveVersionBatch(ctx, req)
		return mutationDoneMsg{note: "version " + req.Version + " saved", err: err}
	}
}

func (m Model) cancelRequestCmd(batchID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		err := client.CancelVersionRequest(ctx, batchID)
		return mutationDoneMsg{note: "version request cancelled", err: err}
	}
}

func (m Model) cancelRequestByPRsCmd(ids []int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		err := client.CancelVersionRequestByPRIDs(ctx, ids)
		return mutationDoneMsg{note: "version request cancelled", err: err}
	}
}

func (m Model) createIssueCmd(batchID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		res, err := client.CreateGitLabIssue(ctx, batchID)
		note := "issue created"
		if err == nil && res != nil && res.WebURL != "" {
			note = "issue created: " + res.WebURL
		}
		return mutationDoneMsg{note: note, err: err}
	}
}

func (m Model) releaseCmd(batchID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		_, err := client.ReleaseBatchToStaging(ctx, batchID)
		return mutationDoneMsg{note: "batch released to staging", err: err}
	}
}

func (m Model) deleteBatchCmd(batchID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		err := client.DeleteBatch(ctx, batchID)
		return mutationDoneMsg{note: "batch deleted", err: err}
	}
}

func (m Model) removeVersionCmd(batchID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		_, err := client.RemoveVersionFromBatch(ctx, batchID)
		return mutationDoneMsg{note: "version removed", err: err}
	}
}

func (m Model) removePRCmd(batchID string, prID int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		_, err := client.RemovePRFromBatch(ctx, batchID, prID)
		return mutationDoneMsg{note: "PR removed from batch", err: err}
	}
}

func (m Model) completeSprintCmd(sprintID int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		_, err := client.CompleteSprint(ctx, sprintID)
		return mutationDoneMsg{note: "sprint completed", err: err}
	}
}

func (m Model) createSprintCmd(name string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		_, err := client.CreateSprint(ctx, name)
		return mutationDoneMsg{note: "sprint " + name + " created", err: err}
	}
}

func (m Model) savePRCmd(prID int, sub api.PRSubmission) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		if prID == 0 {
			pr, err := client.CreatePR(ctx, sub)
			return prCreatedMsg{pr: pr, err: err}
		}
		pr, err := client.UpdatePR(ctx, prID, sub)
		return prUpdatedMsg{pr: pr, note: "PR updated", err: err}
	}
}

type prCreatedMsg struct {
	pr  *model.PullRequest
	err error
}

func (m Model) saveConfigCmd(cfg model.AutomationConfig) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		return configSavedMsg{err: client.SaveAutomationConfig(ctx, cfg)}
	}
}

func (m Model) loadConfigCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		return configLoadedMsg{cfg: client.GetAutomationConfig(ctx)}
	}
}

func (m Model) loginCmd(username, password string, admin bool) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := mutationCtx()
		defer cancel()
		var result *model.LoginResult
		var err error
		if admin {
			result, err = client.AdminLogin(ctx, password)
		} else {
			result, err = client.Login(ctx, username, password)
		}
		return loginDoneMsg{result: result, err: err}
	}
}
