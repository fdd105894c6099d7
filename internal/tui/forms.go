package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/SamuelAraag/pr-manager-cloud/internal/api"
	"github.com/SamuelAraag/pr-manager-cloud/internal/model"
	"github.com/SamuelAraag/pr-manager-cloud/internal/store"
)

// — login ———————————————————————————————————————————————————————————————————

type loginForm struct {
	username textinput.Model
	password textinput.Model
	focus    int
	admin    bool
	errText  string
	users    []model.User
}

func newLoginForm() loginForm {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 60
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 120

	return loginForm{username: username, password: password}
}

func (f *loginForm) setUsers(users []model.User) { f.users = users }

func (f *loginForm) cycle(delta int) {
	if f.admin {
		f.password.Focus()
		return
	}
	f.focus = (f.focus + delta + 2) % 2
	f.username.Blur()
	f.password.Blur()
	if f.focus == 0 {
		f.username.Focus()
	} else {
		f.password.Focus()
	}
}

func (m Model) updateLogin(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "tab", "shift+tab", "up", "down":
		delta := 1
		if key.String() == "shift+tab" || key.String() == "up" {
			delta = -1
		}
		m.login.cycle(delta)
		return m, nil

	case "ctrl+a":
		m.login.admin = !m.login.admin
		m.login.errText = ""
		if m.login.admin {
			m.login.username.Blur()
			m.login.password.Focus()
			m.login.focus = 1
		}
		return m, nil

	case "enter":
		username := strings.TrimSpace(m.login.username.Value())
		password := m.login.password.Value()
		if !m.login.admin && username == "" {
			m.login.errText = "username is required"
			return m, nil
		}
		if password == "" {
			m.login.errText = "password is required"
			return m, nil
		}
		m.login.errText = ""
		m.busy = true
		return m, m.loginCmd(username, password, m.login.admin)
	}

	var cmd tea.Cmd
	if m.login.focus == 0 && !m.login.admin {
		m.login.username, cmd = m.login.username.Update(key)
	} else {
		m.login.password, cmd = m.login.password.Update(key)
	}
	return m, cmd
}

// — PR form —————————————————————————————————————————————————————————————————

const (
	prFieldProject = iota
	prFieldDev
	prFieldSummary
	prFieldPRLink
	prFieldTaskLink
	prFieldTeamsLink
	prFieldRelated
	prFieldNoTesting // checkbox, not a textinput
	prFieldCount
)

var prFieldLabels = []string{
	"Project", "Developer", "Summary", "PR link", "Task link", "Teams link",
	"Related tasks (summary|url; ...)", "No testing required",
}

type prForm struct {
	inputs    []textinput.Model
	focus     int
	noTesting bool
	locked    bool
	prID      int
	errText   string
}

func newPRForm(users []model.User, pr *model.PullRequest) prForm {
	f := prForm{inputs: make([]textinput.Model, prFieldNoTesting)}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = prFieldLabels[i]
		in.CharLimit = 300
		f.inputs[i] = in
	}
	if pr != nil {
		f.prID = pr.ID
		f.locked = pr.Approved
		f.inputs[prFieldProject].SetValue(pr.Project)
		f.inputs[prFieldDev].SetValue(pr.Dev)
		f.inputs[prFieldSummary].SetValue(pr.Summary)
		f.inputs[prFieldPRLink].SetValue(pr.PRLink)
		f.inputs[prFieldTaskLink].SetValue(pr.TaskLink)
		f.inputs[prFieldTeamsLink].SetValue(pr.TeamsLink)
		f.inputs[prFieldRelated].SetValue(pr.LinksRelatedTask)
		f.noTesting = pr.NoTestingRequired
	}
	f.inputs[prFieldProject].Focus()
	return f
}

func (f *prForm) cycle(delta int) {
	f.focus = (f.focus + delta + prFieldCount) % prFieldCount
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	if f.focus < prFieldNoTesting {
		f.inputs[f.focus].Focus()
	}
}

func userIDByName(users []model.User, name string) int {
	for _, u := range users {
		if u.Name == name {
			return u.ID
		}
	}
	return 0
}

func (m Model) updatePRForm(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prForm.locked {
		if key.String() == "esc" {
			m.modal = modalNone
		}
		return m, nil
	}

	switch key.String() {
	case "esc":
		m.modal = modalNone
		return m, nil

	case "tab", "down":
		m.prForm.cycle(1)
		return m, nil
	case "shift+tab", "up":
		m.prForm.cycle(-1)
		return m, nil

	case " ":
		if m.prForm.focus == prFieldNoTesting {
			m.prForm.noTesting = !m.prForm.noTesting
			return m, nil
		}

	case "enter", "ctrl+s":
		if key.String() == "enter" && m.prForm.focus < prFieldNoTesting-1 {
			m.prForm.cycle(1)
			return m, nil
		}
		f := &m.prForm
		if strings.TrimSpace(f.inputs[prFieldProject].Value()) == "" ||
			strings.TrimSpace(f.inputs[prFieldSummary].Value()) == "" {
			f.errText = "project and summary are required"
			return m, nil
		}
		// The developer field holds a user name; unknown or blank falls back
		// to the current user.
		devID := m.store.UserInfo().ID
		if name := strings.TrimSpace(f.inputs[prFieldDev].Value()); name != "" {
			if id := userIDByName(m.users, name); id != 0 {
				devID = id
			}
		}
		sub := api.PRSubmission{
			Project:           strings.TrimSpace(f.inputs[prFieldProject].Value()),
			DevID:             devID,
			Summary:           strings.TrimSpace(f.inputs[prFieldSummary].Value()),
			PRLink:            strings.TrimSpace(f.inputs[prFieldPRLink].Value()),
			TaskLink:          strings.TrimSpace(f.inputs[prFieldTaskLink].Value()),
			TeamsLink:         strings.TrimSpace(f.inputs[prFieldTeamsLink].Value()),
			LinksRelatedTask:  strings.TrimSpace(f.inputs[prFieldRelated].Value()),
			NoTestingRequired: f.noTesting,
		}
		m.modal = modalNone
		m.busy = true
		return m, m.savePRCmd(f.prID, sub)
	}

	if m.prForm.focus < prFieldNoTesting {
		var cmd tea.Cmd
		m.prForm.inputs[m.prForm.focus], cmd = m.prForm.inputs[m.prForm.focus].Update(key)
		return m, cmd
	}
	return m, nil
}

// — version form ————————————————————————————————————————————————————————————

const (
	verFieldVersion = iota
	verFieldPipeline
	verFieldRollback
	verFieldCount
)

var verFieldLabels = []string{"Version", "Pipeline link", "Rollback version"}

type versionForm struct {
	batchID string
	inputs  []textinput.Model
	focus   int
	errText string
}

func newVersionForm(batchID, current string) versionForm {
	f := versionForm{batchID: batchID, inputs: make([]textinput.Model, verFieldCount)}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = verFieldLabels[i]
		in.CharLimit = 200
		f.inputs[i] = in
	}
	f.inputs[verFieldVersion].Placeholder = "e.g. 26.01.30.428"
	f.inputs[verFieldRollback].Placeholder = "e.g. 26.01.29.427"
	f.inputs[verFieldVersion].SetValue(current)
	f.inputs[verFieldVersion].Focus()
	return f
}

func (f *versionForm) cycle(delta int) {
	f.focus = (f.focus + delta + verFieldCount) % verFieldCount
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	f.inputs[f.focus].Focus()
}

func (m Model) updateVersionForm(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "tab", "down":
		m.verForm.cycle(1)
		return m, nil
	case "shift+tab", "up":
		m.verForm.cycle(-1)
		return m, nil
	case "enter", "ctrl+s":
		if key.String() == "enter" && m.verForm.focus < verFieldCount-1 {
			m.verForm.cycle(1)
			return m, nil
		}
		f := &m.verForm
		version := strings.TrimSpace(f.inputs[verFieldVersion].Value())
		rollback := strings.TrimSpace(f.inputs[verFieldRollback].Value())
		if !api.ValidVersion(version) {
			f.errText = "version must match NN.NN.NN.NNN (two digits minimum per segment)"
			return m, nil
		}
		if !api.ValidVersion(rollback) {
			f.errText = "rollback must match NN.NN.NN.NNN"
			return m, nil
		}
		m.modal = modalNone
		m.busy = true
		return m, m.saveVersionCmd(api.SaveBatchRequest{
			BatchID:      f.batchID,
			Version:      version,
			PipelineLink: strings.TrimSpace(f.inputs[verFieldPipeline].Value()),
			Rollback:     rollback,
		})
	}

	var cmd tea.Cmd
	m.verForm.inputs[m.verForm.focus], cmd = m.verForm.inputs[m.verForm.focus].Update(key)
	return m, cmd
}

// — automation config form ——————————————————————————————————————————————————

const (
	cfgFieldGithub = iota
	cfgFieldGitlab
	cfgFieldJiraEmail
	cfgFieldJiraToken
	cfgFieldCount
)

var cfgFieldLabels = []string{"GitHub token", "GitLab token", "Jira e-mail", "Jira token"}

type configForm struct {
	inputs []textinput.Model
	focus  int
}

// load seeds the form from the server config when available, falling back to
// locally stored tokens.
func (f *configForm) load(cfg *model.AutomationConfig, st *store.Store) {
	f.inputs = make([]textinput.Model, cfgFieldCount)
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = cfgFieldLabels[i]
		in.CharLimit = 200
		if i == cfgFieldGithub || i == cfgFieldGitlab || i == cfgFieldJiraToken {
			in.EchoMode = textinput.EchoPassword
		}
		f.inputs[i] = in
	}
	if cfg != nil {
		f.inputs[cfgFieldGithub].SetValue(cfg.GithubToken)
		f.inputs[cfgFieldGitlab].SetValue(cfg.GitlabToken)
		f.inputs[cfgFieldJiraEmail].SetValue(cfg.JiraUserEmail)
		f.inputs[cfgFieldJiraToken].SetValue(cfg.JiraToken)
	} else if st != nil {
		f.inputs[cfgFieldGithub].SetValue(st.GetString(store.KeyGithubToken))
		f.inputs[cfgFieldGitlab].SetValue(st.GetString(store.KeyGitlabToken))
	}
	f.focus = 0
	f.inputs[0].Focus()
}

func (f *configForm) cycle(delta int) {
	f.focus = (f.focus + delta + cfgFieldCount) % cfgFieldCount
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	f.inputs[f.focus].Focus()
}

func (m Model) updateConfigForm(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "tab", "down":
		m.cfgForm.cycle(1)
		return m, nil
	case "shift+tab", "up":
		m.cfgForm.cycle(-1)
		return m, nil
	case "enter", "ctrl+s":
		if key.String() == "enter" && m.cfgForm.focus < cfgFieldCount-1 {
			m.cfgForm.cycle(1)
			return m, nil
		}
		f := &m.cfgForm
		cfg := model.AutomationConfig{
			GithubToken:   strings.TrimSpace(f.inputs[cfgFieldGithub].Value()),
			GitlabToken:   strings.TrimSpace(f.inputs[cfgFieldGitlab].Value()),
			JiraUserEmail: strings.TrimSpace(f.inputs[cfgFieldJiraEmail].Value()),
			JiraToken:     strings.TrimSpace(f.inputs[cfgFieldJiraToken].Value()),
		}
		// Tokens also go into the local store so the form can be reseeded
		// when the server copy is unavailable.
		m.store.Set(store.KeyGithubToken, cfg.GithubToken)
		m.store.Set(store.KeyGitlabToken, cfg.GitlabToken)
		m.busy = true
		return m, m.saveConfigCmd(cfg)
	}

	var cmd tea.Cmd
	m.cfgForm.inputs[m.cfgForm.focus], cmd = m.cfgForm.inputs[m.cfgForm.focus].Update(key)
	return m, cmd
}

// — sprint form —————————————————————————————————————————————————————————————

func (m Model) updateSprintForm(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.sprint.Value())
		if name == "" {
			return m, nil
		}
		m.modal = modalNone
		m.busy = true
		return m, m.createSprintCmd(name)
	}
	var cmd tea.Cmd
	m.sprint, cmd = m.sprint.Update(key)
	return m, cmd
}
