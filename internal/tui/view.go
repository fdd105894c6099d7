package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SamuelAraag/pr-manager-cloud/internal/auth"
	"github.com/SamuelAraag/pr-manager-cloud/internal/store"
)

func (m Model) View() string {
	switch m.session {
	case stateLoggedOut:
		return m.viewLogin()
	case stateLoading:
		return m.center(titleStyle.Render("PR Manager") + "\n\n" +
			dimStyle.Render(spinnerFrames[m.spinnerFrame]+" loading data..."))
	}

	switch m.modal {
	case modalPRForm:
		return m.center(m.viewPRForm())
	case modalVersionForm:
		return m.center(m.viewVersionForm())
	case modalConfigForm:
		return m.center(m.viewConfigForm())
	case modalSprintForm:
		return m.center(modalStyle.Render(
			titleStyle.Render("New sprint") + "\n\n" +
				m.sprint.View() + "\n\n" +
				helpStyle.Render("enter create · esc cancel")))
	case modalConfirm:
		return m.center(confirmModalStyle.Render(
			m.confirm.prompt + "\n\n" + helpStyle.Render("y confirm · n cancel")))
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")
	if m.rendered.Tree != nil {
		b.WriteString(m.rendered.Tree.Render())
	}
	b.WriteString("\n")
	if m.toast != "" {
		b.WriteString(severityStyle(m.toastSeverity).Render(m.toast))
		b.WriteString("\n")
	}
	b.WriteString(m.viewHelp())
	return b.String()
}

func (m Model) center(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) viewHeader() string {
	head := titleStyle.Render("PR Manager")
	if user := m.store.GetString(store.KeyAppUser); user != "" {
		head += labelStyle.Render("  " + user)
		if m.roles.IsAdmin() {
			head += badgeStyle.Render(" admin")
		}
	}
	if m.busy {
		head += dimStyle.Render("  " + spinnerFrames[m.spinnerFrame])
	}
	return head
}

func (m Model) viewTabs() string {
	counts := []int{m.cls.OpenCount, m.cls.ApprovedCount, m.cls.TestingCount, 0, m.feed.Unread()}
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if counts[i] > 0 {
			label += fmt.Sprintf(" (%d)", counts[i])
		}
		if tab(i) == m.tab {
			parts = append(parts, tabActiveStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) viewHelp() string {
	parts := []string{"1-5 tabs", "j/k move", "n new PR", "r refresh"}
	if m.roles.Can(auth.PermManageSprints) {
		parts = append(parts, "S sprint")
	}
	if m.roles.Can(auth.PermConfigureTokens) {
		parts = append(parts, "t tokens")
	}
	parts = append(parts, "ctrl+l logout", "q quit")
	return helpStyle.Render(strings.Join(parts, " · "))
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("PR Manager"))
	b.WriteString("\n\n")
	if m.login.admin {
		b.WriteString(boldStyle.Render("Admin login"))
		b.WriteString("\n\n")
		b.WriteString(m.login.password.View())
	} else {
		b.WriteString(m.login.username.View())
		b.WriteString("\n")
		b.WriteString(m.login.password.View())
	}
	b.WriteString("\n")
	if m.login.errText != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(m.login.errText))
		b.WriteString("\n")
	}
	if m.busy {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(spinnerFrames[m.spinnerFrame] + " signing in..."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter sign in · tab switch field · ctrl+a admin mode"))
	return m.center(modalStyle.Render(b.String()))
}

func (m Model) viewPRForm() string {
	f := m.prForm
	title := "New PR"
	if f.prID != 0 {
		title = "Edit PR"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	if f.locked {
		b.WriteString(stagedTagStyle.Render(" approved, read only"))
	}
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		b.WriteString(labelStyle.Render(prFieldLabels[i]))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	check := "[ ]"
	if f.noTesting {
		check = "[x]"
	}
	checkLine := check + " " + prFieldLabels[prFieldNoTesting]
	if f.focus == prFieldNoTesting {
		b.WriteString(selectedStyle.Render(checkLine))
	} else {
		b.WriteString(checkLine)
	}
	b.WriteString("\n")
	if f.errText != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(f.errText))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if f.locked {
		b.WriteString(helpStyle.Render("esc close"))
	} else {
		b.WriteString(helpStyle.Render("ctrl+s save · tab next field · space toggle · esc cancel"))
	}
	return modalStyle.Render(b.String())
}

func (m Model) viewVersionForm() string {
	f := m.verForm
	var b strings.Builder
	b.WriteString(titleStyle.Render("Version for batch " + f.batchID))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		b.WriteString(labelStyle.Render(verFieldLabels[i]))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if f.errText != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(f.errText))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("ctrl+s save · tab next field · esc cancel"))
	return modalStyle.Render(b.String())
}

func (m Model) viewConfigForm() string {
	f := m.cfgForm
	var b strings.Builder
	b.WriteString(titleStyle.Render("Automation tokens"))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		b.WriteString(labelStyle.Render(cfgFieldLabels[i]))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("ctrl+s save · tab next field · esc cancel"))
	return modalStyle.Render(b.String())
}
