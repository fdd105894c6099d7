package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SamuelAraag/pr-manager-cloud/internal/auth"
	"github.com/SamuelAraag/pr-manager-cloud/internal/model"
	"github.com/SamuelAraag/pr-manager-cloud/internal/notify"
	"github.com/SamuelAraag/pr-manager-cloud/internal/ui"
	"github.com/SamuelAraag/pr-manager-cloud/internal/view"
)

// Action names of the binding table, keyed together with the entity id they
// act on.
const (
	actEdit              = "edit"
	actApprove           = "approve"
	actRequestCorrection = "request-correction"
	actMarkFixed         = "mark-fixed"
	actArchive           = "archive"
	actRequestVersion    = "request-version"
	actSaveVersion       = "save-version"
	actCancelRequest     = "cancel-request"
	actDeploy            = "release-to-staging"
	actCreateIssue       = "create-issue"
	actDeleteBatch       = "delete-batch"
	actRemoveVersion     = "remove-version"
	actRemovePR          = "remove-pr"
	actCompleteSprint    = "complete-sprint"
)

func prEntity(id int) string { return fmt.Sprintf("pr:%d", id) }

func batchEntity(batchID string) string { return "batch:" + batchID }

func backlogEntity(project string) string { return "backlog:" + project }

func batchPREntity(batchID string, prID int) string {
	return fmt.Sprintf("batch:%s/pr:%d", batchID, prID)
}

func sprintEntity(id int) string { return fmt.Sprintf("sprint:%d", id) }

// RenderContext is everything a render pass may depend on besides the
// classification itself. The renderer performs no role checks; it only tags
// controls for the visibility pass.
type RenderContext struct {
	CurrentUser string
	Selected    string
}

// RenderResult is a fully rebuilt region: the tree plus the selectable
// entity ids in display order. Nothing is retained between calls.
type RenderResult struct {
	Tree *ui.Node
	Rows []string
}

// control renders its key hint only on the selected row; the binding is
// always part of the table.
func control(entityID, action, key, label string, roles []string, selected bool) *ui.Node {
	b := ui.Binding{EntityID: entityID, Action: action, Key: key}
	if selected {
		b.Label = "  " + key + " " + label
	}
	return ui.Control(b, controlStyle, roles)
}

func marker(cond bool, label string) string {
	if cond {
		return " [" + label + "]"
	}
	return ""
}

func prLinks(pr model.PullRequest) string {
	var b strings.Builder
	b.WriteString(marker(pr.TeamsLink != "", "teams"))
	b.WriteString(marker(pr.TaskLink != "", "task"))
	b.WriteString(marker(pr.PRLink != "", "pr"))
	if related := model.ParseRelatedTasks(pr.LinksRelatedTask); len(related) > 0 {
		b.WriteString(fmt.Sprintf(" [+%d related]", len(related)))
	}
	return b.String()
}

func prTitle(pr model.PullRequest, selected bool) *ui.Node {
	cursor := "  "
	style := dimStyle
	if selected {
		cursor = "> "
		style = selectedStyle
	}
	text := fmt.Sprintf("%s%s — %s", cursor, pr.Summary, pr.Dev)
	if jira := notify.ExtractJiraID(pr.TaskLink); jira != "" {
		text += " " + "(" + jira + ")"
	}
	return ui.Line(
		ui.Styled(style, text),
		ui.Styled(labelStyle, prLinks(pr)),
	)
}

func openStatus(pr model.PullRequest) *ui.Node {
	switch {
	case pr.NeedsCorrection:
		reason := pr.CorrectionReason
		if reason == "" {
			reason = "general"
		}
		return ui.Styled(warnStyle, "  needs fix: "+reason)
	case pr.ReqVersion == "" || pr.ReqVersion == model.ReqVersionOK:
		return ui.Styled(labelStyle, "  in review")
	default:
		return ui.Styled(labelStyle, "  "+pr.ReqVersion)
	}
}

// RenderOpenTab builds the open-PRs region: projects ascending, input order
// inside each, one control set per PR.
func RenderOpenTab(c view.Classification, rc RenderContext) RenderResult {
	var res RenderResult
	root := ui.Group()
	if len(c.Open) == 0 {
		root.Children = append(root.Children, ui.Styled(dimStyle, "No open PRs."))
		res.Tree = root
		return res
	}
	for _, group := range c.Open {
		root.Children = append(root.Children,
			ui.Styled(groupHeadStyle, fmt.Sprintf("%s (%d)", group.Project, len(group.PRs))))
		for _, pr := range group.PRs {
			entity := prEntity(pr.ID)
			selected := rc.Selected == entity
			res.Rows = append(res.Rows, entity)

			row := ui.Group(ui.Line(prTitle(pr, selected), openStatus(pr)))
			controls := ui.Line(
				control(entity, actEdit, "e", "edit", nil, selected),
			)
			if !pr.NeedsCorrection {
				controls.Children = append(controls.Children,
					control(entity, actRequestCorrection, "c", "request correction", auth.PermRequestCorrection, selected))
			}
			controls.Children = append(controls.Children,
				control(entity, actApprove, "a", "approve", auth.PermApprovePR, selected))
			if pr.NeedsCorrection && pr.Dev == rc.CurrentUser {
				controls.Children = append(controls.Children,
					control(entity, actMarkFixed, "f", "mark fixed", nil, selected))
			}
			controls.Children = append(controls.Children,
				control(entity, actArchive, "x", "archive", auth.PermArchivePR, selected))
			row.Children = append(row.Children, controls)
			root.Children = append(root.Children, row)
		}
		root.Children = append(root.Children, ui.Text(" "))
	}
	res.Tree = root
	return res
}

// RenderApprovedTab builds the approved-pending region: batch cards first,
// then the per-project backlog.
func RenderApprovedTab(c view.Classification, rc RenderContext) RenderResult {
	var res RenderResult
	root := ui.Group()
	if len(c.Approved) == 0 {
		root.Children = append(root.Children, ui.Styled(dimStyle, "No PRs awaiting release."))
		res.Tree = root
		return res
	}
	for _, card := range c.Approved {
		entity := backlogEntity(card.Project)
		if card.BatchID != "" {
			entity = batchEntity(card.BatchID)
		}
		selected := rc.Selected == entity
		res.Rows = append(res.Rows, entity)

		head := ui.Line(
			ui.Styled(cardHeadStyle(selected), fmt.Sprintf("%s (%d)", card.Project, len(card.PRs))),
		)
		if card.HasVersion {
			head.Children = append(head.Children,
				ui.Text(" "), ui.Styled(versionTagStyle, "v"+card.Version))
			if card.IssueLink != "" {
				head.Children = append(head.Children, ui.Styled(labelStyle, " [issue]"))
			}
		}
		if card.RequestingVersion {
			if card.MajorityDev == rc.CurrentUser {
				head.Children = append(head.Children,
					ui.Styled(errStyle, "  action needed: supply version"))
			} else {
				head.Children = append(head.Children,
					ui.Styled(warnStyle, "  waiting: "+card.MajorityDev))
			}
		}

		controls := ui.Line()
		if !card.HasVersion && !card.RequestingVersion {
			controls.Children = append(controls.Children,
				control(entity, actRequestVersion, "v", "request version", auth.PermRequestVersion, selected))
		}
		if card.BatchID != "" && card.RequestingVersion && card.MajorityDev == rc.CurrentUser {
			controls.Children = append(controls.Children,
				control(entity, actSaveVersion, "s", "save version", nil, selected))
		}
		if card.RequestingVersion {
			controls.Children = append(controls.Children,
				control(entity, actCancelRequest, "u", "cancel request", auth.PermManageBatches, selected))
		}
		if card.BatchID != "" && card.HasVersion && card.IssueLink == "" {
			controls.Children = append(controls.Children,
				control(entity, actCreateIssue, "i", "create issue", auth.PermCreateGitLabIssue, selected))
		}
		if card.BatchID != "" && card.HasVersion && card.IssueLink != "" {
			controls.Children = append(controls.Children,
				control(entity, actDeploy, "g", "release STG", auth.PermDeployToStaging, selected))
		}
		if card.BatchID != "" {
			controls.Children = append(controls.Children,
				control(entity, actDeleteBatch, "D", "delete batch", auth.PermDeleteBatch, selected))
		}

		cardNode := ui.Group(head, controls)
		for _, pr := range card.PRs {
			prID := prEntity(pr.ID)
			if card.BatchID != "" {
				prID = batchPREntity(card.BatchID, pr.ID)
			}
			prSelected := rc.Selected == prID
			res.Rows = append(res.Rows, prID)

			line := ui.Line(prTitle(pr, prSelected), ui.Styled(stagedTagStyle, " merged"))
			if pr.Rollback != "" {
				line.Children = append(line.Children, ui.Styled(labelStyle, "  rollback "+pr.Rollback))
			}
			prControls := ui.Line()
			if card.BatchID != "" && (card.RequestingVersion || card.HasVersion) {
				prControls.Children = append(prControls.Children,
					control(prID, actRemovePR, "x", "remove from batch", auth.PermRemovePRFromBatch, prSelected))
			}
			if card.BatchID == "" {
				prControls.Children = append(prControls.Children,
					control(prID, actArchive, "x", "archive", auth.PermArchivePR, prSelected))
			}
			cardNode.Children = append(cardNode.Children, ui.Group(line, prControls))
		}
		root.Children = append(root.Children, cardNode, ui.Text(" "))
	}
	res.Tree = root
	return res
}

func cardHeadStyle(selected bool) lipgloss.Style {
	if selected {
		return selectedStyle
	}
	return groupHeadStyle
}

// RenderTestingTab builds the active-sprint region: deployed batches ordered
// by project then version descending.
func RenderTestingTab(c view.Classification, rc RenderContext) RenderResult {
	var res RenderResult
	root := ui.Group()
	if len(c.Testing) == 0 {
		root.Children = append(root.Children, ui.Styled(dimStyle, "No versions in staging."))
		res.Tree = root
		return res
	}
	for _, ts := range c.Testing {
		entity := sprintEntity(ts.Sprint.ID)
		selected := rc.Selected == entity
		res.Rows = append(res.Rows, entity)

		head := ui.Line(
			ui.Styled(sprintHeadStyle, cursorPrefix(selected)+ts.Sprint.Name),
			control(entity, actCompleteSprint, "C", "complete sprint", auth.PermCompleteSprint, selected),
		)
		root.Children = append(root.Children, head)

		for _, batch := range ts.Batches {
			bEntity := batchEntity(batch.BatchID)
			bSelected := rc.Selected == bEntity
			res.Rows = append(res.Rows, bEntity)

			bHead := ui.Line(
				ui.Styled(cardHeadStyle(bSelected), fmt.Sprintf("%s (%d)", batch.Project, len(batch.PullRequests))),
				ui.Text(" "),
				ui.Styled(versionTagStyle, "v"+batch.Version),
			)
			if batch.GitlabIssueLink != "" {
				bHead.Children = append(bHead.Children, ui.Styled(labelStyle, " [issue]"))
			}
			bHead.Children = append(bHead.Children,
				control(bEntity, actRemoveVersion, "x", "remove version", auth.PermRemoveVersion, bSelected))

			bNode := ui.Group(bHead)
			for _, pr := range batch.PullRequests {
				prID := batchPREntity(batch.BatchID, pr.ID)
				prSelected := rc.Selected == prID
				res.Rows = append(res.Rows, prID)
				bNode.Children = append(bNode.Children, ui.Group(
					prTitle(pr, prSelected),
					ui.Line(control(prID, actRemovePR, "x", "remove from batch", auth.PermRemovePRFromBatch, prSelected)),
				))
			}
			root.Children = append(root.Children, bNode, ui.Text(" "))
		}
	}
	res.Tree = root
	return res
}

// RenderHistoryTab lists completed sprints with all their batches,
// unfiltered, no controls.
func RenderHistoryTab(c view.Classification, rc RenderContext) RenderResult {
	var res RenderResult
	root := ui.Group()
	if len(c.History) == 0 {
		root.Children = append(root.Children, ui.Styled(dimStyle, "No history available."))
		res.Tree = root
		return res
	}
	for _, sprint := range c.History {
		res.Rows = append(res.Rows, sprintEntity(sprint.ID))
		root.Children = append(root.Children,
			ui.Styled(historyHeadStyle, cursorPrefix(rc.Selected == sprintEntity(sprint.ID))+sprint.Name))
		for _, batch := range sprint.VersionBatches {
			head := ui.Line(
				ui.Styled(dimStyle, "  "+batch.Project+" "),
				ui.Styled(dimStyle, "v"+batch.Version),
			)
			if batch.GitlabIssueLink != "" {
				head.Children = append(head.Children, ui.Styled(labelStyle, " [issue]"))
			}
			node := ui.Group(head)
			for _, pr := range batch.PullRequests {
				node.Children = append(node.Children,
					ui.Styled(dimStyle, fmt.Sprintf("    %s — %s%s", pr.Summary, pr.Dev, prLinks(pr))))
			}
			root.Children = append(root.Children, node)
		}
		root.Children = append(root.Children, ui.Text(" "))
	}
	res.Tree = root
	return res
}

// RenderBellTab lists the notification feed, most recent first.
func RenderBellTab(entries []notify.Notification) RenderResult {
	root := ui.Group()
	if len(entries) == 0 {
		root.Children = append(root.Children, ui.Styled(dimStyle, "No notifications."))
		return RenderResult{Tree: root}
	}
	for _, n := range entries {
		title := n.Project
		if n.JiraID != "" {
			title += " (" + n.JiraID + ")"
		}
		root.Children = append(root.Children, ui.Line(
			ui.Styled(severityStyle(n.Severity), "● "),
			ui.Styled(boldStyle, title+"  "),
			ui.Text(n.Message),
			ui.Styled(labelStyle, "  "+n.Timestamp.Format("15:04:05")),
		))
	}
	return RenderResult{Tree: root}
}

func cursorPrefix(selected bool) string {
	if selected {
		return "> "
	}
	return "  "
}
