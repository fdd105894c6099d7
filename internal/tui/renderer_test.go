package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SamuelAraag/pr-manager-cloud/internal/auth"
	"github.com/SamuelAraag/pr-manager-cloud/internal/model"
	"github.com/SamuelAraag/pr-manager-cloud/internal/ui"
	"github.com/SamuelAraag/pr-manager-cloud/internal/view"
)

func bindingSet(t *testing.T, tree *ui.Node) map[string]ui.Binding {
	t.Helper()
	out := map[string]ui.Binding{}
	for _, b := range ui.Bindings(tree) {
		out[b.EntityID+"/"+b.Action] = b
	}
	return out
}

func openClassification(prs ...model.PullRequest) view.Classification {
	return view.Classify(model.Snapshot{PullRequests: prs})
}

func TestOpenTabEmitsControlsRegardlessOfRole(t *testing.T) {
	c := openClassification(model.PullRequest{ID: 1, Project: "Alpha", Summary: "fix", Dev: "bob"})
	res := RenderOpenTab(c, RenderContext{CurrentUser: "alice"})

	bindings := bindingSet(t, res.Tree)
	// All controls are present before the visibility pass; gating is a tag,
	// not a render-time branch.
	assert.Contains(t, bindings, "pr:1/edit")
	assert.Contains(t, bindings, "pr:1/approve")
	assert.Contains(t, bindings, "pr:1/request-correction")
	assert.Contains(t, bindings, "pr:1/archive")
	assert.Equal(t, []string{"pr:1"}, res.Rows)
}

func TestOpenTabMarkFixedIsIdentityGated(t *testing.T) {
	needsFix := model.PullRequest{ID: 2, Project: "Alpha", Summary: "fix", Dev: "bob", NeedsCorrection: true}

	res := RenderOpenTab(openClassification(needsFix), RenderContext{CurrentUser: "bob"})
	assert.Contains(t, bindingSet(t, res.Tree), "pr:2/mark-fixed")

	res = RenderOpenTab(openClassification(needsFix), RenderContext{CurrentUser: "alice"})
	bindings := bindingSet(t, res.Tree)
	assert.NotContains(t, bindings, "pr:2/mark-fixed")
	// A PR already flagged gets no second correction request.
	assert.NotContains(t, bindings, "pr:2/request-correction")
}

func TestVisibilityPassHidesAdminControlsFromDev(t *testing.T) {
	c := openClassification(model.PullRequest{ID: 1, Project: "Alpha", Summary: "fix", Dev: "bob"})
	res := RenderOpenTab(c, RenderContext{CurrentUser: "bob"})

	devOnly := &roleStub{roles: []string{auth.RoleDev}}
	devOnly.apply(res.Tree)

	bindings := bindingSet(t, res.Tree)
	assert.Contains(t, bindings, "pr:1/edit") // untagged, everyone
	assert.NotContains(t, bindings, "pr:1/approve")
	assert.NotContains(t, bindings, "pr:1/archive")
}

// roleStub runs the same pass as auth.Store with a fixed role set.
type roleStub struct{ roles []string }

func (r *roleStub) apply(root *ui.Node) {
	ui.Walk(root, func(n *ui.Node) {
		if len(n.Roles) == 0 {
			return
		}
		hidden := true
		for _, want := range n.Roles {
			for _, have := range r.roles {
				if want == have {
					hidden = false
				}
			}
		}
		n.Hidden = hidden
	})
}

func TestControlLabelOnlyOnSelectedRow(t *testing.T) {
	c := openClassification(
		model.PullRequest{ID: 1, Project: "Alpha", Summary: "one", Dev: "bob"},
		model.PullRequest{ID: 2, Project: "Alpha", Summary: "two", Dev: "bob"},
	)
	res := RenderOpenTab(c, RenderContext{Selected: "pr:1"})

	bindings := bindingSet(t, res.Tree)
	assert.NotEmpty(t, bindings["pr:1/edit"].Label)
	assert.Empty(t, bindings["pr:2/edit"].Label)
	// The binding still exists for the unselected row.
	assert.Equal(t, "e", bindings["pr:2/edit"].Key)
}

func TestApprovedTabBatchCardControls(t *testing.T) {
	merged := model.PullRequest{ID: 10, Project: "Alpha", Summary: "fix", Dev: "bob", Approved: true}
	snap := model.Snapshot{
		PullRequests: []model.PullRequest{merged},
		Batches: []model.VersionBatch{{
			ID: 1, BatchID: "b-1", Project: "Alpha", Status: model.BatchPending,
			PullRequests: []model.PullRequest{{ID: 10, Dev: "bob", VersionRequested: true}},
		}},
	}
	res := RenderApprovedTab(view.Classify(snap), RenderContext{CurrentUser: "bob"})

	bindings := bindingSet(t, res.Tree)
	// Requesting state: the majority dev can supply, anyone managing batches
	// can cancel, nobody can re-request or release yet.
	assert.Contains(t, bindings, "batch:b-1/save-version")
	assert.Contains(t, bindings, "batch:b-1/cancel-request")
	assert.Contains(t, bindings, "batch:b-1/delete-batch")
	assert.NotContains(t, bindings, "batch:b-1/request-version")
	assert.NotContains(t, bindings, "batch:b-1/release-to-staging")
	assert.Contains(t, bindings, "batch:b-1/pr:10/remove-pr")

	assert.Equal(t, []string{"batch:b-1", "batch:b-1/pr:10"}, res.Rows)
}

func TestApprovedTabVersionedCardOffersIssueThenRelease(t *testing.T) {
	versioned := model.VersionBatch{
		ID: 2, BatchID: "b-2", Project: "Alpha", Status: model.BatchPending,
		Version:      "26.01.30.428",
		PullRequests: []model.PullRequest{{ID: 11, Dev: "bob"}},
	}
	snap := model.Snapshot{Batches: []model.VersionBatch{versioned}}

	res := RenderApprovedTab(view.Classify(snap), RenderContext{})
	bindings := bindingSet(t, res.Tree)
	assert.Contains(t, bindings, "batch:b-2/create-issue")
	assert.NotContains(t, bindings, "batch:b-2/release-to-staging")

	versioned.GitlabIssueLink = "https://gitlab.example/issues/9"
	snap.Batches[0] = versioned
	res = RenderApprovedTab(view.Classify(snap), RenderContext{})
	bindings = bindingSet(t, res.Tree)
	assert.NotContains(t, bindings, "batch:b-2/create-issue")
	assert.Contains(t, bindings, "batch:b-2/release-to-staging")
}

func TestApprovedTabBacklogCard(t *testing.T) {
	loose := model.PullRequest{ID: 20, Project: "Alpha", Summary: "fix", Dev: "bob", Approved: true}
	res := RenderApprovedTab(view.Classify(model.Snapshot{
		PullRequests: []model.PullRequest{loose},
	}), RenderContext{})

	bindings := bindingSet(t, res.Tree)
	assert.Contains(t, bindings, "backlog:Alpha/request-version")
	// Loose PRs archive instead of detaching from a batch.
	assert.Contains(t, bindings, "pr:20/archive")
	assert.NotContains(t, bindings, "pr:20/remove-pr")
}

func TestTestingTabControls(t *testing.T) {
	snap := model.Snapshot{Sprints: []model.Sprint{{
		ID: 3, Name: "Sprint 27", IsActive: true,
		VersionBatches: []model.VersionBatch{{
			BatchID: "b-3", Project: "Alpha", Version: "26.01.30.428",
			Status:       model.BatchDeployed,
			PullRequests: []model.PullRequest{{ID: 30, Dev: "bob"}},
		}},
	}}}
	res := RenderTestingTab(view.Classify(snap), RenderContext{})

	bindings := bindingSet(t, res.Tree)
	assert.Contains(t, bindings, "sprint:3/complete-sprint")
	assert.Contains(t, bindings, "batch:b-3/remove-version")
	assert.Contains(t, bindings, "batch:b-3/pr:30/remove-pr")
	assert.Equal(t, []string{"sprint:3", "batch:b-3", "batch:b-3/pr:30"}, res.Rows)
}

func TestHistoryTabHasNoControls(t *testing.T) {
	snap := model.Snapshot{Sprints: []model.Sprint{{
		ID: 4, Name: "Sprint 26", IsActive: false,
		VersionBatches: []model.VersionBatch{{
			BatchID: "b-4", Project: "Alpha", Version: "26.01.29.400",
			Status:       model.BatchDeployed,
			PullRequests: []model.PullRequest{{ID: 40, Dev: "bob"}},
		}},
	}}}
	res := RenderHistoryTab(view.Classify(snap), RenderContext{})

	assert.Empty(t, ui.Bindings(res.Tree))
	assert.Equal(t, []string{"sprint:4"}, res.Rows)
}

func TestEntityIDParsing(t *testing.T) {
	assert.Equal(t, 7, prNumFromEntity("pr:7"))
	assert.Equal(t, 7, prNumFromEntity("batch:b-1/pr:7"))
	assert.Equal(t, 0, prNumFromEntity("batch:b-1"))

	assert.Equal(t, "b-1", batchIDFromEntity("batch:b-1"))
	assert.Equal(t, "b-1", batchIDFromEntity("batch:b-1/pr:7"))
	assert.Equal(t, "", batchIDFromEntity("pr:7"))

	assert.Equal(t, 3, sprintIDFromEntity("sprint:3"))
}
