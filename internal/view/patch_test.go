package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelAraag/pr-manager-cloud/internal/model"
)

func TestReplacePR(t *testing.T) {
	snap := model.Snapshot{PullRequests: []model.PullRequest{
		{ID: 1, Summary: "one"},
		{ID: 2, Summary: "two"},
	}}

	ok := ReplacePR(&snap, model.PullRequest{ID: 2, Summary: "two", Approved: true})
	require.True(t, ok)
	assert.True(t, snap.PullRequests[1].Approved)
	assert.Equal(t, 1, snap.PullRequests[0].ID)

	// Replacing a patched snapshot must classify the same as a fresh fetch
	// carrying the same entity.
	fresh := model.Snapshot{PullRequests: []model.PullRequest{
		{ID: 1, Summary: "one"},
		{ID: 2, Summary: "two", Approved: true},
	}}
	assert.Equal(t, Classify(fresh), Classify(snap))
}

func TestReplacePRUnknownID(t *testing.T) {
	snap := model.Snapshot{PullRequests: []model.PullRequest{{ID: 1}}}
	assert.False(t, ReplacePR(&snap, model.PullRequest{ID: 99}))
	assert.Len(t, snap.PullRequests, 1)
}

func TestRemovePR(t *testing.T) {
	snap := model.Snapshot{PullRequests: []model.PullRequest{
		{ID: 1}, {ID: 2}, {ID: 3},
	}}
	RemovePR(&snap, 2)
	require.Len(t, snap.PullRequests, 2)
	assert.Equal(t, 1, snap.PullRequests[0].ID)
	assert.Equal(t, 3, snap.PullRequests[1].ID)

	// Removing an absent id is a no-op.
	RemovePR(&snap, 99)
	assert.Len(t, snap.PullRequests, 2)
}

func TestAppendPR(t *testing.T) {
	var snap model.Snapshot
	AppendPR(&snap, model.PullRequest{ID: 7, Project: "Alpha"})
	require.Len(t, snap.PullRequests, 1)
	assert.Equal(t, 7, snap.PullRequests[0].ID)
}

func TestHasActiveSprint(t *testing.T) {
	assert.False(t, HasActiveSprint(model.Snapshot{}))
	assert.False(t, HasActiveSprint(model.Snapshot{Sprints: []model.Sprint{{IsActive: false}}}))
	assert.True(t, HasActiveSprint(model.Snapshot{Sprints: []model.Sprint{{IsActive: false}, {IsActive: true}}}))
}
