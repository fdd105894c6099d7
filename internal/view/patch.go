package view

import "github.com/SamuelAraag/pr-manager-cloud/internal/model"

// ReplacePR swaps the matching-id entry in place after a successful mutation
// returned the updated entity. Reports false when the id is unknown, in which
// case the caller falls back to a full reload.
func ReplacePR(snap *model.Snapshot, updated model.PullRequest) bool {
	for i := range snap.PullRequests {
		if snap.PullRequests[i].ID == updated.ID {
			snap.PullRequests[i] = updated
			return true
		}
	}
	return false
}

// AppendPR adds a freshly created PR to the snapshot.
func AppendPR(snap *model.Snapshot, created model.PullRequest) {
	snap.PullRequests = append(snap.PullRequests, created)
}

// RemovePR drops an archived PR from the snapshot.
func RemovePR(snap *model.Snapshot, prID int) {
	kept := snap.PullRequests[:0]
	for _, pr := range snap.PullRequests {
		if pr.ID != prID {
			kept = append(kept, pr)
		}
	}
	snap.PullRequests = kept
}

// HasActiveSprint reports whether any sprint is active; releasing to staging
// requires one.
func HasActiveSprint(snap model.Snapshot) bool {
	for _, s := range snap.Sprints {
		if s.IsActive {
			return true
		}
	}
	return false
}
