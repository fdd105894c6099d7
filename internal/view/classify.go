// Package view derives the rendered buckets from a server snapshot. Every
// function here is pure and recomputed per render; nothing is cached across
// snapshots.
package view

import (
	"sort"

	"github.com/SamuelAraag/pr-manager-cloud/internal/model"
)

// ProjectGroup is one project's PRs, input order preserved.
type ProjectGroup struct {
	Project string
	PRs     []model.PullRequest
}

// ApprovedCard is one card of the approved-pending view: either a version
// batch (BatchID set) or a per-project backlog group.
type ApprovedCard struct {
	Project           string
	BatchID           string
	PRs               []model.PullRequest
	RequestingVersion bool
	MajorityDev       string
	HasVersion        bool
	Version           string
	IssueLink         string
}

// TestingSprint is an active sprint with its deployed batches, ordered for
// the testing view.
type TestingSprint struct {
	Sprint  model.Sprint
	Batches []model.VersionBatch
}

// Classification is the full derived view of one snapshot.
type Classification struct {
	Open     []ProjectGroup
	Approved []ApprovedCard
	Testing  []TestingSprint
	History  []model.Sprint

	OpenCount     int
	ApprovedCount int
	TestingCount  int
}

func Classify(snap model.Snapshot) Classification {
	var c Classification

	var open, approvedPending []model.PullRequest
	for _, pr := range snap.PullRequests {
		switch {
		case !pr.Approved:
			open = append(open, pr)
		case !pr.DeployedToStg:
			approvedPending = append(approvedPending, pr)
		}
	}
	c.Open = groupByProject(open)
	c.OpenCount = len(open)
	c.Approved = approvedCards(approvedPending, snap.Batches)
	c.ApprovedCount = len(approvedPending)

	for _, sprint := range snap.Sprints {
		if sprint.IsActive {
			deployed := deployedBatches(sprint)
			c.TestingCount += len(deployed)
			if len(deployed) > 0 {
				c.Testing = append(c.Testing, TestingSprint{Sprint: sprint, Batches: deployed})
			}
		} else {
			c.History = append(c.History, sprint)
		}
	}
	return c
}

func groupByProject(prs []model.PullRequest) []ProjectGroup {
	byProject := map[string][]model.PullRequest{}
	for _, pr := range prs {
		project := pr.Project
		if project == "" {
			project = "Outros"
		}
		byProject[project] = append(byProject[project], pr)
	}
	names := make([]string, 0, len(byProject))
	for name := range byProject {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]ProjectGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, ProjectGroup{Project: name, PRs: byProject[name]})
	}
	return groups
}

// approvedCards splits approved-but-not-deployed PRs into batch cards
// (batches still Pending or Released) and per-project backlog groups for PRs
// in no batch.
func approvedCards(approved []model.PullRequest, batches []model.VersionBatch) []ApprovedCard {
	inBatch := map[int]bool{}
	for _, b := range batches {
		for _, pr := range b.PullRequests {
			inBatch[pr.ID] = true
		}
	}

	var cards []ApprovedCard
	for _, b := range batches {
		if b.Status != model.BatchPending && b.Status != model.BatchReleased {
			continue
		}
		card := ApprovedCard{
			Project:   b.Project,
			BatchID:   b.BatchID,
			PRs:       b.PullRequests,
			Version:   b.Version,
			IssueLink: b.GitlabIssueLink,
		}
		deriveCardFacts(&card)
		if card.Version != "" {
			card.HasVersion = true
		}
		cards = append(cards, card)
	}

	var backlog []model.PullRequest
	for _, pr := range approved {
		if !inBatch[pr.ID] {
			backlog = append(backlog, pr)
		}
	}
	for _, group := range groupByProject(backlog) {
		card := ApprovedCard{Project: group.Project, PRs: group.PRs}
		deriveCardFacts(&card)
		cards = append(cards, card)
	}
	return cards
}

func deriveCardFacts(card *ApprovedCard) {
	for _, pr := range card.PRs {
		if pr.VersionRequested {
			card.RequestingVersion = true
		}
		if pr.Version != "" {
			card.HasVersion = true
			if card.Version == "" {
				card.Version = pr.Version
			}
			if card.IssueLink == "" {
				card.IssueLink = pr.GitlabIssueLink
			}
		}
	}
	if card.RequestingVersion {
		card.MajorityDev = majorityDev(card.PRs)
	}
}

// majorityDev is the developer owning most PRs of the card: the person asked
// to supply the version. Ties go to the dev seen first.
func majorityDev(prs []model.PullRequest) string {
	counts := map[string]int{}
	var best string
	for _, pr := range prs {
		counts[pr.Dev]++
		if best == "" || counts[pr.Dev] > counts[best] {
			best = pr.Dev
		}
	}
	return best
}

// deployedBatches filters a sprint's batches to Deployed and orders them by
// project ascending, then version descending by numeric dot segments.
func deployedBatches(sprint model.Sprint) []model.VersionBatch {
	var deployed []model.VersionBatch
	for _, b := range sprint.VersionBatches {
		if b.Status == model.BatchDeployed {
			deployed = append(deployed, b)
		}
	}
	sort.SliceStable(deployed, func(i, j int) bool {
		if deployed[i].Project != deployed[j].Project {
			return deployed[i].Project < deployed[j].Project
		}
		return CompareVersions(deployed[i].Version, deployed[j].Version) > 0
	})
	return deployed
}
