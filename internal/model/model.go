package model

// Batch lifecycle statuses as reported by the backend.
const (
	BatchPending  = "Pending"
	BatchReleased = "Released"
	BatchDeployed = "Deployed"
)

// ReqVersion display states carried on a PullRequest.
const (
	ReqVersionOK      = "ok"
	ReqVersionPending = "pending"
)

// PullRequest holds one tracked pull request as returned by the backend.
// The client never invents transitions; every mutation goes through the API.
type PullRequest struct {
	ID                int    `json:"id"`
	Project           string `json:"project"`
	Summary           string `json:"summary"`
	Dev               string `json:"dev"`
	TeamsLink         string `json:"teamsLink"`
	TaskLink          string `json:"taskLink"`
	PRLink            string `json:"prLink"`
	LinksRelatedTask  string `json:"linksRelatedTask"` // "summary|url;summary|url" entries
	Approved          bool   `json:"approved"`
	DeployedToStg     bool   `json:"deployedToStg"`
	NeedsCorrection   bool   `json:"needsCorrection"`
	CorrectionReason  string `json:"correctionReason"`
	ReqVersion        string `json:"reqVersion"`
	VersionRequested  bool   `json:"versionRequested"`
	Version           string `json:"version"`
	Rollback          string `json:"rollback"`
	GitlabIssueLink   string `json:"gitlabIssueLink"`
	NoTestingRequired bool   `json:"noTestingRequired"`
}

// RelatedTask is one parsed entry of a PR's semicolon-delimited related list.
type RelatedTask struct {
	Summary string
	URL     string
}

// VersionBatch groups approved PRs of one project under a single version.
// A PR belongs to at most one active batch at a time.
type VersionBatch struct {
	ID              int           `json:"id"`
	BatchID         string        `json:"batchId"`
	Project         string        `json:"project"`
	Version         string        `json:"version"`
	PipelineLink    string        `json:"pipelineLink"`
	Rollback        string        `json:"rollback"`
	GitlabIssueLink string        `json:"gitlabIssueLink"`
	Status          string        `json:"status"`
	PullRequests    []PullRequest `json:"pullRequests"`
}

// Sprint is a time-boxed container for version batches. The backend keeps at
// most one sprint active; the client assumes that when splitting the testing
// view from history.
type Sprint struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	IsActive       bool           `json:"isActive"`
	VersionBatches []VersionBatch `json:"versionBatches"`
}

// User is a backend account selectable on the login screen.
type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage"`
}

// AutomationConfig holds the integration tokens managed in the setup form.
type AutomationConfig struct {
	GithubToken    string `json:"githubToken"`
	GitlabToken    string `json:"gitlabToken"`
	JiraUserEmail  string `json:"jiraUserEmail"`
	JiraToken      string `json:"jiraToken"`
	SecretPassword string `json:"secretPassword,omitempty"`
}

// LoginResult is the success payload of login and admin-login.
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Snapshot is the in-memory server state the views are derived from. It is
// owned by the sync controller; renderers only read it.
type Snapshot struct {
	PullRequests []PullRequest
	Batches      []VersionBatch
	Sprints      []Sprint
}
