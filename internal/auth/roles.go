package auth

// Role names as embedded in backend tokens.
const (
	RoleAdmin = "Admin"
	RoleQA    = "QA"
	RoleDev   = "Dev"
)

// Permission actions, mapped to the roles allowed to use them. Rendered
// controls are tagged with these sets; the visibility pass hides the rest.
var (
	PermApprovePR         = []string{RoleAdmin}
	PermRequestCorrection = []string{RoleAdmin}
	PermArchivePR         = []string{RoleAdmin}
	PermManageSprints     = []string{RoleAdmin, RoleQA}
	PermManageBatches     = []string{RoleAdmin}
	PermConfigureTokens   = []string{RoleAdmin}
	PermRequestVersion    = []string{RoleAdmin, RoleQA}
	PermCompleteSprint    = []string{RoleAdmin, RoleQA}
	PermDeployToStaging   = []string{RoleAdmin}
	PermCreateGitLabIssue = []string{RoleAdmin}
	PermDeleteBatch       = []string{RoleAdmin}
	PermRemovePRFromBatch = []string{RoleAdmin}
	PermRemoveVersion     = []string{RoleAdmin}
)
