package api

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/SamuelAraag/pr-manager-cloud/internal/model"
)

// PRSubmission is the create/update payload of the PR form.
type PRSubmission struct {
	Project           string `json:"project"`
	DevID             int    `json:"devId"`
	Summary           string `json:"summary"`
	PRLink            string `json:"prLink"`
	TaskLink          string `json:"taskLink"`
	TeamsLink         string `json:"teamsLink"`
	NoTestingRequired bool   `json:"noTestingRequired"`
	LinksRelatedTask  string `json:"linksRelatedTask"`
}

// SaveBatchRequest applies a version to a batch awaiting one.
type SaveBatchRequest struct {
	BatchID      string `json:"batchId"`
	Version      string `json:"version"`
	PipelineLink string `json:"pipelineLink"`
	Rollback     string `json:"rollback"`
}

// IssueResult is the link of a created deploy issue.
type IssueResult struct {
	WebURL string `json:"webUrl"`
}

// versionPattern gates versions client-side: exactly four dot-separated
// numeric groups, each at least two digits (e.g. 26.01.30.428).
var versionPattern = regexp.MustCompile(`^\d{2,}\.\d{2,}\.\d{2,}\.\d{2,}$`)

// ValidVersion reports whether v passes the four-numeric-group pattern.
func ValidVersion(v string) bool { return versionPattern.MatchString(v) }

func (c *Client) CreatePR(ctx context.Context, pr PRSubmission) (*model.PullRequest, error) {
	var created model.PullRequest
	if err := c.writeJSON(ctx, http.MethodPost, "/PullRequests", pr, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdatePR(ctx context.Context, prID int, pr PRSubmission) (*model.PullRequest, error) {
	var updated model.PullRequest
	path := fmt.Sprintf("/PullRequests/%d", prID)
	if err := c.writeJSON(ctx, http.MethodPut, path, pr, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) ApprovePR(ctx context.Context, prID, approverID int) (*model.PullRequest, error) {
	var updated model.PullRequest
	path := fmt.Sprintf("/PullRequests/%d/approve", prID)
	body := struct {
		ApproverID int `json:"approverId"`
	}{approverID}
	if err := c.writeJSON(ctx, http.MethodPost, path, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) RequestCorrection(ctx context.Context, prID int, reason string) (*model.PullRequest, error) {
	var updated model.PullRequest
	path := fmt.Sprintf("/PullRequests/%d/request-correction", prID)
	body := struct {
		Reason string `json:"reason"`
	}{reason}
	if err := c.writeJSON(ctx, http.MethodPost, path, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) MarkPRFixed(ctx context.Context, prID int) (*model.PullRequest, error) {
	var updated model.PullRequest
	path := fmt.Sprintf("/PullRequests/%d/mark-fixed", prID)
	if err := c.writeJSON(ctx, http.MethodPost, path, nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) ArchivePR(ctx context.Context, prID int) error {
	path := fmt.Sprintf("/PullRequests/%d/archive", prID)
	return c.writeJSON(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) RequestVersionBatch(ctx context.Context, prIDs []int) (*model.VersionBatch, error) {
	var batch model.VersionBatch
	body := struct {
		PRIDs []int `json:"prIds"`
	}{prIDs}
	if err := c.writeJSON(ctx, http.MethodPost, "/VersionBatches/request-version", body, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// SaveVersionBatch applies version info to a batch. Version and rollback are
// validated before any network call.
func (c *Client) SaveVersionBatch(ctx context.Context, req SaveBatchRequest) (*model.VersionBatch, error) {
	if !ValidVersion(req.Version) {
		return nil, &RequestError{Message: "invalid version: use 4 numeric groups (e.g. 26.01.30.428)"}
	}
	if !ValidVersion(req.Rollback) {
		return nil, &RequestError{Message: "invalid rollback: use 4 numeric groups (e.g. 26.01.30.428)"}
	}
	var batch model.VersionBatch
	if err := c.writeJSON(ctx, http.MethodPost, "/VersionBatches/save-version", req, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

func (c *Client) ReleaseBatchToStaging(ctx context.Context, batchID string) (*model.VersionBatch, error) {
	var batch model.VersionBatch
	if err := c.writeJSON(ctx, http.MethodPost, "/VersionBatches/release-to-staging/"+batchID, nil, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

func (c *Client) RemoveVersionFromBatch(ctx context.Context, batchID string) (*model.VersionBatch, error) {
	var batch model.VersionBatch
	if err := c.writeJSON(ctx, http.MethodPost, "/VersionBatches/remove-version/"+batchID, nil, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

func (c *Client) RemovePRFromBatch(ctx context.Context, batchID string, prID int) (*model.VersionBatch, error) {
	var batch model.VersionBatch
	path := fmt.Sprintf("/VersionBatches/%s/remove-pr/%d", batchID, prID)
	if err := c.writeJSON(ctx, http.MethodPost, path, nil, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// DeleteBatch resolves the batch first: the delete endpoint is keyed by the
// numeric id, while the rest of the batch surface uses the batch key.
func (c *Client) DeleteBatch(ctx context.Context, batchID string) error {
	batch := c.FetchBatchByID(ctx, batchID)
	if batch == nil {
		return &RequestError{Message: "batch not found"}
	}
	path := fmt.Sprintf("/VersionBatches/%d", batch.ID)
	return c.writeJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) UpdateBatch(ctx context.Context, id int, batch model.VersionBatch) (*model.VersionBatch, error) {
	var updated model.VersionBatch
	path := fmt.Sprintf("/VersionBatches/%d", id)
	if err := c.writeJSON(ctx, http.MethodPut, path, batch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) CancelVersionRequest(ctx context.Context, batchID string) error {
	return c.writeJSON(ctx, http.MethodPost, "/VersionBatches/cancel-request/"+batchID, nil, nil)
}

func (c *Client) CancelVersionRequestByPRIDs(ctx context.Context, prIDs []int) error {
	body := struct {
		PRIDs []int `json:"prIds"`
	}{prIDs}
	return c.writeJSON(ctx, http.MethodPost, "/VersionBatches/cancel-request-by-prs", body, nil)
}

func (c *Client) CreateSprint(ctx context.Context, name string) (*model.Sprint, error) {
	var sprint model.Sprint
	body := struct {
		Name string `json:"name"`
	}{name}
	if err := c.writeJSON(ctx, http.MethodPost, "/Sprints", body, &sprint); err != nil {
		return nil, err
	}
	return &sprint, nil
}

func (c *Client) CompleteSprint(ctx context.Context, sprintID int) (*model.Sprint, error) {
	var sprint model.Sprint
	path := fmt.Sprintf("/Sprints/%d/complete", sprintID)
	if err := c.writeJSON(ctx, http.MethodPost, path, nil, &sprint); err != nil {
		return nil, err
	}
	return &sprint, nil
}

func (c *Client) SaveAutomationConfig(ctx context.Context, cfg model.AutomationConfig) error {
	return c.writeJSON(ctx, http.MethodPost, "/AutomationConfig", cfg, nil)
}

// CreateGitLabIssue asks the backend to open a deploy issue for the batch.
func (c *Client) CreateGitLabIssue(ctx context.Context, batchID string) (*IssueResult, error) {
	var result IssueResult
	if err := c.writeJSON(ctx, http.MethodPost, "/automation/create-issue/"+batchID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*model.LoginResult, error) {
	var result model.LoginResult
	body := struct {
		Name     string `json:"Name"`
		Password string `json:"Password"`
	}{username, password}
	if err := c.writeJSON(ctx, http.MethodPost, "/Auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) AdminLogin(ctx context.Context, password string) (*model.LoginResult, error) {
	var result model.LoginResult
	body := struct {
		Password string `json:"password"`
	}{password}
	if err := c.writeJSON(ctx, http.MethodPost, "/Auth/admin-login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
