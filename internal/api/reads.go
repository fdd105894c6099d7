package api

import (
	"context"

	"go.uber.org/zap"

	"github.com/SamuelAraag/pr-manager-cloud/internal/model"
)

// FetchPRs lists pull requests. 404 is an empty board, not a failure. Any
// other failure returns the nil sentinel: "data unavailable", not "zero PRs".
func (c *Client) FetchPRs(ctx context.Context) []model.PullRequest {
	prs := []model.PullRequest{}
	notFound, err := c.readJSON(ctx, "/PullRequests", &prs)
	if err != nil {
		c.log.Warn("fetch pull requests failed", zap.Error(err))
		return nil
	}
	if notFound {
		return []model.PullRequest{}
	}
	if prs == nil {
		prs = []model.PullRequest{}
	}
	return prs
}

// FetchSprints lists sprints with their batches; nil when unavailable.
func (c *Client) FetchSprints(ctx context.Context) []model.Sprint {
	sprints := []model.Sprint{}
	notFound, err := c.readJSON(ctx, "/Sprints", &sprints)
	if err != nil {
		c.log.Warn("fetch sprints failed", zap.Error(err))
		return nil
	}
	if notFound {
		return []model.Sprint{}
	}
	if sprints == nil {
		sprints = []model.Sprint{}
	}
	return sprints
}

// FetchUsers lists selectable accounts; empty on any failure.
func (c *Client) FetchUsers(ctx context.Context) []model.User {
	users := []model.User{}
	if _, err := c.readJSON(ctx, "/Users", &users); err != nil {
		c.log.Warn("fetch users failed", zap.Error(err))
		return []model.User{}
	}
	if users == nil {
		users = []model.User{}
	}
	return users
}

// FetchBatches lists version batches; empty on any failure.
func (c *Client) FetchBatches(ctx context.Context) []model.VersionBatch {
	batches := []model.VersionBatch{}
	if _, err := c.readJSON(ctx, "/VersionBatches", &batches); err != nil {
		c.log.Warn("fetch batches failed", zap.Error(err))
		return []model.VersionBatch{}
	}
	if batches == nil {
		batches = []model.VersionBatch{}
	}
	return batches
}

// FetchBatchByID returns one batch or nil when absent/unavailable.
func (c *Client) FetchBatchByID(ctx context.Context, batchID string) *model.VersionBatch {
	var batch model.VersionBatch
	notFound, err := c.readJSON(ctx, "/VersionBatches/by-id/"+batchID, &batch)
	if err != nil || notFound {
		if err != nil {
			c.log.Warn("fetch batch failed", zap.String("batchId", batchID), zap.Error(err))
		}
		return nil
	}
	return &batch
}

// GetAutomationConfig returns the stored integration tokens or nil.
func (c *Client) GetAutomationConfig(ctx context.Context) *model.AutomationConfig {
	var cfg model.AutomationConfig
	notFound, err := c.readJSON(ctx, "/AutomationConfig", &cfg)
	if err != nil || notFound {
		if err != nil {
			c.log.Warn("fetch automation config failed", zap.Error(err))
		}
		return nil
	}
	return &cfg
}
