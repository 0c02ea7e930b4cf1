// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"

	"github.com/pdiddy/review-engine/pkg/types"
)

type abstractRequest struct {
	Abstract string `json:"abstract"`
}

// Summarize asks the backend for a short summary of one abstract.
func (c *Client) Summarize(ctx context.Context, abstract string) (string, error) {
	var body struct {
		Summary string `json:"summary"`
	}
	if err := c.postJSON(ctx, "/summarize", abstractRequest{Abstract: abstract}, &body); err != nil {
		return "", err
	}
	return body.Summary, nil
}

// Statistics asks the backend to extract the statistical reporting from one
// abstract.
func (c *Client) Statistics(ctx context.Context, abstract string) (string, error) {
	var body struct {
		Stats string `json:"stats"`
	}
	if err := c.postJSON(ctx, "/statistics", abstractRequest{Abstract: abstract}, &body); err != nil {
		return "", err
	}
	return body.Stats, nil
}

// Appraisal asks the backend for a critical appraisal of one abstract.
func (c *Client) Appraisal(ctx context.Context, abstract string) (string, error) {
	var body struct {
		Appraisal string `json:"appraisal"`
	}
	if err := c.postJSON(ctx, "/appraisal", abstractRequest{Abstract: abstract}, &body); err != nil {
		return "", err
	}
	return body.Appraisal, nil
}

// ExtractStudyData asks the backend for the structured study record of one
// abstract. Callers substitute the N/A placeholder on failure; extraction
// must never block an inclusion decision.
func (c *Client) ExtractStudyData(ctx context.Context, abstract string) (types.StudyData, error) {
	var data types.StudyData
	if err := c.postJSON(ctx, "/extract-study-data", abstractRequest{Abstract: abstract}, &data); err != nil {
		return types.StudyData{}, err
	}
	return data, nil
}

// Analyze asks the backend for a cross-article synthesis over a set of
// abstracts: common themes, contradictions, and research gaps.
func (c *Client) Analyze(ctx context.Context, abstracts []string) (string, error) {
	req := struct {
		Abstracts []string `json:"abstracts"`
	}{Abstracts: abstracts}

	var body struct {
		Output string `json:"output"`
	}
	if err := c.postJSON(ctx, "/analyze", req, &body); err != nil {
		return "", err
	}
	return body.Output, nil
}
