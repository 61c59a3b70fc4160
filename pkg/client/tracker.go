package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/maeshaii/backend-wny/internal/models"
)

type categoriesResponse struct {
	Success    bool                      `json:"success"`
	Categories []models.QuestionCategory `json:"categories"`
}

type responsesResponse struct {
	Responses []models.ResponseView `json:"responses"`
}

func (c *Client) ListCategories(ctx context.Context) ([]models.QuestionCategory, error) {
	var resp categoriesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/tracker/questions", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.QuestionCategory, error) {
	var out models.QuestionCategory
	if err := c.doJSON(ctx, http.MethodPost, "/tracker/categories", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id uint, in models.CategoryInput) (*models.QuestionCategory, error) {
	var out models.QuestionCategory
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/tracker/categories/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/tracker/categories/%d", id), nil, nil, nil)
}

func (c *Client) CreateQuestion(ctx context.Context, in models.QuestionInput) (*models.Question, error) {
	var out models.Question
	if err := c.doJSON(ctx, http.MethodPost, "/tracker/questions", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateQuestion(ctx context.Context, id uint, in models.QuestionInput) (*models.Question, error) {
	var out models.Question
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/tracker/questions/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteQuestion(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/tracker/questions/%d", id), nil, nil, nil)
}

// SubmitResponse posts a multipart body built by tracker.BuildSubmission.
func (c *Client) SubmitResponse(ctx context.Context, body io.Reader, contentType string) (*models.SubmitResult, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/tracker/responses", nil, body, contentType)
	if err != nil {
		return nil, err
	}
	var out models.SubmitResult
	if err := c.decode(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Form(ctx context.Context) (*models.TrackerForm, error) {
	var form models.TrackerForm
	if err := c.doJSON(ctx, http.MethodGet, "/tracker/form", nil, nil, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

// ListResponses lists responses, optionally for one batch year.
func (c *Client) ListResponses(ctx context.Context, batchYear *int) ([]models.ResponseView, error) {
	q := url.Values{}
	if batchYear != nil {
		q.Set("batch_year", strconv.Itoa(*batchYear))
	}
	var resp responsesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/tracker/responses", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Responses, nil
}

func (c *Client) UserResponses(ctx context.Context, userID uint) ([]models.ResponseView, error) {
	var resp responsesResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/tracker/responses/user/%d", userID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Responses, nil
}

func (c *Client) SubmissionStatus(ctx context.Context, userID uint) (*models.SubmissionStatus, error) {
	var status models.SubmissionStatus
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/tracker/status/%d", userID), nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
