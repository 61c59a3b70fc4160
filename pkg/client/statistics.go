package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/maeshaii/backend-wny/internal/models"
)

// Statistics fetches one snapshot. It satisfies report.Source.
func (c *Client) Statistics(ctx context.Context, year, course string, statsType models.StatsType) (*models.StatsSnapshot, error) {
	q := yearCourseQuery(year, course)
	q.Set("type", string(statsType))
	var snap models.StatsSnapshot
	if err := c.doJSON(ctx, http.MethodGet, "/statistics/generate", q, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// DetailedAlumniData satisfies report.DetailSource.
func (c *Client) DetailedAlumniData(ctx context.Context, year, course string) (*models.DetailedData, error) {
	var data models.DetailedData
	if err := c.doJSON(ctx, http.MethodGet, "/statistics/detailed", yearCourseQuery(year, course), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) AlumniStatistics(ctx context.Context, year, course string) (*models.AlumniStatistics, error) {
	var stats models.AlumniStatistics
	if err := c.doJSON(ctx, http.MethodGet, "/statistics/alumni", yearCourseQuery(year, course), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ExportStatistics downloads the server-built xlsx or pdf report.
func (c *Client) ExportStatistics(ctx context.Context, year, course string, statsType models.StatsType, format string) (*File, error) {
	q := yearCourseQuery(year, course)
	q.Set("type", string(statsType))
	q.Set("format", format)
	return c.download(ctx, "/statistics/export", q)
}

// ImportAlumni uploads a batch spreadsheet.
func (c *Client) ImportAlumni(ctx context.Context, file *Upload, batchYear int, course string) (*models.ImportSummary, error) {
	var summary models.ImportSummary
	err := c.doMultipart(ctx, http.MethodPost, "/alumni/import",
		map[string]string{"batch_year": strconv.Itoa(batchYear), "course": course},
		map[string]*Upload{"file": file}, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// ImportOJT uploads a coordinator's OJT spreadsheet.
func (c *Client) ImportOJT(ctx context.Context, file *Upload, batchYear int, course, coordinator string) (*models.ImportSummary, error) {
	var summary models.ImportSummary
	err := c.doMultipart(ctx, http.MethodPost, "/ojt/import",
		map[string]string{
			"batch_year":           strconv.Itoa(batchYear),
			"course":               course,
			"coordinator_username": coordinator,
		},
		map[string]*Upload{"file": file}, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) OJTStatistics(ctx context.Context, year, course string) (*models.OJTStatistics, error) {
	var stats models.OJTStatistics
	if err := c.doJSON(ctx, http.MethodGet, "/ojt/statistics", yearCourseQuery(year, course), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) UpdateOJTStatus(ctx context.Context, userID uint, status models.OJTStatus) (*models.OJTStatusUpdate, error) {
	var result models.OJTStatusUpdate
	path := fmt.Sprintf("/ojt/%d/status", userID)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, models.OJTStatusRequest{Status: status}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
