// Package gdc provides a client for the NCI Genomic Data Commons API.
package gdc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the public GDC API endpoint.
const DefaultBaseURL = "https://api.gdc.cancer.gov"

// Data categories exposed by the GDC for TCGA projects.
const (
	CategoryTranscriptome = "Transcriptome Profiling"
	CategorySNV           = "Simple Nucleotide Variation"
	CategoryClinical      = "Clinical"
)

// Client queries the GDC REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a GDC API client. An empty baseURL selects the
// public endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for request and progress messages.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// FileInfo describes one downloadable file in the GDC.
type FileInfo struct {
	ID           string `json:"file_id"`
	FileName     string `json:"file_name"`
	DataCategory string `json:"data_category"`
	DataFormat   string `json:"data_format"`
	Size         int64  `json:"file_size"`
}

// filesResponse is the GDC /files endpoint envelope.
type filesResponse struct {
	Data struct {
		Hits       []FileInfo `json:"hits"`
		Pagination struct {
			Count int `json:"count"`
			Total int `json:"total"`
			Page  int `json:"page"`
			Pages int `json:"pages"`
			From  int `json:"from"`
			Size  int `json:"size"`
		} `json:"pagination"`
	} `json:"data"`
}

// filter is a GDC query filter expression.
type filter struct {
	Op      string `json:"op"`
	Content any    `json:"content"`
}

// fieldFilter builds an "in" filter for a single field.
func fieldFilter(field string, values ...string) filter {
	return filter{
		Op: "in",
		Content: map[string]any{
			"field": field,
			"value": values,
		},
	}
}

// SearchFiles returns open-access files for a project, restricted to a
// data category and format (either may be empty). Results are fetched
// page by page until the server reports no more.
func (c *Client) SearchFiles(project, dataCategory, dataFormat string) ([]FileInfo, error) {
	filters := []filter{
		fieldFilter("cases.project.project_id", project),
		fieldFilter("access", "open"),
	}
	if dataCategory != "" {
		filters = append(filters, fieldFilter("data_category", dataCategory))
	}
	if dataFormat != "" {
		filters = append(filters, fieldFilter("data_format", dataFormat))
	}

	const pageSize = 500
	var files []FileInfo
	from := 0

	for {
		body := map[string]any{
			"filters": filter{Op: "and", Content: filters},
			"fields":  "file_id,file_name,data_category,data_format,file_size",
			"format":  "JSON",
			"size":    pageSize,
			"from":    from,
		}

		page, err := c.queryFiles(body)
		if err != nil {
			return nil, err
		}

		files = append(files, page.Data.Hits...)

		c.logger.Debug("fetched files page",
			zap.String("project", project),
			zap.Int("from", from),
			zap.Int("count", page.Data.Pagination.Count),
			zap.Int("total", page.Data.Pagination.Total))

		from += len(page.Data.Hits)
		if len(page.Data.Hits) == 0 || from >= page.Data.Pagination.Total {
			break
		}
	}

	return files, nil
}

// queryFiles POSTs one query to the /files endpoint.
func (c *Client) queryFiles(body map[string]any) (*filesResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal files query: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+"/files", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("GDC files request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("GDC API error %d: %s", resp.StatusCode, string(msg))
	}

	var out filesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode GDC response: %w", err)
	}

	return &out, nil
}
