package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/dto"
)

// LMSClient fetches course and enrollment pages from the learning platform.
type LMSClient interface {
	FetchCourses(ctx context.Context, page int) (*dto.LMSCoursePage, error)
	FetchEnrollments(ctx context.Context, page int) (*dto.LMSEnrollmentPage, error)
}

// LMSClientConfig holds connection settings for the learning platform API.
type LMSClientConfig struct {
	BaseURL  string
	APIToken string
	PageSize int
	Timeout  time.Duration
}

// HTTPLMSClient talks to the platform's REST API with bearer auth.
type HTTPLMSClient struct {
	cfg        LMSClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPLMSClient constructs an HTTP-backed LMS client.
func NewHTTPLMSClient(cfg LMSClientConfig, logger *zap.Logger) *HTTPLMSClient {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPLMSClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// FetchCourses returns one page of upstream courses.
func (c *HTTPLMSClient) FetchCourses(ctx context.Context, page int) (*dto.LMSCoursePage, error) {
	var result dto.LMSCoursePage
	if err := c.get(ctx, "/courses", page, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchEnrollments returns one page of upstream enrollments.
func (c *HTTPLMSClient) FetchEnrollments(ctx context.Context, page int) (*dto.LMSEnrollmentPage, error) {
	var result dto.LMSEnrollmentPage
	if err := c.get(ctx, "/enrollments", page, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPLMSClient) get(ctx context.Context, path string, page int, dest interface{}) error {
	endpoint := c.cfg.BaseURL + path
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(c.cfg.PageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build lms request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}

	c.logger.Debug("fetching lms page", zap.String("path", path), zap.Int("page", page))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lms request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lms responded with HTTP %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode lms response: %w", err)
	}
	return nil
}
