package client

// HTTP client for the reviewhub API, used by the CLI commands.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Auth request/response structures, mirroring the server payloads
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	MainBadge    string `json:"main_badge"`
	ExpiresIn    int64  `json:"expires_in"`
}

type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Business request/response structures
type CreateBusinessRequest struct {
	Name        string  `json:"name"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	City        *string `json:"city,omitempty"`
	Website     *string `json:"website,omitempty"`
}

type BusinessResponse struct {
	ID            int64      `json:"id"`
	Slug          *string    `json:"slug,omitempty"`
	Name          string     `json:"name"`
	Category      *string    `json:"category,omitempty"`
	Description   *string    `json:"description,omitempty"`
	City          *string    `json:"city,omitempty"`
	Website       *string    `json:"website,omitempty"`
	AverageRating float64    `json:"average_rating"`
	ReviewCount   int        `json:"review_count"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

type PaginatedBusinessResponse struct {
	Data       []BusinessResponse `json:"data"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
}

type StatsResponse struct {
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// Review request/response structures
type SubmitReviewRequest struct {
	Rating         int    `json:"rating"`
	Content        string `json:"content"`
	ProofSubmitted bool   `json:"proof_submitted"`
}

type EditReviewRequest struct {
	Rating  *int    `json:"rating,omitempty"`
	Content *string `json:"content,omitempty"`
}

type RespondReviewRequest struct {
	Response string `json:"response"`
}

type ReviewResponse struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Username          string    `json:"username"`
	BusinessID        int64     `json:"business_id"`
	UpdateNumber      *int      `json:"update_number,omitempty"`
	Rating            int       `json:"rating"`
	Content           string    `json:"content"`
	Badge             string    `json:"badge"`
	BusinessResponse  *string   `json:"business_response,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	Edited            bool      `json:"edited"`
	UpdateCount       int       `json:"update_count"`
	CanEdit           bool      `json:"can_edit"`
	EditWindowExpired bool      `json:"edit_window_expired"`
}

type PaginatedReviewResponse struct {
	Data       []ReviewResponse `json:"data"`
	Stats      StatsResponse    `json:"stats"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
}

type ReviewVersionResponse struct {
	ID           string    `json:"id"`
	UpdateNumber *int      `json:"update_number,omitempty"`
	Rating       int       `json:"rating"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	Edited       bool      `json:"edited"`
}

type ReviewHistoryResponse struct {
	UserID     string                  `json:"user_id"`
	Username   string                  `json:"username"`
	BusinessID int64                   `json:"business_id"`
	Versions   []ReviewVersionResponse `json:"versions"`
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// doJSON sends an authenticated request with an optional JSON body and
// decodes the response into out when out is non-nil.
func (c *HTTPClient) doJSON(method, path string, body, out any, wantStatus int) error {
	var reader *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(jsonData)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s %s failed with status: %s", method, path, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Auth methods

func (c *HTTPClient) Register(request *RegisterRequest) (*AuthResponse, error) {
	var result AuthResponse
	if err := c.doJSON("POST", "/api/auth/register", request, &result, http.StatusCreated); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Login(request *LoginRequest) (*AuthResponse, error) {
	var result AuthResponse
	if err := c.doJSON("POST", "/api/auth/login", request, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) RefreshToken(refreshToken string) (*RefreshResponse, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var result RefreshResponse
	if err := c.doJSON("POST", "/api/auth/refresh", body, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) RevokeToken(refreshToken string) error {
	body := map[string]string{"refresh_token": refreshToken}
	return c.doJSON("POST", "/api/auth/revoke", body, nil, http.StatusOK)
}

// Business methods

func (c *HTTPClient) ListBusinesses(page, pageSize int) (*PaginatedBusinessResponse, error) {
	path := fmt.Sprintf("/api/businesses?page=%d&page_size=%d", page, pageSize)
	var result PaginatedBusinessResponse
	if err := c.doJSON("GET", path, nil, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetBusiness(id int64) (*BusinessResponse, error) {
	var result BusinessResponse
	if err := c.doJSON("GET", fmt.Sprintf("/api/businesses/%d", id), nil, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) SearchBusinesses(query string) ([]BusinessResponse, error) {
	path := "/api/businesses/search?q=" + url.QueryEscape(query)
	var result []BusinessResponse
	if err := c.doJSON("GET", path, nil, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) CreateBusiness(request *CreateBusinessRequest) (*BusinessResponse, error) {
	var result BusinessResponse
	if err := c.doJSON("POST", "/api/businesses", request, &result, http.StatusCreated); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetBusinessStats(id int64) (*StatsResponse, error) {
	var result StatsResponse
	if err := c.doJSON("GET", fmt.Sprintf("/api/businesses/%d/stats", id), nil, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

// Review methods

func (c *HTTPClient) ListReviews(businessID int64, sort string, page, pageSize int) (*PaginatedReviewResponse, error) {
	path := fmt.Sprintf("/api/businesses/%d/reviews?page=%d&page_size=%d", businessID, page, pageSize)
	if sort != "" {
		path += "&sort=" + url.QueryEscape(sort)
	}
	var result PaginatedReviewResponse
	if err := c.doJSON("GET", path, nil, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) SubmitReview(businessID int64, request *SubmitReviewRequest) (*ReviewResponse, error) {
	var result ReviewResponse
	path := fmt.Sprintf("/api/businesses/%d/reviews", businessID)
	if err := c.doJSON("POST", path, request, &result, http.StatusCreated); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) AppendUpdate(reviewID string, request *SubmitReviewRequest) (*ReviewResponse, error) {
	var result ReviewResponse
	path := fmt.Sprintf("/api/reviews/%s/updates", reviewID)
	if err := c.doJSON("POST", path, request, &result, http.StatusCreated); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) EditReview(reviewID string, request *EditReviewRequest) (*ReviewResponse, error) {
	var result ReviewResponse
	path := fmt.Sprintf("/api/reviews/%s", reviewID)
	if err := c.doJSON("PATCH", path, request, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetReviewHistory(reviewID string) (*ReviewHistoryResponse, error) {
	var result ReviewHistoryResponse
	path := fmt.Sprintf("/api/reviews/%s/history", reviewID)
	if err := c.doJSON("GET", path, nil, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) RespondToReview(reviewID string, request *RespondReviewRequest) (*ReviewResponse, error) {
	var result ReviewResponse
	path := fmt.Sprintf("/api/reviews/%s/response", reviewID)
	if err := c.doJSON("POST", path, request, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}
