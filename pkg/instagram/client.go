package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mediasync/pkg/logger"
	"mediasync/pkg/models"
	"mediasync/pkg/ratelimit"
)

// ErrorType classifies Instagram API failures.
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
)

// Error represents an Instagram API error.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("instagram %s error (code %d): %s", e.Type, e.Code, e.Message)
}

// Session holds the injected web-session credentials.
type Session struct {
	SessionID string
	CSRFToken string
	UserAgent string
}

// Client fetches recent media for Instagram accounts through the web
// API, authenticated with the session cookies of a logged-in browser
// session.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	session    Session
	baseURL    string
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates an Instagram API client.
func NewClient(session Session, timeout time.Duration, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.NewTokenBucket(60, time.Minute)
	}

	userAgent := session.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	}

	headers := map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "application/json",
		"Accept-Language": "en-US,en;q=0.9",
	}
	if session.SessionID != "" {
		cookie := fmt.Sprintf("sessionid=%s", session.SessionID)
		if session.CSRFToken != "" {
			cookie += fmt.Sprintf("; csrftoken=%s", session.CSRFToken)
			headers["x-csrftoken"] = session.CSRFToken
		}
		headers["Cookie"] = cookie
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		headers:    headers,
		session:    session,
		baseURL:    BaseURL,
		limiter:    limiter,
		logger:     log,
	}
}

// Preflight verifies the injected session before a sync cycle. A
// missing session makes the whole run pointless, so the orchestrator
// treats this failure as fatal to the run.
func (c *Client) Preflight(ctx context.Context) error {
	if c.session.SessionID == "" || c.session.CSRFToken == "" {
		return &Error{
			Type:    ErrorTypeAuth,
			Message: "missing session credentials",
		}
	}
	return nil
}

// FetchRecent returns up to limit most-recent media items for the
// account, mapped to the platform-independent model.
func (c *Client) FetchRecent(ctx context.Context, account string, limit int) ([]models.MediaItem, error) {
	userID, err := c.userID(ctx, account)
	if err != nil {
		return nil, err
	}

	var response Response
	if err := c.getJSON(ctx, MediaURL(c.baseURL, userID, limit), &response); err != nil {
		return nil, err
	}

	edges := response.Data.User.EdgeOwnerToTimelineMedia.Edges
	if len(edges) > limit {
		edges = edges[:limit]
	}

	items := make([]models.MediaItem, 0, len(edges))
	for _, edge := range edges {
		items = append(items, mapNode(edge.Node, account))
	}

	c.logger.DebugWithFields("fetched recent media", map[string]interface{}{
		"account": account,
		"user_id": userID,
		"count":   len(items),
	})
	return items, nil
}

// userID resolves an account name to its numeric profile ID.
func (c *Client) userID(ctx context.Context, account string) (string, error) {
	var response Response
	if err := c.getJSON(ctx, ProfileURL(c.baseURL, account), &response); err != nil {
		return "", err
	}

	if response.RequiresToLogin {
		return "", &Error{
			Type:    ErrorTypeAuth,
			Message: fmt.Sprintf("profile %q requires authentication", account),
		}
	}
	if response.Data.User.ID == "" {
		return "", &Error{
			Type:    ErrorTypeNotFound,
			Message: fmt.Sprintf("profile %q not found", account),
		}
	}

	return response.Data.User.ID, nil
}

// getJSON performs a rate-limited GET and decodes the JSON body.
func (c *Client) getJSON(ctx context.Context, url string, v interface{}) error {
	if !c.limiter.Allow() {
		c.logger.WarnWithFields("api rate limit reached, waiting", map[string]interface{}{
			"url": url,
		})
		c.limiter.Wait()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &Error{Type: ErrorTypeNetwork, Message: err.Error()}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Type: ErrorTypeNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if err := checkResponseStatus(resp.StatusCode); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &Error{Type: ErrorTypeParsing, Message: err.Error()}
	}
	return nil
}

func checkResponseStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return &Error{Type: ErrorTypeRateLimit, Message: "too many requests", Code: code}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &Error{Type: ErrorTypeAuth, Message: "authentication rejected", Code: code}
	case code == http.StatusNotFound:
		return &Error{Type: ErrorTypeNotFound, Message: "resource not found", Code: code}
	case code >= 500:
		return &Error{Type: ErrorTypeServerError, Message: "server error", Code: code}
	default:
		return &Error{Type: ErrorTypeNetwork, Message: "unexpected status", Code: code}
	}
}

// mapNode converts an API node into the platform-independent item.
func mapNode(node Node, account string) models.MediaItem {
	owner := node.Owner.Username
	if owner == "" {
		owner = account
	}

	item := models.MediaItem{
		ID:       node.ID,
		TakenAt:  time.Unix(node.TakenAtTimestamp, 0).UTC().Format(time.RFC3339),
		Caption:  node.Caption(),
		Likes:    node.EdgeLikedBy.Count,
		Comments: node.EdgeMediaToComment.Count,
		Username: owner,
		ImageURL: node.DisplayURL,
		VideoURL: node.VideoURL,
	}

	children := node.EdgeSidecarToChildren.Edges
	switch {
	case node.Typename == "GraphSidecar" || len(children) > 0:
		item.Kind = models.KindGallery
		for _, child := range children {
			kind := models.KindImage
			if child.Node.IsVideo {
				kind = models.KindVideo
			}
			item.Resources = append(item.Resources, models.SubResource{
				Kind:     kind,
				ImageURL: child.Node.DisplayURL,
				VideoURL: child.Node.VideoURL,
			})
		}
	case node.IsVideo:
		item.Kind = models.KindVideo
	default:
		item.Kind = models.KindImage
	}

	return item
}
