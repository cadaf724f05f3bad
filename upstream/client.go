package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Dosada05/tournament-display/models"
)

// Client is the read-only view of the tournament-management API the
// display polls. Both endpoints are plain GETs; any network, status or
// decode failure surfaces as an error and the caller keeps whatever
// snapshot it already has.
type Client interface {
	FetchPage(ctx context.Context) (*models.PageInfo, error)
	FetchTournament(ctx context.Context, id string) (*models.TournamentSnapshot, error)
}

type httpClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *httpClient) FetchPage(ctx context.Context) (*models.PageInfo, error) {
	var page models.PageInfo
	if err := c.getJSON(ctx, c.baseURL+"/page", &page); err != nil {
		return nil, fmt.Errorf("failed to fetch page info: %w", err)
	}
	return &page, nil
}

func (c *httpClient) FetchTournament(ctx context.Context, id string) (*models.TournamentSnapshot, error) {
	var snapshot models.TournamentSnapshot
	endpoint := c.baseURL + "/tournaments/" + url.PathEscape(id)
	if err := c.getJSON(ctx, endpoint, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to fetch tournament %s: %w", id, err)
	}
	return &snapshot, nil
}

// getJSON выполняет GET и декодирует JSON-ответ. Без повторов: интервал
// опроса сам по себе является механизмом ретрая.
func (c *httpClient) getJSON(ctx context.Context, urlStr string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
