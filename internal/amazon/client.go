package amazon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"adpulse/internal/config"
	"adpulse/internal/domain"
	"adpulse/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Client talks to the remote advertising API. Sync methods pull one data
// class and apply it to local storage; the scheduler drives them through
// the backoff executor, so a single call here performs no retries itself.
type Client struct {
	cfg     config.AdsConfig
	http    *http.Client
	creds   domain.CredentialStore
	repo    domain.Repository
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu     sync.Mutex
	tokens map[string]oauth2.TokenSource
}

func NewClient(cfg config.AdsConfig, creds domain.CredentialStore, repo domain.Repository, logger zerolog.Logger) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		creds:   creds,
		repo:    repo,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		logger:  logger,
		tokens:  make(map[string]oauth2.TokenSource),
	}
}

// tokenSource lazily builds and caches a refreshing token source per account.
func (c *Client) tokenSource(ctx context.Context, accountID string) (oauth2.TokenSource, error) {
	c.mu.Lock()
	if ts, ok := c.tokens[accountID]; ok {
		c.mu.Unlock()
		return ts, nil
	}
	c.mu.Unlock()

	creds, err := c.creds.GetCredentials(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if creds.Expired(time.Now()) {
		return nil, fmt.Errorf("account %s: %w", accountID, ErrAuthentication)
	}

	conf := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: c.cfg.TokenURL},
	}
	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})

	c.mu.Lock()
	c.tokens[accountID] = ts
	c.mu.Unlock()
	return ts, nil
}

// do performs one authenticated request. A 429 comes back as *APIError so
// the backoff executor can recognize it; 401/403 map to ErrAuthentication.
func (c *Client) do(ctx context.Context, accountID, method, path string, body io.Reader, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	ts, err := c.tokenSource(ctx, accountID)
	if err != nil {
		return err
	}
	token, err := ts.Token()
	if err != nil {
		return fmt.Errorf("account %s: %w: %v", accountID, ErrAuthentication, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	token.SetAuthHeader(req)
	req.Header.Set("Amazon-Advertising-API-Scope", accountID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("account %s: %w", accountID, ErrAuthentication)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}

type campaignPayload struct {
	ID      string  `json:"campaignId"`
	Product string  `json:"product"` // sp, sb, sd
	State   string  `json:"state"`
	Budget  float64 `json:"budget"`
}

func (c *Client) SyncCampaignStatuses(ctx context.Context, accountID string) (int, error) {
	var campaigns []campaignPayload
	if err := c.do(ctx, accountID, http.MethodGet, "/v2/campaigns", nil, &campaigns); err != nil {
		return 0, err
	}

	counts := map[string]int64{}
	for _, campaign := range campaigns {
		counts[campaign.Product+"_campaigns"]++
	}
	for _, product := range []string{"sp", "sb", "sd"} {
		entity := product + "_campaigns"
		if err := c.repo.SetEntityCount(ctx, accountID, entity, counts[entity]); err != nil {
			return 0, err
		}
	}

	c.logger.Debug().Str("account_id", accountID).Int("count", len(campaigns)).Msg("campaign statuses synced")
	return len(campaigns), nil
}

func (c *Client) SyncBudgets(ctx context.Context, accountID string) (int, error) {
	var budgets []struct {
		CampaignID string  `json:"campaignId"`
		Budget     float64 `json:"budget"`
	}
	if err := c.do(ctx, accountID, http.MethodGet, "/v2/budgets", nil, &budgets); err != nil {
		return 0, err
	}
	return len(budgets), nil
}

func (c *Client) SyncAdGroups(ctx context.Context, accountID string) (int, error) {
	var adGroups []struct {
		ID    string `json:"adGroupId"`
		State string `json:"state"`
	}
	if err := c.do(ctx, accountID, http.MethodGet, "/v2/adGroups", nil, &adGroups); err != nil {
		return 0, err
	}
	if err := c.repo.SetEntityCount(ctx, accountID, "ad_groups", int64(len(adGroups))); err != nil {
		return 0, err
	}
	return len(adGroups), nil
}

type keywordPayload struct {
	ID          string    `json:"keywordId"`
	Text        string    `json:"keywordText"`
	State       string    `json:"state"`
	Spend       float64   `json:"spend"`
	Clicks      int64     `json:"clicks"`
	Impressions int64     `json:"impressions"`
	Orders      int64     `json:"orders"`
	Sales       float64   `json:"sales"`
	WindowStart time.Time `json:"windowStart"`
	WindowEnd   time.Time `json:"windowEnd"`
}

func (c *Client) SyncKeywords(ctx context.Context, accountID string) (int, error) {
	var keywords []keywordPayload
	if err := c.do(ctx, accountID, http.MethodGet, "/v2/keywords/report", nil, &keywords); err != nil {
		return 0, err
	}

	now := time.Now()
	for _, kw := range keywords {
		snapshot := &models.KeywordSnapshot{
			ID:          kw.ID,
			AccountID:   accountID,
			KeywordText: kw.Text,
			Status:      kw.State,
			ACOS:        models.ACOS(kw.Spend, kw.Sales),
			Spend:       kw.Spend,
			Clicks:      kw.Clicks,
			Impressions: kw.Impressions,
			Orders:      kw.Orders,
			Sales:       kw.Sales,
			WindowStart: kw.WindowStart,
			WindowEnd:   kw.WindowEnd,
			SyncedAt:    now,
		}
		if err := c.repo.UpsertKeywordSnapshot(ctx, snapshot); err != nil {
			return 0, err
		}
	}

	c.logger.Debug().Str("account_id", accountID).Int("count", len(keywords)).Msg("keywords synced")
	return len(keywords), nil
}

func (c *Client) SyncTargets(ctx context.Context, accountID string) (int, error) {
	var targets []struct {
		ID    string `json:"targetId"`
		State string `json:"state"`
	}
	if err := c.do(ctx, accountID, http.MethodGet, "/v2/targets", nil, &targets); err != nil {
		return 0, err
	}
	if err := c.repo.SetEntityCount(ctx, accountID, "product_targets", int64(len(targets))); err != nil {
		return 0, err
	}
	return len(targets), nil
}

// FullSync pulls every data class in dependency order.
func (c *Client) FullSync(ctx context.Context, accountID string) (int, error) {
	total := 0
	steps := []func(context.Context, string) (int, error){
		c.SyncCampaignStatuses,
		c.SyncBudgets,
		c.SyncAdGroups,
		c.SyncKeywords,
		c.SyncTargets,
	}
	for _, step := range steps {
		n, err := step(ctx, accountID)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *Client) RemoteCount(ctx context.Context, accountID, entityType string) (int64, error) {
	var payload struct {
		Count int64 `json:"count"`
	}
	path := "/v2/counts?entity=" + entityType
	if err := c.do(ctx, accountID, http.MethodGet, path, nil, &payload); err != nil {
		return 0, err
	}
	return payload.Count, nil
}

func (c *Client) PauseKeyword(ctx context.Context, accountID, keywordID string) error {
	return c.setKeywordState(ctx, accountID, keywordID, models.KeywordStatusPaused)
}

func (c *Client) EnableKeyword(ctx context.Context, accountID, keywordID string) error {
	return c.setKeywordState(ctx, accountID, keywordID, models.KeywordStatusEnabled)
}

func (c *Client) setKeywordState(ctx context.Context, accountID, keywordID, state string) error {
	body := strings.NewReader(fmt.Sprintf(`{"state":%q}`, state))
	if err := c.do(ctx, accountID, http.MethodPut, "/v2/keywords/"+keywordID, body, nil); err != nil {
		return err
	}

	c.logger.Info().
		Str("account_id", accountID).
		Str("keyword_id", keywordID).
		Str("state", state).
		Msg("keyword state changed")
	return nil
}
