package connectors

// REST CLIENT FOR THE SUPABASE (POSTGREST) JOURNAL TABLES
// RESTY ONLY + INTERNAL RETRY

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/model"
)

const (
	defaultRetryAttempts   = 5
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second

	defaultPageSize = 1000

	restPrefix = "/rest/v1"
)

var (
	ErrSupabaseStatus   = errors.New("supabase returned non-2xx status")
	ErrSupabaseNotFound = errors.New("supabase row not found")
)

// supabaseTrade mirrors the trades table. Supabase serves `date` either as a
// plain date or as a timestamp depending on the column type.
type supabaseTrade struct {
	ID             uint     `json:"id"`
	UserID         uint     `json:"user_id"`
	AccountID      uint     `json:"account_id"`
	Date           string   `json:"date"`
	Session        *string  `json:"session"`
	Symbol         *string  `json:"symbol"`
	Side           *string  `json:"side"`
	Result         string   `json:"result"`
	RR             *float64 `json:"rr"`
	RiskPercentage *float64 `json:"risk_percentage"`
	PnLDollar      *float64 `json:"pnl_dollar"`
	Notes          *string  `json:"notes"`
	ShareID        *string  `json:"share_id"`
	IsPublic       bool     `json:"is_public"`
	CreatedAt      string   `json:"created_at"`
}

type SupabaseClient struct {
	baseURL  string
	http     *resty.Client
	pageSize int
}

func NewSupabaseClient(baseURL, serviceKey string, timeout time.Duration) *SupabaseClient {
	retryCount := defaultRetryAttempts - 1

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		logger.Warn("No Supabase URL provided, requests will fail")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(baseURL+restPrefix).
		SetTimeout(timeout).
		SetHeader("apikey", serviceKey).
		SetAuthToken(serviceKey).
		SetHeader("Accept", "application/json").
		SetRetryCount(retryCount).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &SupabaseClient{
		baseURL:  baseURL,
		http:     httpClient,
		pageSize: defaultPageSize,
	}
}

func NewSupabaseClientFromConfig(cfg Config) *SupabaseClient {
	client := NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseTimeout)
	if cfg.SupabasePageSize > 0 {
		client.pageSize = cfg.SupabasePageSize
	}
	return client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}

	code := r.StatusCode()
	if code >= 500 && code <= 599 {
		return true
	}
	return code == 429 || code == 408
}

// ListByAccount returns the account's trades newest first, the same order the
// gorm repository uses.
func (c *SupabaseClient) ListByAccount(ctx context.Context, userID, accountID uint) ([]model.Trade, error) {
	rows, err := listAll[supabaseTrade](ctx, c, "ListByAccount", "/trades", map[string]string{
		"select":     "*",
		"user_id":    eq(userID),
		"account_id": eq(accountID),
		"order":      "date.desc,id.desc",
	})
	if err != nil {
		return nil, err
	}

	trades := make([]model.Trade, 0, len(rows))
	for _, row := range rows {
		trade, err := row.toModel()
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

// ListByUser returns the user's accounts, active account first.
func (c *SupabaseClient) ListByUser(ctx context.Context, userID uint) ([]model.Account, error) {
	return listAll[model.Account](ctx, c, "ListByUser", "/accounts", map[string]string{
		"select":  "*",
		"user_id": eq(userID),
		"order":   "is_active.desc,id.asc",
	})
}

func (c *SupabaseClient) ListAll(ctx context.Context) ([]model.Account, error) {
	return listAll[model.Account](ctx, c, "ListAll", "/accounts", map[string]string{
		"select": "*",
		"order":  "id.asc",
	})
}

// listAll pages through a PostgREST listing with limit/offset. The server may
// cap a page below the requested limit (max-rows), so the exact count from
// Content-Range decides when to stop; without one a short page ends the scan.
// params must carry a total order for the pages to be stable.
func listAll[T any](ctx context.Context, c *SupabaseClient, op, path string, params map[string]string) ([]T, error) {
	pageSize := c.pageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var all []T
	for offset := 0; ; {
		var page []T

		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetQueryParam("limit", strconv.Itoa(pageSize)).
			SetQueryParam("offset", strconv.Itoa(offset)).
			SetHeader("Prefer", "count=exact").
			SetResult(&page).
			Get(path)
		if err := checkResponse(op, resp, err); err != nil {
			return nil, err
		}

		all = append(all, page...)
		offset += len(page)

		if len(page) == 0 {
			break
		}
		if total, ok := contentRangeTotal(resp.Header().Get("Content-Range")); ok {
			if offset >= total {
				break
			}
			continue
		}
		if len(page) < pageSize {
			break
		}
	}

	if all == nil {
		all = []T{}
	}
	return all, nil
}

// contentRangeTotal reads N from "0-999/N". "*" means the count is unknown.
func contentRangeTotal(header string) (int, bool) {
	i := strings.LastIndexByte(header, '/')
	if i < 0 {
		return 0, false
	}
	total, err := strconv.Atoi(strings.TrimSpace(header[i+1:]))
	if err != nil {
		return 0, false
	}
	return total, true
}

// GetUserByUserName returns (nil, nil) for unknown users.
func (c *SupabaseClient) GetUserByUserName(ctx context.Context, userName string) (*model.User, error) {
	var users []model.User

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select":    "id,user_name,email",
			"user_name": "eq." + userName,
			"limit":     "1",
		}).
		SetResult(&users).
		Get("/users")
	if err := checkResponse("GetUserByUserName", resp, err); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// UpdateFields PATCHes one account row. PostgREST answers 200 with an empty
// array when no row matched.
func (c *SupabaseClient) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	var updated []model.Account

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", eq(id)).
		SetHeader("Prefer", "return=representation").
		SetHeader("Content-Type", "application/json").
		SetBody(updates).
		SetResult(&updated).
		Patch("/accounts")
	if err := checkResponse("UpdateFields", resp, err); err != nil {
		return err
	}
	if len(updated) == 0 {
		return fmt.Errorf("account %d: %w", id, ErrSupabaseNotFound)
	}
	return nil
}

func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"connector": "supabase",
			"op":        op,
		}).WithError(err).Error("Supabase request failed")
		return fmt.Errorf("supabase %s: %w", op, err)
	}
	if resp.IsError() {
		logger.WithFields(map[string]interface{}{
			"connector": "supabase",
			"op":        op,
			"status":    resp.StatusCode(),
		}).Error("Supabase request rejected")
		return fmt.Errorf("supabase %s: %w: %d %s", op, ErrSupabaseStatus, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}

func eq(id uint) string {
	return "eq." + strconv.FormatUint(uint64(id), 10)
}

func (t supabaseTrade) toModel() (model.Trade, error) {
	date, err := parseSupabaseTime(t.Date)
	if err != nil {
		return model.Trade{}, fmt.Errorf("trade %d: %w", t.ID, err)
	}

	trade := model.Trade{
		ID:             t.ID,
		UserID:         t.UserID,
		AccountID:      t.AccountID,
		Date:           date,
		Session:        deref(t.Session),
		Symbol:         deref(t.Symbol),
		Side:           deref(t.Side),
		Result:         t.Result,
		RR:             t.RR,
		RiskPercentage: t.RiskPercentage,
		PnLDollar:      t.PnLDollar,
		Notes:          deref(t.Notes),
		ShareID:        t.ShareID,
		IsPublic:       t.IsPublic,
	}
	if t.CreatedAt != "" {
		if created, err := parseSupabaseTime(t.CreatedAt); err == nil {
			trade.CreatedAt = created
		}
	}
	return trade, nil
}

var supabaseTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseSupabaseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range supabaseTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
