package handler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"tradejournal/src/auth"
	"tradejournal/src/balance"
	"tradejournal/src/journal"
	"tradejournal/src/model"
	"tradejournal/src/service"
)

var handlerNow = time.Date(2025, time.March, 5, 15, 0, 0, 0, time.UTC)

type mockJournal struct {
	err error

	gotUserID  uint
	gotRange   journal.TimeRange
	gotMonth   time.Time
	gotTradeID uint
	created    *model.Trade
	changes    model.Trade

	stats    journal.TradeStats
	points   []journal.EquityPoint
	account  *model.Account
	days     []journal.DayPnL
	sessions []journal.SessionStats
	trades   []journal.AnnotatedTrade
	shared   *journal.AnnotatedTrade
}

func (m *mockJournal) Stats(_ context.Context, userID uint, r journal.TimeRange) (journal.TradeStats, error) {
	m.gotUserID, m.gotRange = userID, r
	return m.stats, m.err
}

func (m *mockJournal) Equity(_ context.Context, userID uint) ([]journal.EquityPoint, *model.Account, error) {
	m.gotUserID = userID
	return m.points, m.account, m.err
}

func (m *mockJournal) Calendar(_ context.Context, userID uint, month time.Time) ([]journal.DayPnL, error) {
	m.gotUserID, m.gotMonth = userID, month
	return m.days, m.err
}

func (m *mockJournal) Location() *time.Location { return time.UTC }

func (m *mockJournal) Now() time.Time { return handlerNow }

func (m *mockJournal) Sessions(_ context.Context, userID uint, r journal.TimeRange) ([]journal.SessionStats, error) {
	m.gotUserID, m.gotRange = userID, r
	return m.sessions, m.err
}

func (m *mockJournal) Trades(_ context.Context, userID uint, r journal.TimeRange) ([]journal.AnnotatedTrade, *model.Account, error) {
	m.gotUserID, m.gotRange = userID, r
	return m.trades, m.account, m.err
}

func (m *mockJournal) CreateTrade(_ context.Context, userID uint, trade *model.Trade) error {
	m.gotUserID = userID
	if m.err != nil {
		return m.err
	}
	trade.ID = 77
	m.created = trade
	return nil
}

func (m *mockJournal) UpdateTrade(_ context.Context, userID, tradeID uint, changes model.Trade) (*model.Trade, error) {
	m.gotUserID, m.gotTradeID, m.changes = userID, tradeID, changes
	if m.err != nil {
		return nil, m.err
	}
	changes.ID = tradeID
	return &changes, nil
}

func (m *mockJournal) DeleteTrade(_ context.Context, userID, tradeID uint) error {
	m.gotUserID, m.gotTradeID = userID, tradeID
	return m.err
}

func (m *mockJournal) ShareTrade(_ context.Context, userID, tradeID uint) (string, error) {
	m.gotUserID, m.gotTradeID = userID, tradeID
	return "4b7f0f5e-3c1d-4c55-9d0c-0a4c2b1e9f10", m.err
}

func (m *mockJournal) SharedTrade(_ context.Context, shareID string) (*journal.AnnotatedTrade, error) {
	return m.shared, m.err
}

func (m *mockJournal) ActivateAccount(_ context.Context, userID, accountID uint) (*model.Account, error) {
	m.gotUserID = userID
	if m.err != nil {
		return nil, m.err
	}
	return &model.Account{ID: accountID, UserID: userID, IsActive: true}, nil
}

func (m *mockJournal) SyncActiveBalance(_ context.Context, userID uint) (*model.Account, balance.Outcome, error) {
	m.gotUserID = userID
	if m.err != nil {
		return nil, balance.OutcomeFailed, m.err
	}
	return &model.Account{ID: 10, CurrentBalance: 10150}, balance.OutcomeWritten, nil
}

func newTestRouter(m *mockJournal) http.Handler {
	r := chi.NewRouter()
	r.Get("/stats", StatsHandler(m))
	r.Get("/equity", EquityHandler(m))
	r.Get("/calendar", CalendarHandler(m))
	r.Get("/sessions", SessionsHandler(m))
	r.Get("/trades", TradesHandler(m))
	r.Post("/trades", CreateTradeHandler(m))
	r.Put("/trades/{tradeID}", UpdateTradeHandler(m))
	r.Delete("/trades/{tradeID}", DeleteTradeHandler(m))
	r.Post("/trades/{tradeID}/share", ShareTradeHandler(m))
	r.Get("/public/trades/{shareID}", PublicTradeHandler(m))
	r.Post("/accounts/{accountID}/activate", ActivateAccountHandler(m))
	r.Post("/accounts/sync-balance", SyncBalanceHandler(m))
	r.Get("/export/trades.csv", ExportTradesCSVHandler(m))
	r.Get("/export/equity.csv", ExportEquityCSVHandler(m))
	return r
}

func serve(m *mockJournal, req *http.Request, userID uint) *httptest.ResponseRecorder {
	if userID != 0 {
		req = req.WithContext(context.WithValue(req.Context(), auth.UserKey, &model.User{ID: userID}))
	}
	rr := httptest.NewRecorder()
	newTestRouter(m).ServeHTTP(rr, req)
	return rr
}

func TestHandlersRequireUser(t *testing.T) {
	routes := []struct{ method, path string }{
		{http.MethodGet, "/stats"},
		{http.MethodGet, "/equity"},
		{http.MethodGet, "/calendar"},
		{http.MethodGet, "/sessions"},
		{http.MethodGet, "/trades"},
		{http.MethodPost, "/trades"},
		{http.MethodPut, "/trades/1"},
		{http.MethodDelete, "/trades/1"},
		{http.MethodPost, "/trades/1/share"},
		{http.MethodPost, "/accounts/1/activate"},
		{http.MethodPost, "/accounts/sync-balance"},
		{http.MethodGet, "/export/trades.csv"},
		{http.MethodGet, "/export/equity.csv"},
	}

	for _, route := range routes {
		rr := serve(&mockJournal{}, httptest.NewRequest(route.method, route.path, nil), 0)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected status 401, got %d", route.method, route.path, rr.Code)
		}
	}
}

func TestStatsHandler(t *testing.T) {
	m := &mockJournal{stats: journal.TradeStats{TotalTrades: 3, WinRate: 66.67, ProfitFactor: journal.Ratio(math.Inf(1))}}

	rr := serve(m, httptest.NewRequest(http.MethodGet, "/stats?range=this-week", nil), 42)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, uint(42), m.gotUserID)
	assert.Equal(t, journal.RangeThisWeek, m.gotRange)
	assert.Contains(t, rr.Body.String(), `"profit_factor":"Infinity"`)
	assert.Contains(t, rr.Body.String(), `"total_trades":3`)
}

func TestStatsHandlerDefaultsToAll(t *testing.T) {
	m := &mockJournal{}
	rr := serve(m, httptest.NewRequest(http.MethodGet, "/stats", nil), 1)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, journal.RangeAll, m.gotRange)
}

func TestRangedHandlersRejectUnknownRange(t *testing.T) {
	for _, path := range []string{"/stats", "/sessions", "/trades", "/export/trades.csv"} {
		rr := serve(&mockJournal{}, httptest.NewRequest(http.MethodGet, path+"?range=fortnight", nil), 1)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400, got %d", path, rr.Code)
		}
	}
}

func TestStatsHandlerServiceError(t *testing.T) {
	rr := serve(&mockJournal{err: assert.AnError}, httptest.NewRequest(http.MethodGet, "/stats", nil), 1)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestEquityHandler(t *testing.T) {
	m := &mockJournal{
		points:  []journal.EquityPoint{{Date: handlerNow, Value: 0}, {Date: handlerNow, Value: 200}},
		account: &model.Account{ID: 10, StartingBalance: 10000},
	}

	rr := serve(m, httptest.NewRequest(http.MethodGet, "/equity", nil), 1)
	assert.Equal(t, http.StatusOK, rr.Code)

	var body equityResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	assert.Equal(t, 10000.0, body.StartingBalance)
	assert.Len(t, body.Points, 2)
	assert.Equal(t, 200.0, body.Points[1].Value)
}

func TestCalendarHandler(t *testing.T) {
	m := &mockJournal{days: []journal.DayPnL{{Day: "2025-02-01", PnL: 100}, {Day: "2025-02-02", PnL: -40}}}

	rr := serve(m, httptest.NewRequest(http.MethodGet, "/calendar?month=2025-02", nil), 1)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), m.gotMonth)

	var body calendarResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	assert.Equal(t, "2025-02", body.Month)
	assert.Equal(t, 60.0, body.PnL)

	rr = serve(m, httptest.NewRequest(http.MethodGet, "/calendar", nil), 1)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, handlerNow, m.gotMonth)

	rr = serve(m, httptest.NewRequest(http.MethodGet, "/calendar?month=02-2025", nil), 1)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateTradeHandler(t *testing.T) {
	m := &mockJournal{}
	body := `{"date":"2025-03-05T14:30:00Z","symbol":"eurusd","side":"buy","result":"win","rr":2}`

	rr := serve(m, httptest.NewRequest(http.MethodPost, "/trades", strings.NewReader(body)), 5)

	assert.Equal(t, http.StatusCreated, rr.Code)
	if m.created == nil {
		t.Fatalf("expected trade to be created")
	}
	assert.Equal(t, uint(5), m.gotUserID)
	assert.Equal(t, "Win", m.created.Result)
	assert.Equal(t, "BUY", m.created.Side)
	assert.Equal(t, 2.0, *m.created.RR)
	assert.Contains(t, rr.Body.String(), `"id":77`)
}

func TestCreateTradeHandlerRejectsBadPayloads(t *testing.T) {
	bodies := []string{
		`not json`,
		`{"date":"2025-03-05T14:30:00Z","result":"win","unknown":1}`,
		`{"result":"win"}`,
		`{"date":"2025-03-05T14:30:00Z","result":"scratch"}`,
		`{"date":"2025-03-05T14:30:00Z","result":"loss","risk_percentage":0}`,
	}

	for _, body := range bodies {
		m := &mockJournal{}
		rr := serve(m, httptest.NewRequest(http.MethodPost, "/trades", strings.NewReader(body)), 1)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected status 400, got %d", body, rr.Code)
		}
		assert.Nil(t, m.created)
	}
}

func TestCreateTradeHandlerReadOnlyStore(t *testing.T) {
	m := &mockJournal{err: service.ErrReadOnlyStore}
	body := `{"date":"2025-03-05T14:30:00Z","result":"win"}`

	rr := serve(m, httptest.NewRequest(http.MethodPost, "/trades", strings.NewReader(body)), 1)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestUpdateTradeHandler(t *testing.T) {
	m := &mockJournal{}
	body := `{"date":"2025-03-04T10:00:00Z","result":"breakeven","notes":" moved stop "}`

	rr := serve(m, httptest.NewRequest(http.MethodPut, "/trades/12", strings.NewReader(body)), 3)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, uint(12), m.gotTradeID)
	assert.Equal(t, "Breakeven", m.changes.Result)
	assert.Equal(t, "moved stop", m.changes.Notes)
}

func TestUpdateTradeHandlerNotFound(t *testing.T) {
	m := &mockJournal{err: service.ErrTradeNotFound}
	body := `{"date":"2025-03-04T10:00:00Z","result":"win"}`

	rr := serve(m, httptest.NewRequest(http.MethodPut, "/trades/12", strings.NewReader(body)), 3)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTradeIDMustBeNumeric(t *testing.T) {
	rr := serve(&mockJournal{}, httptest.NewRequest(http.MethodDelete, "/trades/abc", nil), 1)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(&mockJournal{}, httptest.NewRequest(http.MethodDelete, "/trades/0", nil), 1)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteTradeHandler(t *testing.T) {
	m := &mockJournal{}
	rr := serve(m, httptest.NewRequest(http.MethodDelete, "/trades/9", nil), 1)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, uint(9), m.gotTradeID)
}

func TestShareAndPublicTradeHandlers(t *testing.T) {
	m := &mockJournal{shared: &journal.AnnotatedTrade{Trade: model.Trade{ID: 9, Result: "Win"}, PnL: 150, RMultiple: 1.5}}

	rr := serve(m, httptest.NewRequest(http.MethodPost, "/trades/9/share", nil), 1)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"share_id":"4b7f0f5e-3c1d-4c55-9d0c-0a4c2b1e9f10"`)

	// public route needs no user
	rr = serve(m, httptest.NewRequest(http.MethodGet, "/public/trades/4b7f0f5e-3c1d-4c55-9d0c-0a4c2b1e9f10", nil), 0)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"pnl":150`)
	assert.Contains(t, rr.Body.String(), `"r_multiple":1.5`)

	m.err = service.ErrTradeNotFound
	rr = serve(m, httptest.NewRequest(http.MethodGet, "/public/trades/unknown", nil), 0)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAccountHandlers(t *testing.T) {
	m := &mockJournal{}

	rr := serve(m, httptest.NewRequest(http.MethodPost, "/accounts/11/activate", nil), 1)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"is_active":true`)

	rr = serve(m, httptest.NewRequest(http.MethodPost, "/accounts/sync-balance", nil), 1)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"outcome":"written"`)

	m.err = service.ErrNoActiveAccount
	rr = serve(m, httptest.NewRequest(http.MethodPost, "/accounts/sync-balance", nil), 1)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestExportHandlers(t *testing.T) {
	m := &mockJournal{
		account: &model.Account{ID: 10, StartingBalance: 1000},
		trades: []journal.AnnotatedTrade{
			{Trade: model.Trade{ID: 1, Date: handlerNow, Result: "Loss"}, PnL: -10},
		},
		points: []journal.EquityPoint{{Date: handlerNow, Value: 0}, {Date: handlerNow, Value: -10}},
	}

	rr := serve(m, httptest.NewRequest(http.MethodGet, "/export/trades.csv?range=today", nil), 1)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	assert.Len(t, records, 2)
	assert.Equal(t, "-10.00", records[1][9])

	rr = serve(m, httptest.NewRequest(http.MethodGet, "/export/equity.csv", nil), 1)
	assert.Equal(t, http.StatusOK, rr.Code)
	records, err = csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	assert.Equal(t, []string{"date", "value", "balance"}, records[0])
	assert.Equal(t, "990.00", records[2][2])
}
