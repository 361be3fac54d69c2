package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tradejournal/src/model"
)

type fakeTrades struct {
	byAccount map[uint][]model.Trade
	err       error
	calls     int
	afterList func()
}

func (f *fakeTrades) ListByAccount(_ context.Context, userID, accountID uint) ([]model.Trade, error) {
	f.calls++
	if f.afterList != nil {
		defer f.afterList()
	}
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Trade
	for _, t := range f.byAccount[accountID] {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

// replicaTrades serves ListByAccount from a lagging copy and
// ListByAccountPrimary from the up-to-date set.
type replicaTrades struct {
	*fakeTrades
	lagging      map[uint][]model.Trade
	primaryCalls int
}

func (r *replicaTrades) ListByAccount(_ context.Context, userID, accountID uint) ([]model.Trade, error) {
	var out []model.Trade
	for _, t := range r.lagging[accountID] {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *replicaTrades) ListByAccountPrimary(ctx context.Context, userID, accountID uint) ([]model.Trade, error) {
	r.primaryCalls++
	return r.fakeTrades.ListByAccount(ctx, userID, accountID)
}

type fakeAccounts struct {
	accounts  []model.Account
	updates   map[uint]map[string]interface{}
	updateErr error
}

func (f *fakeAccounts) ListByUser(_ context.Context, userID uint) ([]model.Account, error) {
	var out []model.Account
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccounts) ListAll(context.Context) ([]model.Account, error) {
	return append([]model.Account(nil), f.accounts...), nil
}

func (f *fakeAccounts) UpdateFields(_ context.Context, id uint, updates map[string]interface{}) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.updates == nil {
		f.updates = map[uint]map[string]interface{}{}
	}
	f.updates[id] = updates
	for i := range f.accounts {
		if f.accounts[i].ID == id {
			if v, ok := updates["current_balance"].(float64); ok {
				f.accounts[i].CurrentBalance = v
			}
		}
	}
	return nil
}

func (f *fakeAccounts) SetActive(_ context.Context, userID, accountID uint) error {
	found := false
	for i := range f.accounts {
		if f.accounts[i].UserID != userID {
			continue
		}
		f.accounts[i].IsActive = f.accounts[i].ID == accountID
		found = found || f.accounts[i].ID == accountID
	}
	if !found {
		return errors.New("record not found")
	}
	return nil
}

// fakeWriter stores trades in the same fakeTrades map the lister reads.
type fakeWriter struct {
	trades *fakeTrades
	nextID uint
}

func (f *fakeWriter) all() []*model.Trade {
	var out []*model.Trade
	for acc := range f.trades.byAccount {
		for i := range f.trades.byAccount[acc] {
			out = append(out, &f.trades.byAccount[acc][i])
		}
	}
	return out
}

func (f *fakeWriter) FindByID(_ context.Context, userID, id uint) (*model.Trade, error) {
	for _, t := range f.all() {
		if t.ID == id && t.UserID == userID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeWriter) FindByShareID(_ context.Context, shareID string) (*model.Trade, error) {
	for _, t := range f.all() {
		if t.ShareID != nil && *t.ShareID == shareID && t.IsPublic {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeWriter) Create(_ context.Context, trade *model.Trade) error {
	f.nextID++
	trade.ID = 1000 + f.nextID
	trade.CreatedAt = time.Now()
	f.trades.byAccount[trade.AccountID] = append(f.trades.byAccount[trade.AccountID], *trade)
	return nil
}

func (f *fakeWriter) Update(ctx context.Context, trade *model.Trade) error {
	if err := f.Delete(ctx, trade.UserID, trade.ID); err != nil {
		return err
	}
	f.trades.byAccount[trade.AccountID] = append(f.trades.byAccount[trade.AccountID], *trade)
	return nil
}

func (f *fakeWriter) Delete(_ context.Context, userID, id uint) error {
	for acc, trades := range f.trades.byAccount {
		for i, t := range trades {
			if t.ID == id && t.UserID == userID {
				f.trades.byAccount[acc] = append(trades[:i:i], trades[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("trade %d not found", id)
}

func (f *fakeWriter) SetShareID(_ context.Context, userID, id uint, shareID string) error {
	for _, t := range f.all() {
		if t.ID == id && t.UserID == userID {
			t.ShareID = &shareID
			t.IsPublic = true
			return nil
		}
	}
	return fmt.Errorf("trade %d not found", id)
}

type fakeCache struct {
	entries     map[string][]byte
	versions    map[uint]int64
	invalidated []uint
	loadErr     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}, versions: map[uint]int64{}}
}

func cacheKey(accountID uint, version int64, kind, disc string) string {
	return fmt.Sprintf("%d:v%d:%s:%s", accountID, version, kind, disc)
}

func (c *fakeCache) Load(_ context.Context, accountID uint, kind, disc string, dest interface{}) (int64, bool, error) {
	if c.loadErr != nil {
		return 0, false, c.loadErr
	}
	version := c.versions[accountID]
	raw, ok := c.entries[cacheKey(accountID, version, kind, disc)]
	if !ok {
		return version, false, nil
	}
	return version, true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Save(_ context.Context, accountID uint, version int64, kind, disc string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[cacheKey(accountID, version, kind, disc)] = raw
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, accountID uint) error {
	c.invalidated = append(c.invalidated, accountID)
	c.versions[accountID]++
	return nil
}

type fakeRecorder struct {
	captured []*model.Exception
}

func (r *fakeRecorder) Create(_ context.Context, exc *model.Exception) error {
	r.captured = append(r.captured, exc)
	return nil
}
