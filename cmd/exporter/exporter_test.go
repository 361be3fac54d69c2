package exporter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"tradejournal/src/journal"
	"tradejournal/src/model"
)

type fakeUsers struct{}

func (fakeUsers) GetUserByUserName(_ context.Context, userName string) (*model.User, error) {
	if userName == "alice" {
		return &model.User{ID: 1, UserName: "alice"}, nil
	}
	return nil, nil
}

type fakeJournal struct {
	gotRange journal.TimeRange
}

var exportDate = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

func (f *fakeJournal) Trades(_ context.Context, _ uint, r journal.TimeRange) ([]journal.AnnotatedTrade, *model.Account, error) {
	f.gotRange = r
	return []journal.AnnotatedTrade{{Trade: model.Trade{ID: 1, Date: exportDate, Result: "Win"}, PnL: 100}},
		&model.Account{StartingBalance: 10000}, nil
}

func (f *fakeJournal) Equity(context.Context, uint) ([]journal.EquityPoint, *model.Account, error) {
	return []journal.EquityPoint{{Date: exportDate}, {Date: exportDate, Value: 100}}, &model.Account{StartingBalance: 10000}, nil
}

func newExporter(kind, out string) (*Exporter, *fakeJournal, *bytes.Buffer) {
	fj := &fakeJournal{}
	buf := &bytes.Buffer{}
	return &Exporter{
		Log:      logrus.WithField("cmd", "export"),
		Users:    fakeUsers{},
		Journal:  fj,
		UserName: "alice",
		Kind:     kind,
		Range:    "this-month",
		Out:      out,
		stdout:   buf,
	}, fj, buf
}

func TestExportTradesToStdout(t *testing.T) {
	e, fj, buf := newExporter(KindTrades, "-")

	require.NoError(t, e.Start(context.Background()))
	require.Equal(t, journal.RangeThisMonth, fj.gotRange)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "id,date,session"))
	require.True(t, strings.HasSuffix(lines[1], ",100.00"))
}

func TestExportEquityToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "equity.csv")
	e, _, _ := newExporter(KindEquity, out)

	require.NoError(t, e.Start(context.Background()))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(raw), "2025-03-04T10:00:00Z,100.00,10100.00")
}

func TestExportValidation(t *testing.T) {
	e, _, _ := newExporter("positions", "-")
	require.Error(t, e.Start(context.Background()))

	e, _, _ = newExporter(KindTrades, "-")
	e.Range = "decade"
	require.ErrorIs(t, e.Start(context.Background()), journal.ErrUnknownTimeRange)

	e, _, _ = newExporter(KindTrades, "-")
	e.UserName = "bob"
	err := e.Start(context.Background())
	require.True(t, errors.Is(err, ErrUnknownUser))
}
