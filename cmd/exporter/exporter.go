package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	logger "github.com/sirupsen/logrus"

	"tradejournal/src/export"
	"tradejournal/src/journal"
	"tradejournal/src/model"
)

const (
	KindTrades = "trades"
	KindEquity = "equity"
)

var ErrUnknownUser = errors.New("unknown user")

type userLookup interface {
	GetUserByUserName(ctx context.Context, userName string) (*model.User, error)
}

type journalReader interface {
	Trades(ctx context.Context, userID uint, r journal.TimeRange) ([]journal.AnnotatedTrade, *model.Account, error)
	Equity(ctx context.Context, userID uint) ([]journal.EquityPoint, *model.Account, error)
}

// Exporter writes one user's trades or equity curve to a CSV file.
// Out "-" or empty writes to stdout.
type Exporter struct {
	Log      *logger.Entry
	Users    userLookup
	Journal  journalReader
	UserName string
	Kind     string
	Range    string
	Out      string

	stdout io.Writer
}

func (e *Exporter) Start(ctx context.Context) (err error) {
	if e.Kind != KindTrades && e.Kind != KindEquity {
		return fmt.Errorf("unsupported export kind %q", e.Kind)
	}
	rng, err := journal.ParseTimeRange(e.Range)
	if err != nil {
		return err
	}

	user, err := e.Users.GetUserByUserName(ctx, e.UserName)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: %s", ErrUnknownUser, e.UserName)
	}

	w, closeFn, err := e.output()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	switch e.Kind {
	case KindTrades:
		err = e.writeTrades(ctx, w, user.ID, rng)
	case KindEquity:
		err = e.writeEquity(ctx, w, user.ID)
	}
	if err != nil {
		return err
	}

	e.Log.WithFields(map[string]interface{}{
		"user": e.UserName,
		"kind": e.Kind,
		"out":  e.Out,
	}).Info("Export written")
	return nil
}

func (e *Exporter) output() (io.Writer, func() error, error) {
	if e.Out == "" || e.Out == "-" {
		if e.stdout != nil {
			return e.stdout, func() error { return nil }, nil
		}
		return os.Stdout, func() error { return nil }, nil
	}

	f, err := os.Create(e.Out)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func (e *Exporter) writeTrades(ctx context.Context, w io.Writer, userID uint, rng journal.TimeRange) error {
	annotated, account, err := e.Journal.Trades(ctx, userID, rng)
	if err != nil {
		return err
	}

	trades := make([]model.Trade, len(annotated))
	for i, t := range annotated {
		trades[i] = t.Trade
	}
	var acc model.Account
	if account != nil {
		acc = *account
	}
	return export.WriteTrades(w, trades, acc)
}

func (e *Exporter) writeEquity(ctx context.Context, w io.Writer, userID uint) error {
	points, account, err := e.Journal.Equity(ctx, userID)
	if err != nil {
		return err
	}

	var startingBalance float64
	if account != nil {
		startingBalance = account.StartingBalance
	}
	return export.WriteEquity(w, points, startingBalance)
}
