// Package session labels trades with the trading session they were taken in,
// using New York wall-clock hours.
package session

import (
	"strings"
	"time"

	"tradejournal/src/model"
)

const (
	asiaStartHour    = 20
	londonStartHour  = 3
	nyOpenStartHour  = 9
	nyCloseStartHour = 13
)

var nyLocation = loadNewYork()

func loadNewYork() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil
	}
	return loc
}

// getEasternTime falls back to UTC when tzdata is unavailable.
func getEasternTime(t time.Time) time.Time {
	if nyLocation == nil {
		return t.UTC()
	}
	return t.In(nyLocation)
}

// Detect returns the session label for a trade taken at t.
//
//	20:00-03:00 NY  Asia
//	03:00-09:00 NY  London
//	09:00-13:00 NY  NY Open
//	13:00-20:00 NY  NY Close
func Detect(t time.Time) string {
	h := getEasternTime(t).Hour()

	switch {
	case isAsiaSession(h):
		return model.SessionAsia
	case isLondonSession(h):
		return model.SessionLondon
	case isNYOpen(h):
		return model.SessionNYOpen
	default:
		return model.SessionNYClose
	}
}

// Normalize maps loose user input ("ny open", "LONDON", "asian") onto the
// canonical labels. Anything unrecognized is kept as typed.
func Normalize(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "asia", "asian", "tokyo":
		return model.SessionAsia
	case "london", "ldn", "uk":
		return model.SessionLondon
	case "ny open", "nyopen", "ny-open", "new york open":
		return model.SessionNYOpen
	case "ny close", "nyclose", "ny-close", "new york close":
		return model.SessionNYClose
	default:
		return strings.TrimSpace(label)
	}
}

// Resolve returns the normalized label, or the detected one when label is empty.
func Resolve(label string, at time.Time) string {
	if strings.TrimSpace(label) == "" {
		return Detect(at)
	}
	return Normalize(label)
}

func isAsiaSession(h int) bool {
	return h >= asiaStartHour || h < londonStartHour
}

func isLondonSession(h int) bool {
	return h >= londonStartHour && h < nyOpenStartHour
}

func isNYOpen(h int) bool {
	return h >= nyOpenStartHour && h < nyCloseStartHour
}
