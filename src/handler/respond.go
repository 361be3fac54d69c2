package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/auth"
	"tradejournal/src/journal"
	"tradejournal/src/model"
	"tradejournal/src/service"
)

func currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok || user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

func parseRange(w http.ResponseWriter, r *http.Request) (journal.TimeRange, bool) {
	rng, err := journal.ParseTimeRange(r.URL.Query().Get("range"))
	if err != nil {
		http.Error(w, "invalid range", http.StatusBadRequest)
		return "", false
	}
	return rng, true
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

// writeServiceError maps service errors onto status codes and logs the rest.
func writeServiceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrTradeNotFound):
		http.Error(w, "trade not found", http.StatusNotFound)
	case errors.Is(err, service.ErrAccountNotFound):
		http.Error(w, "account not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNoActiveAccount):
		http.Error(w, "no active account", http.StatusNotFound)
	case errors.Is(err, service.ErrReadOnlyStore):
		http.Error(w, "store is read-only", http.StatusMethodNotAllowed)
	default:
		logger.WithError(err).Error(msg)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
