package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/journal"
	"tradejournal/src/model"
)

type tradeWriter interface {
	CreateTrade(ctx context.Context, userID uint, trade *model.Trade) error
	UpdateTrade(ctx context.Context, userID, tradeID uint, changes model.Trade) (*model.Trade, error)
	DeleteTrade(ctx context.Context, userID, tradeID uint) error
}

type tradeSharer interface {
	ShareTrade(ctx context.Context, userID, tradeID uint) (string, error)
	SharedTrade(ctx context.Context, shareID string) (*journal.AnnotatedTrade, error)
}

func decodeTradePayload(w http.ResponseWriter, r *http.Request) (*model.TradePayload, bool) {
	var payload model.TradePayload
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		logger.WithError(err).Warn("invalid trade payload")
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return nil, false
	}
	if err := payload.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return &payload, true
}

func CreateTradeHandler(svc tradeWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		payload, ok := decodeTradePayload(w, r)
		if !ok {
			return
		}

		trade := payload.ToTrade()
		if err := svc.CreateTrade(r.Context(), user.ID, &trade); err != nil {
			writeServiceError(w, err, "failed to create trade")
			return
		}

		writeJSON(w, http.StatusCreated, trade)
	}
}

func UpdateTradeHandler(svc tradeWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		tradeID, ok := parseIDParam(w, r, "tradeID")
		if !ok {
			return
		}
		payload, ok := decodeTradePayload(w, r)
		if !ok {
			return
		}

		trade, err := svc.UpdateTrade(r.Context(), user.ID, tradeID, payload.ToTrade())
		if err != nil {
			writeServiceError(w, err, "failed to update trade")
			return
		}

		writeJSON(w, http.StatusOK, trade)
	}
}

func DeleteTradeHandler(svc tradeWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		tradeID, ok := parseIDParam(w, r, "tradeID")
		if !ok {
			return
		}

		if err := svc.DeleteTrade(r.Context(), user.ID, tradeID); err != nil {
			writeServiceError(w, err, "failed to delete trade")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type shareResponse struct {
	ShareID string `json:"share_id"`
}

func ShareTradeHandler(svc tradeSharer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		tradeID, ok := parseIDParam(w, r, "tradeID")
		if !ok {
			return
		}

		shareID, err := svc.ShareTrade(r.Context(), user.ID, tradeID)
		if err != nil {
			writeServiceError(w, err, "failed to share trade")
			return
		}

		writeJSON(w, http.StatusOK, shareResponse{ShareID: shareID})
	}
}

// PublicTradeHandler serves a shared trade without authentication.
func PublicTradeHandler(svc tradeSharer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trade, err := svc.SharedTrade(r.Context(), chi.URLParam(r, "shareID"))
		if err != nil {
			writeServiceError(w, err, "failed to load shared trade")
			return
		}

		writeJSON(w, http.StatusOK, trade)
	}
}
