package handler

import (
	"context"
	"net/http"

	"tradejournal/src/balance"
	"tradejournal/src/model"
)

type accountManager interface {
	ActivateAccount(ctx context.Context, userID, accountID uint) (*model.Account, error)
	SyncActiveBalance(ctx context.Context, userID uint) (*model.Account, balance.Outcome, error)
}

func ActivateAccountHandler(svc accountManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		accountID, ok := parseIDParam(w, r, "accountID")
		if !ok {
			return
		}

		account, err := svc.ActivateAccount(r.Context(), user.ID, accountID)
		if err != nil {
			writeServiceError(w, err, "failed to activate account")
			return
		}

		writeJSON(w, http.StatusOK, account)
	}
}

type syncBalanceResponse struct {
	AccountID      uint            `json:"account_id"`
	CurrentBalance float64         `json:"current_balance"`
	Outcome        balance.Outcome `json:"outcome"`
}

// SyncBalanceHandler recomputes the active account's cached balance on demand.
func SyncBalanceHandler(svc accountManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		account, outcome, err := svc.SyncActiveBalance(r.Context(), user.ID)
		if err != nil {
			writeServiceError(w, err, "failed to sync balance")
			return
		}

		writeJSON(w, http.StatusOK, syncBalanceResponse{
			AccountID:      account.ID,
			CurrentBalance: account.CurrentBalance,
			Outcome:        outcome,
		})
	}
}
