package auth

import (
	"context"
	"net/http"
	"strings"

	logger "github.com/sirupsen/logrus"

	"tradejournal/src/model"
)

type userLookup interface {
	GetUserByUserName(ctx context.Context, userName string) (*model.User, error)
}

// Middleware resolves the user named in header and stores it in the request
// context. Requests without a known user are rejected with 401.
func Middleware(users userLookup, header string) func(http.Handler) http.Handler {
	if header == "" {
		header = "X-User-Name"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userName := strings.TrimSpace(r.Header.Get(header))
			if userName == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := users.GetUserByUserName(r.Context(), userName)
			if err != nil {
				logger.WithError(err).WithField("user_name", userName).Error("failed to load user")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				logger.WithField("user_name", userName).Warn("unknown user in auth header")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
