package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"tradejournal/src/model"
)

type mockUserLookup struct {
	users map[string]*model.User
	err   error
}

func (m *mockUserLookup) GetUserByUserName(_ context.Context, userName string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users[userName], nil
}

func protected(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUserFromContext(r.Context())
		if !ok || user == nil {
			t.Fatalf("expected user in context")
		}
		_, _ = w.Write([]byte(user.UserName))
	})
}

func TestMiddleware(t *testing.T) {
	lookup := &mockUserLookup{users: map[string]*model.User{"alice": {ID: 1, UserName: "alice"}}}
	handler := Middleware(lookup, "X-User-Name")(protected(t))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"unknown user", "mallory", http.StatusUnauthorized},
		{"known user", "alice", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			if tt.header != "" {
				req.Header.Set("X-User-Name", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestMiddlewareLookupError(t *testing.T) {
	handler := Middleware(&mockUserLookup{err: assert.AnError}, "")(protected(t))

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("X-User-Name", "alice")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
