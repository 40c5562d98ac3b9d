package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/klokku/timesheet/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*mux.Router, user.User) {
	repo := user.NewStubUserRepository()
	service := user.NewUserService(repo)
	created, err := service.CreateUser(context.Background(), user.User{Username: "ana", DisplayName: "Ana"})
	require.NoError(t, err)

	r := mux.NewRouter()
	r.Use(userContext(service))
	r.HandleFunc("/api/whoami", func(w http.ResponseWriter, req *http.Request) {
		current, err := user.CurrentUser(req.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(current.Username))
	})
	return r, created
}

func TestUserContext(t *testing.T) {
	r, created := setupRouter(t)

	t.Run("should put known user into context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
		req.Header.Set("X-User-Id", created.Uid)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ana", w.Body.String())
	})

	t.Run("should forbid unknown user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
		req.Header.Set("X-User-Id", "00000000-0000-0000-0000-000000000000")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("should pass request without user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
