package account_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-auth-client/account"
	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/jrsteele09/go-auth-client/authclient"
	"github.com/jrsteele09/go-auth-client/tokenstore"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success   bool              `json:"success"`
	Data      any               `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
	ErrorCode string            `json:"error_code,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

type testFixture struct {
	service *account.Service
	user    map[string]any
}

func setupTestFixture(t *testing.T, register func(mux *http.ServeMux, f *testFixture)) *testFixture {
	t.Helper()

	f := &testFixture{
		user: map[string]any{
			"id":           "user-1",
			"email":        "john.doe@example.com",
			"display_name": "John Doe",
			"role":         "member",
			"verified":     true,
			"has_password": true,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: f.user})
	})
	if register != nil {
		register(mux, f)
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	tokens, err := tokenstore.NewManager()
	require.NoError(t, err)
	client, err := authclient.New(server.URL, tokens, authclient.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	service, err := account.NewService(client)
	require.NoError(t, err)
	f.service = service
	return f
}

func TestCurrentUser(t *testing.T) {
	f := setupTestFixture(t, nil)

	user, err := f.service.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
	require.Equal(t, "john.doe@example.com", user.Email)
	require.True(t, user.HasPassword)
}

func TestUpdateRefetchesSnapshot(t *testing.T) {
	f := setupTestFixture(t, func(mux *http.ServeMux, f *testFixture) {
		mux.HandleFunc("PATCH /me", func(w http.ResponseWriter, r *http.Request) {
			var patch authapi.UserPatch
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
			require.NotNil(t, patch.DisplayName)
			f.user["display_name"] = *patch.DisplayName
			writeEnvelope(w, http.StatusOK, envelope{Success: true})
		})
	})

	name := "New Name"
	user, err := f.service.Update(context.Background(), &authapi.UserPatch{DisplayName: &name})
	require.NoError(t, err)
	require.Equal(t, "New Name", user.DisplayName)
}

func TestRegisterConflict(t *testing.T) {
	f := setupTestFixture(t, func(mux *http.ServeMux, f *testFixture) {
		mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusConflict, envelope{Success: false, ErrorCode: authapi.CodeConflict, Error: "email already registered"})
		})
	})

	_, err := f.service.Register(context.Background(), "john.doe@example.com", "password123", "John Doe")
	require.Error(t, err)
	require.True(t, authapi.IsConflict(err))
}

func TestChangePasswordValidationError(t *testing.T) {
	f := setupTestFixture(t, func(mux *http.ServeMux, f *testFixture) {
		mux.HandleFunc("POST /password/change", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusBadRequest, envelope{
				Success:   false,
				ErrorCode: authapi.CodeValidation,
				Error:     "validation failed",
				Details:   map[string]string{"new_password": "too short"},
			})
		})
	})

	err := f.service.ChangePassword(context.Background(), "password123", "x")
	require.Error(t, err)
	require.True(t, authapi.IsValidationError(err))

	var apiErr *authapi.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "too short", apiErr.Details["new_password"])
}

func TestUnlinkGoogleRefetchesSnapshot(t *testing.T) {
	f := setupTestFixture(t, func(mux *http.ServeMux, f *testFixture) {
		f.user["providers"] = []string{"google"}
		mux.HandleFunc("DELETE /oauth/google/unlink", func(w http.ResponseWriter, r *http.Request) {
			delete(f.user, "providers")
			writeEnvelope(w, http.StatusOK, envelope{Success: true})
		})
	})

	user, err := f.service.UnlinkGoogle(context.Background())
	require.NoError(t, err)
	require.Empty(t, user.Providers)
}
