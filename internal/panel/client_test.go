package panel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(srv *httptest.Server) *Client {
	return NewClient(Config{
		Domain:      srv.URL,
		APIKey:      "ptla_test",
		DockerImage: "ghcr.io/parkervcp/yolks:nodejs_18",
		EggID:       15,
		NestID:      5,
		LocationID:  1,
	})
}

func writeObject(w http.ResponseWriter, object string, attrs any) {
	raw, _ := json.Marshal(attrs)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object":     object,
		"attributes": json.RawMessage(raw),
	})
}

func writeList(w http.ResponseWriter, object string, items ...any) {
	data := make([]map[string]any, 0, len(items))
	for _, it := range items {
		raw, _ := json.Marshal(it)
		data = append(data, map[string]any{"object": object, "attributes": json.RawMessage(raw)})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
}

func TestFindUserByUsername(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/application/users", r.URL.Path)
		require.Equal(t, "Bearer ptla_test", r.Header.Get("Authorization"))
		require.Equal(t, "Application/vnd.pterodactyl.v1+json", r.Header.Get("Accept"))
		require.Equal(t, "alice", r.URL.Query().Get("filter[username]"))
		require.Equal(t, "1", r.URL.Query().Get("per_page"))

		writeList(w, "user", userAttributes{ID: 7, Username: "alice", Email: "alice@gmail.com"})
	}))
	defer srv.Close()

	u, err := testClient(srv).FindUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, 7, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@gmail.com", u.Email)
}

func TestFindUserByUsernameAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeList(w, "user")
	}))
	defer srv.Close()

	u, err := testClient(srv).FindUserByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestFindUserByExternalID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "WH-9", r.URL.Query().Get("filter[external_id]"))
		writeList(w, "user", userAttributes{ID: 3, Username: "bob"})
	}))
	defer srv.Close()

	u, err := testClient(srv).FindUserByExternalID(context.Background(), "WH-9")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, 3, u.ID)
}

func TestCreateUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/application/users", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "en", body["language"])

		w.WriteHeader(http.StatusCreated)
		writeObject(w, "user", userAttributes{ID: 11, Username: "alice", Email: "alice@gmail.com"})
	}))
	defer srv.Close()

	u, err := testClient(srv).CreateUser(context.Background(), NewUser{
		Username:  "alice",
		Email:     "alice@gmail.com",
		FirstName: "Alice Server",
		LastName:  "Server",
		Password:  "alice1a2b",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, 11, u.ID)
}

func TestCreateUserConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":[{"detail":"The username has already been taken.","rule":"unique"}]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv).CreateUser(context.Background(), NewUser{Username: "alice"})
	require.ErrorIs(t, err, ErrConflict)
}

func TestFindServerByExternalIDDirect(t *testing.T) {
	var listCalled bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/application/servers/external/WH-1":
			writeObject(w, "server", serverAttributes{ID: 42, Identifier: "ab12cd34", Name: "Alice 1GB Server"})
		default:
			listCalled = true
			writeList(w, "server")
		}
	}))
	defer srv.Close()

	s, err := testClient(srv).FindServerByExternalID(context.Background(), "WH-1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 42, s.ID)
	assert.Equal(t, "ab12cd34", s.Identifier)
	assert.False(t, listCalled)
}

func TestFindServerByExternalIDNotFound(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s, err := testClient(srv).FindServerByExternalID(context.Background(), "WH-1")
	require.NoError(t, err)
	assert.Nil(t, s)
	// 404 is a definitive answer, no fallback query
	assert.Equal(t, 1, requests)
}

func TestFindServerByExternalIDFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/application/servers" {
			require.Equal(t, "WH-1", r.URL.Query().Get("filter[external_id]"))
			writeList(w, "server", serverAttributes{ID: 42, Identifier: "ab12cd34"})
			return
		}
		// the direct external-id endpoint is disabled on this install
		http.Error(w, `{"errors":[{"detail":"route not supported"}]}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	s, err := testClient(srv).FindServerByExternalID(context.Background(), "WH-1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 42, s.ID)
}

func TestFindServerByExternalIDFallbackAlsoFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/application/servers" {
			http.Error(w, `{"errors":[{"detail":"list broken"}]}`, http.StatusInternalServerError)
			return
		}
		http.Error(w, `{"errors":[{"detail":"direct broken"}]}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv).FindServerByExternalID(context.Background(), "WH-1")
	require.Error(t, err)

	// the original (direct endpoint) error is the one propagated
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Contains(t, apiErr.Body, "direct broken")
}

func TestGetEggStartup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/application/nests/5/eggs/15", r.URL.Path)
		writeObject(w, "egg", eggAttributes{ID: 15, Startup: "if [[ -d .git ]]; then git pull; fi; {{CMD_RUN}}"})
	}))
	defer srv.Close()

	startup, err := testClient(srv).GetEggStartup(context.Background())
	require.NoError(t, err)
	assert.Contains(t, startup, "{{CMD_RUN}}")
}

func TestCreateServerPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/application/servers", r.URL.Path)

		var body createServerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "WH-1", body.ExternalID)
		assert.Equal(t, "Alice 1GB Server", body.Name)
		assert.Equal(t, 7, body.User)
		assert.Equal(t, 15, body.Egg)
		assert.Equal(t, "ghcr.io/parkervcp/yolks:nodejs_18", body.DockerImage)
		assert.Equal(t, serverLimits{Memory: 1000, Swap: 0, Disk: 1000, IO: 500, CPU: 40}, body.Limits)
		assert.Equal(t, serverFeatureLimits{Databases: 5, Backups: 5, Allocations: 5}, body.FeatureLimits)
		assert.Equal(t, []int{1}, body.Deploy.Locations)
		assert.False(t, body.Deploy.DedicatedIP)
		assert.Equal(t, map[string]string{
			"INST": "npm", "USER_UPLOAD": "0", "AUTO_UPDATE": "0", "CMD_RUN": "npm start",
		}, body.Environment)

		w.WriteHeader(http.StatusCreated)
		writeObject(w, "server", serverAttributes{ID: 42, Identifier: "ab12cd34", Name: body.Name})
	}))
	defer srv.Close()

	s, err := testClient(srv).CreateServer(context.Background(), ServerSpec{
		ExternalID: "WH-1",
		Name:       "Alice 1GB Server",
		UserID:     7,
		Startup:    "npm start",
		Memory:     1000,
		Disk:       1000,
		CPU:        40,
	})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 42, s.ID)
}

func TestCreateServerEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s, err := testClient(srv).CreateServer(context.Background(), ServerSpec{ExternalID: "WH-1"})
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestRemoteErrorKeepsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"detail":"No allocations satisfying the requirements"}]}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := testClient(srv).CreateServer(context.Background(), ServerSpec{ExternalID: "WH-1"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Body, "No allocations")
}
