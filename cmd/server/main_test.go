package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sbilibin2017/gw-user-registry/internal/config"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
	"github.com/sbilibin2017/gw-user-registry/internal/repositories"
	"github.com/sbilibin2017/gw-user-registry/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags resets the global flag.CommandLine to avoid "flag redefined" panic
func resetFlags() {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
}

func TestParseFlags_Default(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd"}
	assert.Equal(t, "config.env", parseFlags())
}

func TestParseFlags_Custom(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "-c", "myconfig.env"}
	assert.Equal(t, "myconfig.env", parseFlags())
}

func TestPrintBuildInfo_Output(t *testing.T) {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	buildVersion = "v1.0.0"
	buildCommit = "abcd1234"
	buildDate = "2025-09-26"

	printBuildInfo()

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	output := buf.String()
	assert.Contains(t, output, "Version: v1.0.0")
	assert.Contains(t, output, "Commit: abcd1234")
	assert.Contains(t, output, "Build: 2025-09-26")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	return &config.Config{
		AppHost:               "127.0.0.1",
		AppPort:               "0",
		LogLevel:              "debug",
		DataDir:               filepath.Join(dir, "data"),
		UsersFile:             "users.json",
		StatsFile:             "stats.json",
		UploadDir:             filepath.Join(dir, "uploads"),
		UploadMaxBytes:        1 << 20,
		BcryptCost:            4,
		PrimaryStore:          config.StoreFile,
		SecondaryStore:        config.StoreNone,
		SecondaryPingTimeout:  time.Second,
		MigrateConnectTimeout: time.Second,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	stores, err := openStores(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(stores.Close)

	statsFile, err := repositories.NewStatsFileRepository(cfg.StatsPath())
	require.NoError(t, err)
	photos, err := repositories.NewPhotoFileRepository(cfg.UploadDir, cfg.UploadMaxBytes)
	require.NoError(t, err)

	users := services.NewUserService(stores.primary, stores.secondary, statsFile, nil, nil, cfg.BcryptCost, cfg.SecondaryPingTimeout)
	stats := services.NewStatsService(statsFile, nil)

	srv := httptest.NewServer(newRouter(cfg, users, stats, photos))
	t.Cleanup(srv.Close)
	return srv
}

func TestRegistration_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	srv := newTestServer(t, cfg)

	payload := `{"name":"Jane Doe","email":"JANE@X.COM","password":"secret1","phone":"+15551234","termsAccepted":true}`

	resp, err := http.Post(srv.URL+"/api/users/register", "application/json", bytes.NewBufferString(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.RegisterResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "jane@x.com", created.Data.User.Email)
	assert.NotEmpty(t, created.Data.User.ID)
	assert.Equal(t, models.StatusActive, created.Data.User.Status)
	assert.Equal(t, "file-only", created.Data.Storage.Mode)

	again, err := http.Post(srv.URL+"/api/users/register", "application/json", bytes.NewBufferString(payload))
	require.NoError(t, err)
	again.Body.Close()
	assert.Equal(t, http.StatusConflict, again.StatusCode)

	var list models.UserListResponse
	getJSON(t, srv.URL+"/api/users", &list)
	assert.Equal(t, 1, list.Data.Pagination.Total)
	require.Len(t, list.Data.Users, 1)
	assert.Equal(t, created.Data.User.ID, list.Data.Users[0].ID)

	var one models.UserResponse
	getJSON(t, srv.URL+"/api/users/"+created.Data.User.ID, &one)
	assert.Equal(t, "Jane Doe", one.Data.Name)

	var stats models.StatsResponse
	getJSON(t, srv.URL+"/api/users/stats", &stats)
	assert.Equal(t, 1, stats.Data.TotalUsers)
	assert.Equal(t, 1, stats.Data.ActiveUsers)
	assert.Equal(t, 1, stats.Data.RegistrationsToday)

	var status models.StorageStatusResponse
	getJSON(t, srv.URL+"/api/storage/status", &status)
	assert.Equal(t, "file-only", status.Data.Mode)
	assert.True(t, status.Data.PrimaryAvailable)

	raw, err := os.ReadFile(cfg.UsersPath())
	require.NoError(t, err)
	var stored []models.User
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 1)
	assert.NotEqual(t, "secret1", stored[0].Password)
}

func TestGetUser_NotFound(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	resp, err := http.Get(srv.URL + "/api/users/does-not-exist")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRegistration_LongPassword(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	tests := []struct {
		name     string
		password string
	}{
		{name: "ascii over 72 characters", password: strings.Repeat("p", 100)},
		{name: "multi-byte over 72 bytes", password: strings.Repeat("é", 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(map[string]any{
				"name":          "Jane Doe",
				"email":         "jane@x.com",
				"password":      tt.password,
				"phone":         "+15551234",
				"termsAccepted": true,
			})
			require.NoError(t, err)

			resp, err := http.Post(srv.URL+"/api/users/register", "application/json", bytes.NewReader(payload))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestListUsers_HugePage(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	var list models.UserListResponse
	getJSON(t, srv.URL+"/api/users?page=1000000000000000000&limit=10", &list)

	assert.Empty(t, list.Data.Users)
	assert.Equal(t, 0, list.Data.Pagination.Total)
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, testConfig(t))
	}()

	select {
	case <-time.After(5 * time.Second):
		t.Fatal("test timed out")
	case err := <-errCh:
		assert.NoError(t, err)
	}
}
