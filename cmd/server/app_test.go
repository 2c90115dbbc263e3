package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/coffre/internal/adapter/http/dto"
	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/infrastructure/auth"
	"github.com/iho/coffre/internal/infrastructure/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		StorageDriver:       config.StorageDriverMemory,
		BalanceCacheTTL:     5 * time.Minute,
		BalanceSingleFlight: true,
		RateLimitRPS:        0,
		IdempotencyTTL:      time.Hour,
		JWTExpiration:       time.Hour,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *app {
	t.Helper()

	registry := prometheus.NewRegistry()
	a, err := newApp(context.Background(), cfg, zerolog.Nop(), registry, registry)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func serve(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewAppMemoryDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.BalanceSnapshotReads = true
	a := newTestApp(t, cfg)

	rec := serve(t, a.handler, http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, a.handler, http.MethodPost, "/api/v1/vaults", "", dto.CreateVaultRequest{Name: "Front desk"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var vault dto.VaultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vault))
	assert.Len(t, vault.ID, 26, "ULID ids")

	rec = serve(t, a.handler, http.MethodPost, "/api/v1/vaults/"+vault.ID+"/movements", "", dto.RecordMovementRequest{Type: "ENTRY", Amount: "12.345"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(t, a.handler, http.MethodGet, "/api/v1/vaults/"+vault.ID+"/balance", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var balance dto.BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	assert.Equal(t, int64(1235), balance.BalanceCents)
	assert.Equal(t, 1, a.cache.Len())

	rec = serve(t, a.handler, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "coffre_balance_cache_requests_total"))
}

func TestNewAppWithAuthAndRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := memoryConfig()
	cfg.AuthEnabled = true
	cfg.JWTSecret = "secret"
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.RateLimitRPS = 100
	cfg.RateLimitBurst = 100
	a := newTestApp(t, cfg)

	rec := serve(t, a.handler, http.MethodGet, "/api/v1/vaults", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := auth.NewJWTManager("secret", time.Hour).Generate(&domain.User{ID: "root", Role: domain.RoleAdmin})
	require.NoError(t, err)

	rec = serve(t, a.handler, http.MethodPost, "/api/v1/vaults", token, dto.CreateVaultRequest{Name: "Safe"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var vault dto.VaultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vault))

	rec = serve(t, a.handler, http.MethodGet, "/api/v1/vaults/"+vault.ID+"/balance", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, mr.Exists("coffre:cache:balance:"+vault.ID), "balance written to the shared tier")

	rec = serve(t, a.handler, http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"ok"`)

	a.maintain()
}

func TestNewAppRejectsUnreachableRedis(t *testing.T) {
	cfg := memoryConfig()
	cfg.RedisURL = "redis://127.0.0.1:1"

	registry := prometheus.NewRegistry()
	_, err := newApp(context.Background(), cfg, zerolog.Nop(), registry, registry)
	require.Error(t, err)
}

func TestRunMaintenanceStopsWithContext(t *testing.T) {
	a := newTestApp(t, memoryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.runMaintenance(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("maintenance loop did not stop")
	}
}
