package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/infrastructure/config"
	"github.com/iho/gowallet/internal/infrastructure/eventpublisher"
	"github.com/iho/gowallet/internal/infrastructure/metrics"
)

func memoryConfig() *config.Config {
	return &config.Config{
		StorageBackend:      config.BackendMemory,
		HTTPPort:            "0",
		HTTPReadTimeout:     time.Second,
		HTTPWriteTimeout:    time.Second,
		HTTPIdleTimeout:     time.Second,
		HTTPShutdownTimeout: time.Second,
		RateLimitRPS:        100,
		RateLimitBurst:      100,
		OutboxBatchSize:     10,
		OutboxInterval:      10 * time.Millisecond,
	}
}

func TestNewAppServesMemoryBackend(t *testing.T) {
	a, err := newApp(context.Background(), memoryConfig(), zerolog.Nop(), metrics.NewWithRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	t.Cleanup(a.close)

	srv := httptest.NewServer(a.handler)
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/api/v1/wallets", "application/json", strings.NewReader(`{"name":"Main","value":"10"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.NotNil(t, a.rateLimiter)
}

func TestNewPublisherFallsBackToLog(t *testing.T) {
	p, closeFn, err := newPublisher(memoryConfig(), zerolog.Nop())
	require.NoError(t, err)
	defer closeFn()

	_, ok := p.(*eventpublisher.LogPublisher)
	assert.True(t, ok, "expected log publisher without AMQP_URL, got %T", p)
}

func TestNewServerAppliesTimeouts(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPPort = "9090"

	srv := newServer(cfg, http.NotFoundHandler())

	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, time.Second, srv.IdleTimeout)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	go func() {
		a, err := newApp(ctx, memoryConfig(), zerolog.Nop(), m)
		if err != nil {
			done <- err
			return
		}
		defer a.close()
		done <- serve(ctx, memoryConfig(), zerolog.Nop(), a)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
