package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

var _ usecase.MetricsRecorder = (*Metrics)(nil)

func TestNewWithRegistererRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegisterer(registry)

	m.WalletCreated()
	m.HTTPRequests.WithLabelValues("GET", "/health", "200").Inc()

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRecorderMethods(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.WalletCreated()
	m.WalletCreated()
	m.ItemMutated(usecase.OpCreateWalletItem, domain.ItemTypeInflow, decimal.NewFromInt(100))
	m.ItemMutated(usecase.OpCreateWalletItem, domain.ItemTypeOutflow, decimal.RequireFromString("12.50"))
	m.MutationFailed(usecase.OpDeleteWalletItem, "not_found")
	m.BalanceMismatch("wallet-1")

	assert.InDelta(t, 2, testutil.ToFloat64(m.WalletsCreated), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ItemMutations.WithLabelValues(usecase.OpCreateWalletItem, "INFLOW")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ItemMutations.WithLabelValues(usecase.OpCreateWalletItem, "OUTFLOW")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.MutationFailures.WithLabelValues(usecase.OpDeleteWalletItem, "not_found")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.BalanceMismatches.WithLabelValues("wallet-1")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.ItemValue))
}
