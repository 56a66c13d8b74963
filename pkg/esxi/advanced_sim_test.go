package esxi

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvancedConfig_Simulator(t *testing.T) {
	m, _, ctx := newSimManager(t)
	scope := clusterScope()

	ret, err := m.SetAdvancedConfig(ctx, scope, "Annotations.WelcomeMessage", "testing")
	require.NoError(t, err)
	require.Len(t, ret, 2)
	for h := range ret {
		assert.Equal(t, "testing", ret[h]["Annotations.WelcomeMessage"])
	}

	ret, err = m.GetAdvancedConfig(ctx, scope, "Annotations.WelcomeMessage")
	require.NoError(t, err)
	for h := range ret {
		assert.Equal(t, "testing", ret[h]["Annotations.WelcomeMessage"])
	}

	ret, err = m.SetAdvancedConfigs(ctx, scope, map[string]any{
		"Annotations.WelcomeMessage": "test1",
		"BufferCache.FlushInterval":  3000,
	})
	require.NoError(t, err)
	for h := range ret {
		assert.Equal(t, "test1", ret[h]["Annotations.WelcomeMessage"])
		assert.Equal(t, int64(3000), ret[h]["BufferCache.FlushInterval"])
	}

	ret, err = m.GetAdvancedConfig(ctx, scope, "BufferCache.FlushInterval")
	require.NoError(t, err)
	for h := range ret {
		assert.Equal(t, int64(3000), ret[h]["BufferCache.FlushInterval"])
	}

	all, err := m.GetAdvancedConfig(ctx, scope, "")
	require.NoError(t, err)
	for h := range all {
		assert.Contains(t, all[h], "BufferCache.FlushInterval")
	}
}

func TestAdvancedConfig_InvalidName(t *testing.T) {
	m, _, ctx := newSimManager(t)

	_, err := m.SetAdvancedConfig(ctx, clusterScope(), "ENOENT.Option", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAPI))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "set_advanced_config", apiErr.Op)

	_, err = m.SetAdvancedConfig(ctx, clusterScope(), "", "x")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = m.SetAdvancedConfigs(ctx, clusterScope(), nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAdvancedConfig_MetricsPerOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	m, _, ctx := newSimManager(t, WithMetrics(metrics))

	_, err := m.SetAdvancedConfig(ctx, clusterScope(), "Annotations.WelcomeMessage", "single")
	require.NoError(t, err)
	_, err = m.SetAdvancedConfigs(ctx, clusterScope(), map[string]any{"Annotations.WelcomeMessage": "many"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("set_advanced_config", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("set_advanced_configs", "success")))
}

func TestOptionChanges(t *testing.T) {
	changes, err := optionChanges(map[string]any{
		"b.Long":   3000,
		"a.String": "x",
		"c.Int":    int16(7),
		"d.Bool":   true,
	})
	require.NoError(t, err)
	require.Len(t, changes, 4)

	got := map[string]any{}
	var order []string
	for _, c := range changes {
		ov := c.GetOptionValue()
		got[ov.Key] = ov.Value
		order = append(order, ov.Key)
	}
	assert.Equal(t, []string{"a.String", "b.Long", "c.Int", "d.Bool"}, order)
	assert.Equal(t, int64(3000), got["b.Long"])
	assert.Equal(t, int32(7), got["c.Int"])
	assert.Equal(t, "x", got["a.String"])
	assert.Equal(t, true, got["d.Bool"])

	_, err = optionChanges(map[string]any{" ": 1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
