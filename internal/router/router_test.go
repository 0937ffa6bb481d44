package router

import (
	"testing"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/config"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeSet(t *testing.T) map[string]bool {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test-secret",
		ReceiptStoragePath: t.TempDir(),
	}
	r := New(cfg, nil, nil, Deps{Hub: notify.NewHub()})

	out := make(map[string]bool)
	for _, route := range r.Routes() {
		out[route.Method+" "+route.Path] = true
	}
	return out
}

func TestRoutes_TransactionLifecycleUsesPatch(t *testing.T) {
	routes := routeSet(t)

	for _, want := range []string{
		"PATCH /v1/transactions/:id/confirm",
		"PATCH /v1/transactions/:id/complete",
		"PATCH /v1/transactions/:id/cancel",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
	assert.False(t, routes["POST /v1/transactions/:id/complete"])
}

func TestRoutes_ReceiptDownloadRegistered(t *testing.T) {
	routes := routeSet(t)
	assert.True(t, routes["GET /v1/transactions/:id/receipt"])
}

func TestRoutes_DashboardPaths(t *testing.T) {
	routes := routeSet(t)
	require.True(t, routes["GET /v1/dashboard/stats"])
	require.True(t, routes["GET /v1/dashboard/low-stock-alerts"])
	assert.False(t, routes["GET /v1/dashboard"])
}
