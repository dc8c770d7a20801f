package e2e

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/you/storefront/internal/app"
	"github.com/you/storefront/internal/infrastructure/tokenstore"
	testconfig "github.com/you/storefront/internal/tests/config"
)

// TestServer is the reference API served over HTTP, with its own Redis
type TestServer struct {
	Server  *httptest.Server
	Stub    *app.Stub
	Redis   *miniredis.Miniredis
	BaseURL string
}

// NewTestServer starts a seeded reference API
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := testconfig.LoadStubConfig(t, mr.Addr())

	stub, err := app.NewStub(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stub.Close() })

	srv := httptest.NewServer(stub.Router)
	t.Cleanup(srv.Close)

	return &TestServer{Server: srv, Stub: stub, Redis: mr, BaseURL: srv.URL + "/api"}
}

// Device stands for one browser: page loads on it share storage
type Device struct {
	t       *testing.T
	server  *TestServer
	backend tokenstore.Backend
}

// NewDevice creates a device with empty storage
func (s *TestServer) NewDevice(t *testing.T) *Device {
	return &Device{t: t, server: s, backend: tokenstore.NewMemoryBackend()}
}

// Open is a page load: a fresh client whose session is bootstrapped from
// the device storage
func (d *Device) Open() *app.Container {
	d.t.Helper()

	shop, err := app.NewContainer(testconfig.ClientConfig(d.server.BaseURL), zap.NewNop(), app.WithBackend(d.backend))
	require.NoError(d.t, err)
	d.t.Cleanup(func() { shop.Close() })

	shop.Start(context.Background())
	return shop
}
