package app

import (
	"context"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/painel-economico/indicadores-server/internal/config"
	"github.com/painel-economico/indicadores-server/internal/refresh"
	"github.com/painel-economico/indicadores-server/internal/service"
	mocksvc "github.com/painel-economico/indicadores-server/internal/service/mocks"
	"github.com/painel-economico/indicadores-server/internal/session"
	"github.com/painel-economico/indicadores-server/internal/store"
)

// mockRefreshCoordinator implements the refresh.Coordinator interface for testing
type mockRefreshCoordinator struct {
	mu          sync.Mutex
	startCalled bool
	stopCalled  bool
	startErr    error
	stopErr     error
	startDelay  time.Duration
}

func (m *mockRefreshCoordinator) Start(ctx context.Context) error {
	m.mu.Lock()
	m.startCalled = true
	delay := m.startDelay
	err := m.startErr
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

func (m *mockRefreshCoordinator) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalled = true
	return m.stopErr
}

func (m *mockRefreshCoordinator) wasStartCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startCalled
}

func (m *mockRefreshCoordinator) wasStopCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalled
}

// createTestApp creates an IndicadoresApp with mocked components for testing
// This directly constructs the IndicadoresApp without using NewIndicadoresApp
// to avoid hitting the real provider catalog
func createTestApp(t *testing.T, ctrl *gomock.Controller, addr string) *IndicadoresApp {
	t.Helper()

	mockSvc := mocksvc.NewMockService(ctrl)
	mockSvc.EXPECT().Status(gomock.Any()).Return(service.StatusJSON{}).AnyTimes()
	mockCoord := &mockRefreshCoordinator{}

	cfg := createTestAppConfig()

	ctx := context.Background()
	appCtx, cancel := context.WithCancel(ctx)

	// Build the HTTP server with test configuration
	appCfg := &indicadoresAppConfig{
		config:         cfg,
		address:        addr,
		sessions:       session.Disabled(),
		requestTimeout: 10 * time.Second,
		readTimeout:    10 * time.Second,
		writeTimeout:   15 * time.Second,
		idleTimeout:    60 * time.Second,
	}

	server, err := buildHTTPServer(ctx, appCfg, mockSvc)
	require.NoError(t, err)

	return &IndicadoresApp{
		config: cfg,
		components: &AppComponents{
			RefreshCoordinator: mockCoord,
			Sessions:           session.Disabled(),
			Service:            mockSvc,
			Store:              store.NewMemoryStore(),
		},
		httpServer: server,
		ctx:        appCtx,
		cancelFunc: cancel,
	}
}

// createTestAppConfig creates a minimal valid config for testing
func createTestAppConfig() *config.Config {
	return &config.Config{
		Server: &config.ServerConfig{
			Address: ":8080",
		},
		Storage: &config.StorageConfig{
			Type: config.StorageTypeMemory,
		},
		Cache: &config.CacheConfig{
			TTL: "1h",
		},
	}
}

func TestIndicadoresApp_Start(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setupApp   func(*testing.T, *gomock.Controller) *IndicadoresApp
		wantErr    bool
		errContain string
	}{
		{
			name: "successful start with ephemeral port",
			setupApp: func(t *testing.T, ctrl *gomock.Controller) *IndicadoresApp {
				t.Helper()
				return createTestApp(t, ctrl, ":0")
			},
			wantErr: false,
		},
		{
			name: "successful start on localhost",
			setupApp: func(t *testing.T, ctrl *gomock.Controller) *IndicadoresApp {
				t.Helper()
				return createTestApp(t, ctrl, "127.0.0.1:0")
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			app := tt.setupApp(t, ctrl)

			// Start server in goroutine
			errChan := make(chan error, 1)
			go func() {
				errChan <- app.Start()
			}()

			// Wait for server to start
			time.Sleep(100 * time.Millisecond)

			// Verify server is listening
			if !tt.wantErr {
				// Get the actual address the server is listening on
				addr := app.httpServer.Addr
				if addr == ":0" || addr == "127.0.0.1:0" {
					// For ephemeral ports, we need to check differently
					// The server should be running
					mockCoord := app.components.RefreshCoordinator.(*mockRefreshCoordinator)
					assert.True(t, mockCoord.wasStartCalled(), "refresh coordinator should be started")
				}
			}

			// Stop the server
			err := app.Stop(5 * time.Second)
			require.NoError(t, err)

			// Check Start() result
			select {
			case startErr := <-errChan:
				if tt.wantErr {
					require.Error(t, startErr)
					if tt.errContain != "" {
						assert.Contains(t, startErr.Error(), tt.errContain)
					}
				} else {
					require.NoError(t, startErr)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("Start() did not return after Stop()")
			}
		})
	}
}

func TestIndicadoresApp_StartWithListener(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app := createTestApp(t, ctrl, ":0")

	// Create a listener to get an actual port
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	actualAddr := listener.Addr().String()
	listener.Close()

	// Update the server address to use the now-free port
	app.httpServer.Addr = actualAddr

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	// Wait for server to start
	time.Sleep(100 * time.Millisecond)

	// Make a health check request
	resp, err := http.Get("http://" + actualAddr + "/health")
	if err == nil {
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// Verify refresh coordinator was started
	mockCoord := app.components.RefreshCoordinator.(*mockRefreshCoordinator)
	assert.True(t, mockCoord.wasStartCalled(), "refresh coordinator should be started")

	// Stop the server
	err = app.Stop(5 * time.Second)
	require.NoError(t, err)

	// Wait for Start() to return
	select {
	case startErr := <-errChan:
		require.NoError(t, startErr)
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after Stop()")
	}
}

func TestIndicadoresApp_StartWithoutRefreshCoordinator(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app := createTestApp(t, ctrl, ":0")

	// Builder leaves the coordinator nil when background refresh is disabled
	app.components.RefreshCoordinator = nil

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	time.Sleep(100 * time.Millisecond)

	err := app.Stop(5 * time.Second)
	require.NoError(t, err)

	select {
	case startErr := <-errChan:
		require.NoError(t, startErr)
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after Stop()")
	}
}

func TestIndicadoresApp_Stop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		timeout  time.Duration
		setupApp func(*testing.T, *gomock.Controller) *IndicadoresApp
		wantErr  bool
		verifyFn func(*testing.T, *IndicadoresApp)
	}{
		{
			name:    "graceful shutdown with normal timeout",
			timeout: 5 * time.Second,
			setupApp: func(t *testing.T, ctrl *gomock.Controller) *IndicadoresApp {
				t.Helper()
				return createTestApp(t, ctrl, ":0")
			},
			wantErr: false,
			verifyFn: func(t *testing.T, app *IndicadoresApp) {
				t.Helper()
				mockCoord := app.components.RefreshCoordinator.(*mockRefreshCoordinator)
				assert.True(t, mockCoord.wasStopCalled(), "refresh coordinator Stop should be called")
			},
		},
		{
			name:    "graceful shutdown with short timeout",
			timeout: 1 * time.Second,
			setupApp: func(t *testing.T, ctrl *gomock.Controller) *IndicadoresApp {
				t.Helper()
				return createTestApp(t, ctrl, ":0")
			},
			wantErr: false,
			verifyFn: func(t *testing.T, app *IndicadoresApp) {
				t.Helper()
				mockCoord := app.components.RefreshCoordinator.(*mockRefreshCoordinator)
				assert.True(t, mockCoord.wasStopCalled(), "refresh coordinator Stop should be called")
			},
		},
		{
			name:    "stop without starting first",
			timeout: 5 * time.Second,
			setupApp: func(t *testing.T, ctrl *gomock.Controller) *IndicadoresApp {
				t.Helper()
				return createTestApp(t, ctrl, ":0")
			},
			wantErr: false,
			verifyFn: func(t *testing.T, app *IndicadoresApp) {
				t.Helper()
				mockCoord := app.components.RefreshCoordinator.(*mockRefreshCoordinator)
				assert.True(t, mockCoord.wasStopCalled(), "refresh coordinator Stop should be called even without Start")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			app := tt.setupApp(t, ctrl)

			// For tests that need the server running first
			if tt.name != "stop without starting first" {
				errChan := make(chan error, 1)
				go func() {
					errChan <- app.Start()
				}()

				// Wait for server to start
				time.Sleep(100 * time.Millisecond)
			}

			// Call Stop
			err := app.Stop(tt.timeout)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			if tt.verifyFn != nil {
				tt.verifyFn(t, app)
			}
		})
	}
}

func TestIndicadoresApp_StopIdempotent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app := createTestApp(t, ctrl, ":0")

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	// Wait for server to start
	time.Sleep(100 * time.Millisecond)

	// First stop should succeed
	err1 := app.Stop(5 * time.Second)
	require.NoError(t, err1)

	// Wait for Start() to return
	select {
	case <-errChan:
		// Expected
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after first Stop()")
	}

	// Second stop should also succeed (idempotent)
	err2 := app.Stop(5 * time.Second)
	// Note: This may return an error if the server is already closed,
	// but it should not panic
	_ = err2
}

func TestIndicadoresApp_StopWithNilCancelFunc(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app := createTestApp(t, ctrl, ":0")

	// Set cancelFunc to nil to test nil safety
	app.cancelFunc = nil

	// Stop should handle nil cancelFunc gracefully
	err := app.Stop(5 * time.Second)
	// The server wasn't started, so shutdown should be quick
	require.NoError(t, err)
}

func TestIndicadoresApp_GetConfig(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app := createTestApp(t, ctrl, ":0")

	cfg := app.GetConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, config.StorageTypeMemory, cfg.Storage.GetStorageType())
}

func TestIndicadoresApp_GetHTTPServer(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app := createTestApp(t, ctrl, ":8080")

	server := app.GetHTTPServer()

	require.NotNil(t, server)
	assert.Equal(t, ":8080", server.Addr)
}

func TestIndicadoresApp_StartError_InvalidAddress(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)

	// Create app with an invalid address (port already in use simulation)
	// First, occupy a port
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer listener.Close()
	occupiedAddr := listener.Addr().String()

	// Create app trying to use the same port
	app := createTestApp(t, ctrl, occupiedAddr)

	// Start should fail because port is in use
	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	select {
	case startErr := <-errChan:
		require.Error(t, startErr)
		assert.Contains(t, startErr.Error(), "HTTP server failed")
	case <-time.After(5 * time.Second):
		// If it doesn't fail quickly, stop and check
		app.Stop(1 * time.Second)
		t.Fatal("Expected Start() to fail due to port in use")
	}
}

// Verify that Coordinator interface is properly defined
var _ refresh.Coordinator = (*mockRefreshCoordinator)(nil)
