// Package helpers boots the indicators server and its mock upstreams
// for integration tests.
package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/onsi/gomega"

	"github.com/painel-economico/indicadores-server/internal/app"
	"github.com/painel-economico/indicadores-server/internal/config"
)

// ServerOptions describes the server under test.
type ServerOptions struct {
	// BCBBaseURL and IBGEBaseURL point the provider clients at mock
	// upstreams.
	BCBBaseURL  string
	IBGEBaseURL string
	// PasswordHash enables the session authority when set.
	PasswordHash string
	// CacheTTL overrides the snapshot TTL. Empty keeps the default.
	CacheTTL string
}

// ServerTestHelper manages the indicators server lifecycle for testing.
type ServerTestHelper struct {
	ctx        context.Context
	opts       ServerOptions
	baseURL    string
	address    string
	httpClient *http.Client
	app        *app.IndicadoresApp
}

// NewServerTestHelper creates a helper bound to a free localhost port.
func NewServerTestHelper(ctx context.Context, opts ServerOptions) *ServerTestHelper {
	port := freePort()
	return &ServerTestHelper{
		ctx:     ctx,
		opts:    opts,
		baseURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		address: fmt.Sprintf("127.0.0.1:%d", port),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// freePort asks the kernel for an unused TCP port.
func freePort() int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port
}

// StartServer builds and starts the indicators server programmatically.
func (s *ServerTestHelper) StartServer() error {
	cfg := &config.Config{
		Storage: &config.StorageConfig{Type: config.StorageTypeMemory},
		Cache: &config.CacheConfig{
			TTL: s.opts.CacheTTL,
		},
		Providers: &config.ProvidersConfig{
			Timeout: "5s",
			BCB:     &config.ProviderConfig{BaseURL: s.opts.BCBBaseURL},
			IBGE:    &config.ProviderConfig{BaseURL: s.opts.IBGEBaseURL},
		},
	}
	if s.opts.PasswordHash != "" {
		cfg.Auth = &config.AuthConfig{PasswordHash: s.opts.PasswordHash}
	}

	application, err := app.NewIndicadoresApp(s.ctx,
		app.WithConfig(cfg),
		app.WithAddress(s.address),
	)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}
	s.app = application

	// Start the server in a goroutine (non-blocking). The test fails
	// at connect time if startup went wrong.
	go func() {
		if err := application.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Server start failed: %v\n", err)
		}
	}()

	return nil
}

// StopServer gracefully stops the indicators server.
func (s *ServerTestHelper) StopServer() error {
	if s.app != nil {
		return s.app.Stop(5 * time.Second)
	}
	return nil
}

// WaitForServerReady waits for the server to accept requests.
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/health")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 250*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// GetIndicators makes a GET request to /api/indicadores.
func (s *ServerTestHelper) GetIndicators() (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + "/api/indicadores")
}

// GetIndicator makes a GET request to /api/indicadores/{nome}.
func (s *ServerTestHelper) GetIndicator(name string) (*http.Response, error) {
	return s.httpClient.Get(fmt.Sprintf("%s/api/indicadores/%s", s.baseURL, url.PathEscape(name)))
}

// GetHistorical makes a GET request to /api/indicadores/{nome}/historico.
func (s *ServerTestHelper) GetHistorical(slug string) (*http.Response, error) {
	return s.httpClient.Get(fmt.Sprintf("%s/api/indicadores/%s/historico", s.baseURL, url.PathEscape(slug)))
}

// GetAnnotation makes a GET request to /api/indicadores/{nome}/anotacao.
func (s *ServerTestHelper) GetAnnotation(slug string) (*http.Response, error) {
	return s.httpClient.Get(fmt.Sprintf("%s/api/indicadores/%s/anotacao", s.baseURL, url.PathEscape(slug)))
}

// PutAnnotation writes an annotation, authenticating with token when
// non-empty.
func (s *ServerTestHelper) PutAnnotation(token, slug, text string) (*http.Response, error) {
	body, err := json.Marshal(map[string]string{"texto": text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(s.ctx, http.MethodPut,
		fmt.Sprintf("%s/api/indicadores/%s/anotacao", s.baseURL, url.PathEscape(slug)),
		bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.httpClient.Do(req)
}

// GetStatus makes a GET request to /api/status.
func (s *ServerTestHelper) GetStatus() (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + "/api/status")
}

// ForceUpdate makes a POST request to /api/atualizar.
func (s *ServerTestHelper) ForceUpdate() (*http.Response, error) {
	return s.httpClient.Post(s.baseURL+"/api/atualizar", "application/json", nil)
}

// Login exchanges the shared password for a session token.
func (s *ServerTestHelper) Login(password string) (*http.Response, error) {
	body, err := json.Marshal(map[string]string{"senha": password})
	if err != nil {
		return nil, err
	}
	return s.httpClient.Post(s.baseURL+"/api/auth/login", "application/json", bytes.NewReader(body))
}

// Logout revokes the given session token.
func (s *ServerTestHelper) Logout(token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.baseURL+"/api/auth/logout", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return s.httpClient.Do(req)
}

// GetHealth makes a GET request to /health.
func (s *ServerTestHelper) GetHealth() (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + "/health")
}

// GetReadiness makes a GET request to /readiness.
func (s *ServerTestHelper) GetReadiness() (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + "/readiness")
}

// GetVersion makes a GET request to /version.
func (s *ServerTestHelper) GetVersion() (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + "/version")
}
