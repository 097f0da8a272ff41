package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/painel-economico/indicadores-server/internal/session"
	"github.com/painel-economico/indicadores-server/test-integration/indicadores-api/helpers"
)

const adminPassword = "senha-admin-integracao"

var (
	adminHashOnce sync.Once
	adminHash     string
)

// adminPasswordHash hashes the test password once; argon2id is too
// expensive to rehash per spec.
func adminPasswordHash() string {
	adminHashOnce.Do(func() {
		var err error
		adminHash, err = session.HashPassword(adminPassword)
		Expect(err).NotTo(HaveOccurred())
	})
	return adminHash
}

type indicatorRecord struct {
	ID        int    `json:"id"`
	Nome      string `json:"nome"`
	Valor     string `json:"valor"`
	Descricao string `json:"descricao"`
}

type historicalRecord struct {
	Labels        []string  `json:"labels"`
	Valores       []float64 `json:"valores"`
	TotalPeriodos int       `json:"total_periodos"`
}

type statusRecord struct {
	Status           string  `json:"status"`
	CacheUpdated     *string `json:"cache_updated"`
	IndicatorsCached int     `json:"indicators_cached"`
	CacheExpired     bool    `json:"cache_expired"`
}

type annotationRecord struct {
	Slug  string `json:"slug"`
	Texto string `json:"texto"`
}

// decodeJSON reads and unmarshals a response body.
func decodeJSON(resp *http.Response, out any) {
	GinkgoHelper()

	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	Expect(json.Unmarshal(body, out)).To(Succeed(), "body: %s", string(body))
}

var _ = Describe("Indicadores API", func() {
	var (
		mockBCB  *httptest.Server
		mockIBGE *httptest.Server
		server   *helpers.ServerTestHelper
	)

	startServer := func(opts helpers.ServerOptions) {
		server = helpers.NewServerTestHelper(ctx, opts)
		Expect(server.StartServer()).To(Succeed())
		server.WaitForServerReady(15 * time.Second)
	}

	BeforeEach(func() {
		mockBCB = helpers.NewBCBMockServer()
		mockIBGE = helpers.NewIBGEMockServer()
	})

	AfterEach(func() {
		if server != nil {
			Expect(server.StopServer()).To(Succeed())
			server = nil
		}
		mockBCB.Close()
		mockIBGE.Close()
	})

	Context("snapshot endpoints", Label("snapshot"), func() {
		BeforeEach(func() {
			startServer(helpers.ServerOptions{
				BCBBaseURL:  mockBCB.URL,
				IBGEBaseURL: mockIBGE.URL,
			})
		})

		It("serves the full snapshot in catalog order", func() {
			resp, err := server.GetIndicators()
			Expect(err).NotTo(HaveOccurred())
			defer func() {
				_ = resp.Body.Close()
			}()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var records []indicatorRecord
			decodeJSON(resp, &records)

			Expect(records).To(HaveLen(14))
			Expect(records[0].ID).To(Equal(1))
			Expect(records[0].Nome).To(Equal("PIB"))
			Expect(records[13].ID).To(Equal(14))
			Expect(records[13].Nome).To(Equal("Vendas no Varejo"))

			byName := make(map[string]indicatorRecord, len(records))
			for _, rec := range records {
				Expect(rec.Valor).NotTo(BeEmpty())
				byName[rec.Nome] = rec
			}
			Expect(byName["Taxa Selic"].Valor).To(Equal("13.25%"))
			Expect(byName["Dólar (USD/BRL)"].Valor).To(Equal("R$ 5.42"))
			Expect(byName["Ibovespa"].Valor).To(Equal("Consultar B3"))
		})

		It("resolves indicators by flexible name", func() {
			for _, name := range []string{"taxa-selic", "Taxa Selic", "TAXASELIC"} {
				resp, err := server.GetIndicator(name)
				Expect(err).NotTo(HaveOccurred())

				Expect(resp.StatusCode).To(Equal(http.StatusOK), "lookup %q", name)

				var record indicatorRecord
				decodeJSON(resp, &record)
				_ = resp.Body.Close()

				Expect(record.Nome).To(Equal("Taxa Selic"))
			}
		})

		It("answers 404 for unknown indicators", func() {
			resp, err := server.GetIndicator("nao-existe")
			Expect(err).NotTo(HaveOccurred())
			defer func() {
				_ = resp.Body.Close()
			}()

			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

			var errResp map[string]string
			decodeJSON(resp, &errResp)
			Expect(errResp["error"]).To(ContainSubstring("não encontrado"))
		})

		It("serves twelve months of history for eligible indicators", func() {
			resp, err := server.GetHistorical("taxa-selic")
			Expect(err).NotTo(HaveOccurred())
			defer func() {
				_ = resp.Body.Close()
			}()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var series historicalRecord
			decodeJSON(resp, &series)

			Expect(series.Labels).To(HaveLen(12))
			Expect(series.Valores).To(HaveLen(12))
			Expect(series.TotalPeriodos).To(Equal(12))
			Expect(series.Labels[0]).To(Equal("01/2026"))
			Expect(series.Labels[11]).To(Equal("12/2026"))
			Expect(series.Valores[11]).To(BeNumerically(">", series.Valores[0]))
		})

		It("answers empty history off the allow-list", func() {
			resp, err := server.GetHistorical("ibovespa")
			Expect(err).NotTo(HaveOccurred())
			defer func() {
				_ = resp.Body.Close()
			}()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var series historicalRecord
			decodeJSON(resp, &series)

			Expect(series.Labels).To(BeEmpty())
			Expect(series.Valores).To(BeEmpty())
			Expect(series.TotalPeriodos).To(BeZero())
		})

		It("reports cache status after the warm-up refresh", func() {
			// The background coordinator runs its first pass on startup;
			// wait until the snapshot lands in the cache.
			Eventually(func() int {
				resp, err := server.GetStatus()
				if err != nil {
					return 0
				}
				defer func() {
					_ = resp.Body.Close()
				}()
				var status statusRecord
				if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
					return 0
				}
				return status.IndicatorsCached
			}, 10*time.Second, 250*time.Millisecond).Should(Equal(14))

			resp, err := server.GetStatus()
			Expect(err).NotTo(HaveOccurred())
			defer func() {
				_ = resp.Body.Close()
			}()

			var status statusRecord
			decodeJSON(resp, &status)

			Expect(status.Status).To(Equal("online"))
			Expect(status.CacheUpdated).NotTo(BeNil())
			Expect(status.CacheExpired).To(BeFalse())
		})

		It("acknowledges forced refreshes immediately", func() {
			resp, err := server.ForceUpdate()
			Expect(err).NotTo(HaveOccurred())
			defer func() {
				_ = resp.Body.Close()
			}()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var ack map[string]string
			decodeJSON(resp, &ack)
			Expect(ack["message"]).To(ContainSubstring("background"))
			Expect(ack["timestamp"]).NotTo(BeEmpty())
		})

		It("exposes health, readiness and version", func() {
			resp, err := server.GetHealth()
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			_ = resp.Body.Close()

			resp, err = server.GetReadiness()
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			_ = resp.Body.Close()

			resp, err = server.GetVersion()
			Expect(err).NotTo(HaveOccurred())
			defer func() {
				_ = resp.Body.Close()
			}()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var info map[string]string
			decodeJSON(resp, &info)
			Expect(info["version"]).NotTo(BeEmpty())
			Expect(info["go_version"]).NotTo(BeEmpty())
		})
	})

	Context("degraded upstreams", Label("degraded"), func() {
		It("serves N/D slots when a provider is unreachable", func() {
			// Point the BCB client at a dead endpoint; IBGE stays up.
			deadBCB := httptest.NewServer(http.NotFoundHandler())
			deadURL := deadBCB.URL
			deadBCB.Close()

			startServer(helpers.ServerOptions{
				BCBBaseURL:  deadURL,
				IBGEBaseURL: mockIBGE.URL,
			})

			resp, err := server.GetIndicators()
			Expect(err).NotTo(HaveOccurred())
			defer func() {
				_ = resp.Body.Close()
			}()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var records []indicatorRecord
			decodeJSON(resp, &records)

			// Slot count and order survive partial failure.
			Expect(records).To(HaveLen(14))
			Expect(records[2].Nome).To(Equal("Taxa Selic"))
			Expect(records[2].Valor).To(Equal("N/D"))
			Expect(records[2].Descricao).NotTo(BeEmpty())
			Expect(records[0].Nome).To(Equal("PIB"))
			Expect(records[0].Valor).To(Equal("R$ 2.9 trilhões"))
			Expect(records[9].Valor).To(Equal("Consultar B3"))
		})
	})

	Context("sessions and annotations", Label("auth"), func() {
		BeforeEach(func() {
			startServer(helpers.ServerOptions{
				BCBBaseURL:   mockBCB.URL,
				IBGEBaseURL:  mockIBGE.URL,
				PasswordHash: adminPasswordHash(),
			})
		})

		It("rejects annotation writes without a session", func() {
			resp, err := server.PutAnnotation("", "taxa-selic", "nota sem sessão")
			Expect(err).NotTo(HaveOccurred())
			defer func() {
				_ = resp.Body.Close()
			}()

			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a wrong password", func() {
			resp, err := server.Login("senha-errada")
			Expect(err).NotTo(HaveOccurred())
			defer func() {
				_ = resp.Body.Close()
			}()

			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("runs the full annotation flow", func() {
			By("reading a missing annotation")
			resp, err := server.GetAnnotation("taxa-selic")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			_ = resp.Body.Close()

			By("logging in")
			resp, err = server.Login(adminPassword)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var login map[string]string
			decodeJSON(resp, &login)
			_ = resp.Body.Close()
			token := login["token"]
			Expect(token).NotTo(BeEmpty())

			By("writing the annotation")
			resp, err = server.PutAnnotation(token, "taxa-selic", "Reunião do Copom em andamento")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			_ = resp.Body.Close()

			By("reading it back without a session")
			resp, err = server.GetAnnotation("taxa-selic")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var annotation annotationRecord
			decodeJSON(resp, &annotation)
			_ = resp.Body.Close()
			Expect(annotation.Slug).To(Equal("taxa-selic"))
			Expect(annotation.Texto).To(Equal("Reunião do Copom em andamento"))

			By("logging out")
			resp, err = server.Logout(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			_ = resp.Body.Close()

			By("rejecting the revoked token")
			resp, err = server.PutAnnotation(token, "taxa-selic", "não deve passar")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			_ = resp.Body.Close()
		})
	})

	Context("without a configured password hash", Label("auth"), func() {
		BeforeEach(func() {
			startServer(helpers.ServerOptions{
				BCBBaseURL:  mockBCB.URL,
				IBGEBaseURL: mockIBGE.URL,
			})
		})

		It("keeps annotation writes locked", func() {
			resp, err := server.Login(adminPassword)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			_ = resp.Body.Close()

			resp, err = server.PutAnnotation("qualquer-token", "taxa-selic", "sem autoridade")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			_ = resp.Body.Close()
		})
	})
})
