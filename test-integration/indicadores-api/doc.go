// Package integration provides black-box integration tests for the
// indicators API server. The tests boot the real application against
// mock BCB and IBGE upstreams and exercise the HTTP surface the
// dashboard consumes: snapshot reads, historical series, cache status,
// forced refresh, and the session-protected annotation flow.
package integration
