// Package sources declares the economic indicator catalog and fetches
// current readings from the upstream data providers.
//
// The package defines the Fetcher interface which abstracts one
// indicator: where its data lives, how a raw reading is derived from
// the observation window, and how it is rendered for display.
//
// Architecture:
//   - Spec: declarative catalog entry binding a provider series to a
//     derivation, a formatting rule and a period-label rule
//   - Fetcher: produces the current record of one indicator
//   - BCBClient: Banco Central SGS time-series adapter
//   - IBGEClient: IBGE agregados v3 adapter
//   - HistoryProvider: resolves allow-listed slugs to labeled
//     historical series
//
// Fetchers never return errors. Transport failures, malformed payloads
// and empty observation windows all become records with value "N/D"
// and a human-readable reason, so one bad provider cannot poison a
// collection batch.
package sources
