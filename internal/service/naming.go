// Package service provides the business logic for the indicators API.
//
// This file contains the name normalization used by indicator lookups.
// Clients address indicators by display name in URLs, with inconsistent
// casing, spacing and hyphenation ("Taxa Selic", "taxa-selic",
// "taxaselic"); normalization makes all of those hit the same record.
package service

import "strings"

// normalizeName canonicalizes an indicator name for comparison by
// lower-casing it and stripping spaces and hyphens.
//
// Example:
//
//	normalizeName("Taxa Selic") returns "taxaselic"
//	normalizeName("TAXA-SELIC") returns "taxaselic"
func normalizeName(name string) string {
	normalized := strings.ToLower(name)
	normalized = strings.ReplaceAll(normalized, " ", "")
	return strings.ReplaceAll(normalized, "-", "")
}

// matchesName reports whether a stored indicator name satisfies a
// lookup query. Both sides are compared normalized; the query matches
// on equality or as a substring of the stored name, so "selic" still
// finds "Taxa Selic".
func matchesName(stored, query string) bool {
	normalizedStored := normalizeName(stored)
	normalizedQuery := normalizeName(query)
	return normalizedStored == normalizedQuery || strings.Contains(normalizedStored, normalizedQuery)
}
