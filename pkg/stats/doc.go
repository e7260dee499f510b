// Package stats is the read-only statistics view over the delivery ledger.
//
// View joins ledger entries with recipient display names and a localized
// status label. Labels come from a YAML catalog keyed by language; the
// embedded default ships English and Russian and the best language for a
// request is picked with golang.org/x/text/language matching.
package stats
