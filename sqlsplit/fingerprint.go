package sqlsplit

import "github.com/pingcap/tidb/pkg/parser"

// Fingerprint returns the normalized form of stmt, with literals replaced by
// placeholders, and its digest. Statements that differ only in their values
// share a digest.
func Fingerprint(stmt string) (normalized, digest string) {
	normalized = parser.Normalize(stmt)
	return normalized, parser.DigestNormalized(normalized).String()
}
