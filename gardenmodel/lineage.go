// Package gardenmodel holds the immutable value types that flow through the
// gardener: raw Input, stored Data, the Work/Result round trip, and the
// lineage-hash provenance scheme that ties them together.
package gardenmodel

import (
	"crypto/sha1"
	"encoding/hex"
)

// LinealHash computes the content-addressed provenance hash for a data point.
//
// With no inputs, it is the hash of a raw fact: SHA1(SHA1(name)_hex || version).
// With inputs, it folds in the lineal hashes of every input, in declared order,
// so that two derivations with identical inputs at every level of the tree
// converge on the same lineage.
func LinealHash(name, version string, inputLineages ...string) string {
	base := sha1Hex(sha1Hex(name) + version)
	if len(inputLineages) == 0 {
		return base
	}
	joined := base
	for _, h := range inputLineages {
		joined += h
	}
	return sha1Hex(joined)
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ValueHash returns the hash used to freshness-check a stored value against a
// WorkInput/ResultInput's recorded hash.
func ValueHash(value string) string {
	return sha1Hex(value)
}
