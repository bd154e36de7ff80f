// Package paths canonicalizes object references into the single addressing
// scheme used for matching: a relative path inside the asset bucket with no
// scheme, host, bucket prefix or surrounding separators.
//
// Every component compares normalized paths only. A Normalizer built with
// the bucket's public hosts leaves URLs on other hosts untouched.
package paths
