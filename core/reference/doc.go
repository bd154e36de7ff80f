// Package reference builds the set of asset paths that catalog rows refer to.
package reference
