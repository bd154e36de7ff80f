package reconcile

import (
	"context"

	"site-janitor/core/catalog"
)

// Source supplies the catalog side of a scan.
// *catalog.Catalog implements it.
type Source interface {
	// Sites returns a map from site id to owner id.
	Sites(ctx context.Context) (map[string]string, error)

	// ReferenceRows returns every site row with its asset reference columns.
	ReferenceRows(ctx context.Context) ([]catalog.Row, error)
}

var _ Source = (*catalog.Catalog)(nil)
