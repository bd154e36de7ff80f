package reconcile

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ObjectView is the operator-selected ordering of redundant objects.
type ObjectView string

const (
	// ViewPath orders by path ascending.
	ViewPath ObjectView = "path"
	// ViewRecent orders by last modification, newest first, then by path.
	ViewRecent ObjectView = "recent"
)

// ParseObjectView validates a view name. An empty name selects ViewPath.
func ParseObjectView(s string) (ObjectView, error) {
	switch ObjectView(s) {
	case "", ViewPath:
		return ViewPath, nil
	case ViewRecent:
		return ViewRecent, nil
	default:
		return "", fmt.Errorf("unknown sort view %q (want path or recent)", s)
	}
}

func unix(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}

// SortObjects orders entries in place.
func SortObjects(entries []ObjectEntry, view ObjectView) {
	if view == ViewRecent {
		slices.SortFunc(entries, func(a, b ObjectEntry) int {
			if c := cmp.Compare(unix(b.UpdatedAt), unix(a.UpdatedAt)); c != 0 {
				return c
			}
			return strings.Compare(a.Path, b.Path)
		})
		return
	}
	slices.SortFunc(entries, func(a, b ObjectEntry) int {
		return strings.Compare(a.Path, b.Path)
	})
}

// FolderSortField names a folder column to order by.
type FolderSortField string

const (
	// FolderSortDefault orders by storage owner, folder name, then path.
	FolderSortDefault  FolderSortField = ""
	FolderSortPath     FolderSortField = "path"
	FolderSortName     FolderSortField = "folderName"
	FolderSortSiteID   FolderSortField = "siteId"
	FolderSortOwner    FolderSortField = "siteOwner"
	FolderSortStatus   FolderSortField = "status"
	FolderSortModified FolderSortField = "updatedAt"
)

// ParseFolderSortField validates a folder column name.
func ParseFolderSortField(s string) (FolderSortField, error) {
	switch f := FolderSortField(s); f {
	case FolderSortDefault, FolderSortPath, FolderSortName, FolderSortSiteID, FolderSortOwner, FolderSortStatus, FolderSortModified:
		return f, nil
	default:
		return "", fmt.Errorf("unknown folder sort field %q", s)
	}
}

// SortFolders orders entries in place by field. Column orders compare
// case-insensitively and fall back to the path; desc reverses the column
// order but never the path tie-break.
func SortFolders(entries []FolderEntry, field FolderSortField, desc bool) {
	if field == FolderSortDefault {
		slices.SortFunc(entries, func(a, b FolderEntry) int {
			return cmp.Or(
				strings.Compare(a.StorageOwner, b.StorageOwner),
				strings.Compare(a.FolderName, b.FolderName),
				strings.Compare(a.Path, b.Path),
			)
		})
		return
	}

	dir := 1
	if desc {
		dir = -1
	}
	slices.SortFunc(entries, func(a, b FolderEntry) int {
		var c int
		if field == FolderSortModified {
			c = cmp.Compare(unix(a.UpdatedAt), unix(b.UpdatedAt))
		} else {
			c = strings.Compare(strings.ToLower(folderValue(a, field)), strings.ToLower(folderValue(b, field)))
		}
		if c != 0 {
			return c * dir
		}
		return strings.Compare(a.Path, b.Path)
	})
}

func folderValue(f FolderEntry, field FolderSortField) string {
	switch field {
	case FolderSortName:
		return f.FolderName
	case FolderSortSiteID:
		return f.SiteID
	case FolderSortOwner:
		return f.SiteOwner
	case FolderSortStatus:
		return f.Status
	default:
		return f.Path
	}
}
