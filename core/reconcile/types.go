package reconcile

import (
	"fmt"
	"time"

	"site-janitor/core/paths"
)

// Policy selects how storage is matched against the catalog.
type Policy string

const (
	// PolicyFolders detects site folders with no catalog record.
	PolicyFolders Policy = "folders"
	// PolicyObjects detects objects no catalog row refers to.
	PolicyObjects Policy = "objects"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyFolders, PolicyObjects:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown scan policy %q", s)
	}
}

// Folder statuses.
const (
	StatusInDatabase = "In database"
	StatusMissing    = "Missing"
)

// FolderEntry is one candidate folder found by the folder policy.
type FolderEntry struct {
	// Path is the normalized folder path, "owner" or "owner/site".
	Path string `json:"path"`
	// FolderName is the last path segment, compared against site ids.
	FolderName string `json:"folder_name"`
	// StorageOwner is the owner implied by the storage layout.
	StorageOwner string `json:"storage_owner"`
	// SiteID and SiteOwner are set when FolderName matches a site.
	SiteID    string     `json:"site_id,omitempty"`
	SiteOwner string     `json:"site_owner,omitempty"`
	Status    string     `json:"status"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Matched reports whether the folder belongs to a known site.
func (f FolderEntry) Matched() bool {
	return f.SiteID != ""
}

// ObjectEntry is one redundant object found by the object policy.
type ObjectEntry struct {
	Path      string     `json:"path"`
	Size      int64      `json:"size"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	PublicURL string     `json:"public_url"`
	paths.Description
}

// Stats holds the aggregate counts of a scan.
type Stats struct {
	// Scanned is the number of storage entries classified.
	Scanned int `json:"scanned"`
	// Matched counts entries backed by the catalog.
	Matched int `json:"matched"`
	// Missing counts folders with no catalog record.
	Missing int `json:"missing"`
	// Redundant counts objects nothing refers to.
	Redundant int `json:"redundant"`
	// TotalEntities is the number of catalog rows consulted.
	TotalEntities int `json:"total_entities"`
	// ReferencedPaths is the size of the reference set.
	ReferencedPaths int `json:"referenced_paths"`
	// Skipped counts reference values that could not be parsed.
	Skipped int `json:"skipped"`
}

// Report is the result of one scan.
type Report struct {
	Policy      Policy        `json:"policy"`
	Matched     []FolderEntry `json:"matched,omitempty"`
	Missing     []FolderEntry `json:"missing,omitempty"`
	Redundant   []ObjectEntry `json:"redundant,omitempty"`
	Stats       Stats         `json:"stats"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Candidates returns the paths that may be selected for deletion.
func (r *Report) Candidates() []string {
	var out []string
	switch r.Policy {
	case PolicyFolders:
		for _, f := range r.Missing {
			out = append(out, f.Path)
		}
	case PolicyObjects:
		for _, o := range r.Redundant {
			out = append(out, o.Path)
		}
	}
	return out
}

// DeleteOptions controls whether a deletion plan is executed.
type DeleteOptions struct {
	// DryRun prevents execution of any deletion if true.
	DryRun bool

	// Confirmed indicates the operator has confirmed the deletion.
	// If false, nothing is deleted regardless of DryRun.
	Confirmed bool
}
