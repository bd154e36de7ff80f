package reconcile

// Config holds configuration for reconciliation scans.
type Config struct {
	// ReservedFolders are asset collection folder names that are never
	// candidates, compared case-insensitively.
	ReservedFolders []string `mapstructure:"reserved_folders" default:"hero,gallery,logo,logos,favicon"`
}
