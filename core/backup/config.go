package backup

// Config holds configuration for backup exports.
type Config struct {
	// OutputDir is where the CLI writes archives.
	OutputDir string `mapstructure:"output_dir" default:"."`
	// TimeoutMinutes bounds a single export.
	TimeoutMinutes int `mapstructure:"timeout_minutes" default:"30"`
}
