package catalog

// Config names the catalog tables and columns the service reads.
type Config struct {
	// SitesTable holds one row per site.
	SitesTable string `mapstructure:"sites_table" default:"sites"`
	// ProfilesTable holds one row per user, including the role column.
	ProfilesTable string `mapstructure:"profiles_table" default:"profiles"`
	// IDColumn is the primary key column of both tables.
	IDColumn string `mapstructure:"id_column" default:"id"`
	// OwnerColumn is the site column naming the owning user.
	OwnerColumn string `mapstructure:"owner_column" default:"owner"`
	// RoleColumn is the profile column holding the user's role.
	RoleColumn string `mapstructure:"role_column" default:"role"`
	// DefaultRole applies to users without a profile row or role value.
	DefaultRole string `mapstructure:"default_role" default:"USER"`
	// ReferenceColumns are the site columns that hold asset paths.
	ReferenceColumns []string `mapstructure:"reference_columns" default:"logo,hero,gallery"`
	// BackupTables are dumped by the backup exporter, in order.
	BackupTables []string `mapstructure:"backup_tables" default:"sites,profiles"`
}

// Identifiers returns every configured table and column name.
func (c Config) Identifiers() []string {
	ids := []string{c.SitesTable, c.ProfilesTable, c.IDColumn, c.OwnerColumn, c.RoleColumn}
	ids = append(ids, c.ReferenceColumns...)
	return append(ids, c.BackupTables...)
}
