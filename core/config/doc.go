// Package config provides configuration management for the site janitor.
//
// It uses Viper over environment variables, with an optional .env file
// loaded first through godotenv.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP port, admin token secret and admin role
//   - Storage: bucket credentials, public addressing and paging
//   - Database: catalog connection (mysql or sqlite)
//   - Catalog: table and column names
//   - Scan: reserved collection folders
//   - Backup: CLI output directory and export timeout
//   - Log: logging level and format
//
// Defaults come from the 'default' struct tags. Keys map to upper-case
// environment variables with dots replaced by underscores, so
// storage.page_size is read from STORAGE_PAGE_SIZE.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
