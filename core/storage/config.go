package storage

import "strings"

// Config holds configuration for the storage provider.
type Config struct {
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket holding site assets.
	Bucket string `mapstructure:"bucket" default:"site-assets"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// PublicURL is the base address objects are served from. When empty it is
	// derived from Endpoint and UseSSL.
	PublicURL string `mapstructure:"public_url" default:""`
	// PublicPath is the path segment between the public host and the bucket
	// name in legacy asset URLs stored in the catalog.
	PublicPath string `mapstructure:"public_path" default:"storage/v1/object/public"`
	// ReferenceHosts are further hosts, besides the public base address, whose
	// URLs in the catalog point into the bucket.
	ReferenceHosts []string `mapstructure:"reference_hosts" default:""`
	// PageSize is the number of entries requested per listing page.
	PageSize int `mapstructure:"page_size" default:"1000"`
	// DeleteChunkSize is the maximum number of paths per bulk delete call.
	DeleteChunkSize int `mapstructure:"delete_chunk_size" default:"1000"`
	// Placeholder is the name of the empty-directory marker object.
	Placeholder string `mapstructure:"placeholder" default:".emptyFolderPlaceholder"`
}

// BaseURL returns the public base address with no trailing slash.
func (c Config) BaseURL() string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/")
	}
	scheme := "http://"
	if c.UseSSL {
		scheme = "https://"
	}
	endpoint := strings.TrimPrefix(c.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return scheme + strings.TrimRight(endpoint, "/")
}

// ReferenceBases returns every address whose URLs name objects in the bucket.
func (c Config) ReferenceBases() []string {
	return append([]string{c.BaseURL()}, c.ReferenceHosts...)
}
