package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel        = "info"
	DefaultJSONLog         = false
	DefaultUserAgent       = "Harvest/1.0 (https://github.com/field-harvesters/harvest)"
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCacheMaxEntries = 256
)
