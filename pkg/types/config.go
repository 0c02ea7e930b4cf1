// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for layers that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. A call left pending forever
	// would leave its triggering control stuck in a loading state, so the
	// gateway always runs with a finite timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with requests
	// (e.g. "review-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// GatewayConfig holds settings for the remote backend gateway.
type GatewayConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the backend root (e.g. "http://localhost:8000").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// MaxRetries is the retry budget for rate-limited requests (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreBackend selects the decision store persistence backend.
type StoreBackend string

const (
	StoreFile   StoreBackend = "file"
	StoreSQLite StoreBackend = "sqlite"
)

// StoreConfig holds settings for decision persistence.
type StoreConfig struct {
	// DataDir is the directory holding review state (review.json or review.db).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Backend selects the persistence backend: file or sqlite.
	Backend StoreBackend `json:"backend" yaml:"backend"`
}

// SessionConfig holds settings for the review session.
type SessionConfig struct {
	// PageSize is the number of results per page the backend serves (default 10).
	PageSize int `json:"page_size" yaml:"page_size"`
}

// ReviewConfig groups all layer configurations.
type ReviewConfig struct {
	Gateway GatewayConfig `json:"gateway" yaml:"gateway"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Session SessionConfig `json:"session" yaml:"session"`
}
