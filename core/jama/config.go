package jama

// Config holds configuration for the Jama REST connection.
type Config struct {
	// BaseURL is the root URL of the Jama instance.
	BaseURL string `mapstructure:"base_url" default:"https://stargate.jamacloud.com"`
	// ProjectID is the numeric project to operate on.
	ProjectID int `mapstructure:"project_id" default:"0"`
	// APIID is the OAuth client id.
	APIID string `mapstructure:"api_id" default:""`
	// APISecret is the OAuth client secret.
	APISecret string `mapstructure:"api_secret" default:""`
	// Proxy is an optional forward proxy URL for all requests.
	Proxy string `mapstructure:"proxy" default:""`
	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RequestsPerSecond paces outgoing calls; the store enforces
	// implicit rate limits and the tool never overlaps requests anyway.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"5"`
	// DefaultItemType is the item-type id used when a created row does
	// not carry one.
	DefaultItemType int `mapstructure:"default_item_type" default:"1"`
	// Debug dumps raw item fields during fetch.
	Debug bool `mapstructure:"debug" default:"false"`
}
