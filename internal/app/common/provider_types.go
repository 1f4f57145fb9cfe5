package common

// ProviderType defines where an engine runs
type ProviderType string

const (
	ProviderTypeLocal  ProviderType = "local"
	ProviderTypeRemote ProviderType = "remote"
)

// ProviderInfo contains metadata about a transcription engine
type ProviderInfo struct {
	Name        string       `json:"name"`         // Engine name used on the command line
	DisplayName string       `json:"display_name"` // Human-readable name
	Type        ProviderType `json:"type"`

	// Requirements
	RequiresInternet bool   `json:"requires_internet"`
	RequiresAPIKey   bool   `json:"requires_api_key"`
	RequiresBinary   bool   `json:"requires_binary"`
	RequiresBuildTag string `json:"requires_build_tag,omitempty"`
	// Unavailable says why this binary cannot run the engine at all
	Unavailable string `json:"unavailable,omitempty"`

	DefaultModel    string   `json:"default_model,omitempty"`
	AvailableModels []string `json:"available_models,omitempty"`
}
