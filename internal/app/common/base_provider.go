package common

// BaseProvider provides the metadata half of an engine
type BaseProvider struct {
	Name             string
	DisplayName      string
	Type             ProviderType
	RequiresInternet bool
	RequiresAPIKey   bool
	RequiresBinary   bool
	RequiresBuildTag string
	Unavailable      string
	DefaultModel     string
	AvailableModels  []string
}

// NewBaseProvider creates a new base provider. Remote engines need the
// internet and an API key unless told otherwise.
func NewBaseProvider(name, displayName string, providerType ProviderType) BaseProvider {
	remote := providerType == ProviderTypeRemote
	return BaseProvider{
		Name:             name,
		DisplayName:      displayName,
		Type:             providerType,
		RequiresInternet: remote,
		RequiresAPIKey:   remote,
	}
}

// Info returns provider information
func (b BaseProvider) Info() ProviderInfo {
	return ProviderInfo{
		Name:             b.Name,
		DisplayName:      b.DisplayName,
		Type:             b.Type,
		RequiresInternet: b.RequiresInternet,
		RequiresAPIKey:   b.RequiresAPIKey,
		RequiresBinary:   b.RequiresBinary,
		RequiresBuildTag: b.RequiresBuildTag,
		Unavailable:      b.Unavailable,
		DefaultModel:     b.DefaultModel,
		AvailableModels:  b.AvailableModels,
	}
}
