package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/common"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/config"
)

// ProviderCreator builds an engine from the merged configuration
type ProviderCreator func(cfg *config.Config, logger *zap.Logger) (api.Engine, error)

type registration struct {
	info    common.ProviderInfo
	creator ProviderCreator
}

// providerRegistry stores provider metadata and creation functions
var (
	providerRegistry = make(map[string]registration)
	registryMutex    sync.RWMutex
)

// RegisterProvider registers an engine with its static metadata. Engines call
// it from init. It panics when name is already registered.
func RegisterProvider(name string, info common.ProviderInfo, creator ProviderCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if _, exists := providerRegistry[name]; exists {
		panic(fmt.Sprintf("provider: engine %q registered twice", name))
	}
	if info.Name == "" {
		info.Name = name
	}
	providerRegistry[name] = registration{info: info, creator: creator}
}

// GetProviderCreator returns the creator function for an engine name
func GetProviderCreator(name string) (ProviderCreator, error) {
	reg, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return reg.creator, nil
}

// ListRegisteredProviders returns all registered engine names, sorted
func ListRegisteredProviders() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	return listLocked()
}

func lookup(name string) (registration, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	reg, ok := providerRegistry[name]
	if !ok {
		return registration{}, apperrors.Wrapf(apperrors.ErrProviderNotFound, "%q (available: %v)", name, listLocked())
	}
	return reg, nil
}

func listLocked() []string {
	names := lo.Keys(providerRegistry)
	sort.Strings(names)
	return names
}

// unregisterProvider is used by tests
func unregisterProvider(name string) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	delete(providerRegistry, name)
}
