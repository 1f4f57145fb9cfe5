package provider

import (
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/common"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/config"
)

// CreateProvider builds the engine named by cfg.Settings.Engine
func CreateProvider(cfg *config.Config, logger *zap.Logger) (api.Engine, error) {
	if cfg == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidConfig, "nil configuration")
	}

	name := cfg.Settings.Engine
	creator, err := GetProviderCreator(name)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	engine, err := creator(cfg, logger.Named(name))
	if err != nil {
		return nil, apperrors.Wrapf(err, "create %s engine", name)
	}
	return engine, nil
}

// DescribeProviders returns the registered info of every engine and, per
// engine, the error building it with cfg. Info does not depend on a
// successful build.
func DescribeProviders(cfg *config.Config) ([]common.ProviderInfo, map[string]error) {
	names := ListRegisteredProviders()
	infos := make([]common.ProviderInfo, 0, len(names))
	failures := make(map[string]error)

	for _, name := range names {
		reg, err := lookup(name)
		if err != nil {
			failures[name] = err
			continue
		}
		infos = append(infos, reg.info)
		if _, err := reg.creator(cfg, zap.NewNop()); err != nil {
			failures[name] = err
		}
	}
	return infos, failures
}
