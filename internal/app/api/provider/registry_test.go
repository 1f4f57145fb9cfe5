package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/common"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/app/model"
	"whisper-transcribe/internal/config"
)

type stubEngine struct {
	common.BaseProvider
	logger *zap.Logger
}

func (s *stubEngine) LoadModel(ctx context.Context, name string) (api.Model, error) {
	return stubModel{name: name}, nil
}

type stubModel struct{ name string }

func (m stubModel) Transcribe(ctx context.Context, audioPath string) (*model.Transcription, error) {
	return &model.Transcription{Text: "stub", Model: m.name}, nil
}

func (m stubModel) Close() error { return nil }

func registerStub(t *testing.T, name string, creatorErr error) {
	t.Helper()
	base := common.NewBaseProvider(name, "Stub "+name, common.ProviderTypeRemote)
	base.DefaultModel = "stub-1"
	RegisterProvider(name, base.Info(), func(cfg *config.Config, logger *zap.Logger) (api.Engine, error) {
		if creatorErr != nil {
			return nil, creatorErr
		}
		return &stubEngine{BaseProvider: base, logger: logger}, nil
	})
	t.Cleanup(func() { unregisterProvider(name) })
}

func TestRegistry(t *testing.T) {
	registerStub(t, "zz_stub_b", nil)
	registerStub(t, "zz_stub_a", nil)

	names := ListRegisteredProviders()
	assert.Contains(t, names, "zz_stub_a")
	assert.Contains(t, names, "zz_stub_b")
	assert.IsIncreasing(t, names)

	creator, err := GetProviderCreator("zz_stub_a")
	require.NoError(t, err)
	assert.NotNil(t, creator)

	_, err = GetProviderCreator("zz_missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrProviderNotFound))
	assert.Contains(t, err.Error(), "zz_stub_a")
}

func TestRegisterProvider_DuplicatePanics(t *testing.T) {
	registerStub(t, "zz_stub_dup", nil)

	assert.PanicsWithValue(t, `provider: engine "zz_stub_dup" registered twice`, func() {
		RegisterProvider("zz_stub_dup", common.ProviderInfo{}, nil)
	})

	creator, err := GetProviderCreator("zz_stub_dup")
	require.NoError(t, err)
	engine, err := creator(&config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Stub zz_stub_dup", engine.Info().DisplayName, "first registration is kept")
}

func TestRegisterProvider_FillsInfoName(t *testing.T) {
	RegisterProvider("zz_stub_noname", common.ProviderInfo{DisplayName: "No name"}, nil)
	t.Cleanup(func() { unregisterProvider("zz_stub_noname") })

	reg, err := lookup("zz_stub_noname")
	require.NoError(t, err)
	assert.Equal(t, "zz_stub_noname", reg.info.Name)
}

func TestCreateProvider(t *testing.T) {
	registerStub(t, "zz_stub_ok", nil)
	registerStub(t, "zz_stub_fail", errors.New("binary missing"))

	tests := []struct {
		name    string
		cfg     *config.Config
		wantErr error
	}{
		{name: "creates engine", cfg: &config.Config{Settings: config.Settings{Engine: "zz_stub_ok"}}},
		{name: "nil config", cfg: nil, wantErr: apperrors.ErrInvalidConfig},
		{name: "unknown engine", cfg: &config.Config{Settings: config.Settings{Engine: "zz_nope"}}, wantErr: apperrors.ErrProviderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := CreateProvider(tt.cfg, nil)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "zz_stub_ok", engine.Info().Name)

			m, err := engine.LoadModel(context.Background(), "base")
			require.NoError(t, err)
			defer m.Close()
			got, err := m.Transcribe(context.Background(), "jfk.wav")
			require.NoError(t, err)
			assert.Equal(t, "base", got.Model)
		})
	}

	_, err := CreateProvider(&config.Config{Settings: config.Settings{Engine: "zz_stub_fail"}}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create zz_stub_fail engine: binary missing")
}

func TestDescribeProviders(t *testing.T) {
	registerStub(t, "zz_desc_ok", nil)
	registerStub(t, "zz_desc_fail", errors.New("no key"))

	infos, failures := DescribeProviders(&config.Config{})

	var ok, failed *common.ProviderInfo
	for i := range infos {
		switch infos[i].Name {
		case "zz_desc_ok":
			ok = &infos[i]
		case "zz_desc_fail":
			failed = &infos[i]
		}
	}
	require.NotNil(t, ok)
	require.NotNil(t, failed)
	assert.Equal(t, "Stub zz_desc_ok", ok.DisplayName)
	assert.Equal(t, "Stub zz_desc_fail", failed.DisplayName, "metadata does not depend on a successful build")
	assert.Equal(t, common.ProviderTypeRemote, failed.Type)
	assert.Equal(t, "stub-1", failed.DefaultModel)
	assert.True(t, failed.RequiresAPIKey)
	assert.EqualError(t, failures["zz_desc_fail"], "no key")
	assert.NotContains(t, failures, "zz_desc_ok")
}

func TestErrorFromStatus(t *testing.T) {
	tests := []struct {
		status    int
		code      string
		retryable bool
	}{
		{http.StatusUnauthorized, "auth_error", false},
		{http.StatusForbidden, "auth_error", false},
		{http.StatusTooManyRequests, "rate_limit", true},
		{http.StatusRequestEntityTooLarge, "file_too_large", false},
		{http.StatusBadGateway, "server_error", true},
		{http.StatusBadRequest, "request_error", false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := ErrorFromStatus("openai", tt.status, "nope")
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Contains(t, err.Error(), "openai: HTTP")
		})
	}
}
