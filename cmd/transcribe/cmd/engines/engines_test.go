package engines

import (
	"bytes"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/api/whisper_binding"
	"whisper-transcribe/internal/app/common"
	"whisper-transcribe/internal/config"

	_ "whisper-transcribe/internal/app/api/openai/whisper"
	_ "whisper-transcribe/internal/app/api/whisper_server"
)

func TestPrintEngines(t *testing.T) {
	cfg := &config.Config{Settings: config.Settings{Engine: "whisper_cpp"}}
	infos := []common.ProviderInfo{
		{Name: "openai"},
		{Name: "whisper_cpp", Type: common.ProviderTypeLocal, DefaultModel: "base", RequiresBinary: true},
	}
	failures := map[string]error{"openai": errors.New("API key is required: OpenAI")}

	var buf bytes.Buffer
	require.NoError(t, printEngines(&buf, cfg, infos, failures))

	out := buf.String()
	assert.Contains(t, out, "whisper_cpp *")
	assert.Contains(t, out, "whisper-cli")
	assert.Contains(t, out, "API key is required: OpenAI")
}

func TestRequirements(t *testing.T) {
	info := common.ProviderInfo{RequiresInternet: true, RequiresAPIKey: true}
	assert.Equal(t, "internet, api key", requirements(info))

	info = common.ProviderInfo{RequiresBuildTag: "whisper"}
	assert.Equal(t, "-tags whisper", requirements(info))

	assert.Equal(t, "", requirements(common.ProviderInfo{}))
}

func TestPrintEngines_FailedEnginesKeepMetadata(t *testing.T) {
	cfg := &config.Config{Settings: config.DefaultSettings()}
	infos, failures := provider.DescribeProviders(cfg)

	var buf bytes.Buffer
	require.NoError(t, printEngines(&buf, cfg, infos, failures))
	out := buf.String()

	assert.Regexp(t, regexp.MustCompile(`(?m)^openai\s+remote\s+whisper-1\s+internet, api key\s+.*API key is required`), out)
	assert.Regexp(t, regexp.MustCompile(`(?m)^whisper_server\s+remote\s+base\s+internet\s+.*URL`), out)
}

func TestPrintEngines_UnavailableEngine(t *testing.T) {
	cfg := &config.Config{Settings: config.DefaultSettings()}
	infos, failures := provider.DescribeProviders(cfg)

	var buf bytes.Buffer
	require.NoError(t, printEngines(&buf, cfg, infos, failures))

	if whisper_binding.Available {
		assert.Regexp(t, regexp.MustCompile(`(?m)^whisper\s+local\s+base\s+-tags whisper\s+ok$`), buf.String())
		return
	}
	assert.Regexp(t, regexp.MustCompile(`(?m)^whisper\s+local\s+base\s+-tags whisper\s+needs -tags whisper$`), buf.String())
}
