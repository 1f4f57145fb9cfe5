package whisper_cpp

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/common"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/app/model"
	"whisper-transcribe/internal/app/util/files"
)

const providerName = "whisper_cpp"

// maxStderr bounds how much of the binary's stderr ends up in an error.
const maxStderr = 2048

// waitDelay bounds how long a cancelled run waits for its output pipes.
const waitDelay = 2 * time.Second

// LocalProviderConfig configures the whisper.cpp command line engine
type LocalProviderConfig struct {
	BinaryPath string
	ModelsDir  string
	Language   string
	Prompt     string
	Threads    int
	TempDir    string
}

// LocalTranscriber runs the whisper.cpp command line binary.
type LocalTranscriber struct {
	common.BaseProvider
	config LocalProviderConfig
	logger *zap.Logger
}

// NewLocalTranscriber creates a new instance of LocalTranscriber.
func NewLocalTranscriber(config LocalProviderConfig, logger *zap.Logger) *LocalTranscriber {
	if config.Language == "" {
		config.Language = model.AutoLanguage
	}
	if config.TempDir == "" {
		config.TempDir = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LocalTranscriber{
		BaseProvider: newBase(),
		config:       config,
		logger:       logger,
	}
}

func newBase() common.BaseProvider {
	base := common.NewBaseProvider(providerName, "whisper.cpp (command line)", common.ProviderTypeLocal)
	base.RequiresBinary = true
	base.DefaultModel = "base"
	base.AvailableModels = model.WhisperModels
	return base
}

// LoadModel checks that the binary and the model file are present.
// whisper.cpp itself loads the model on every invocation.
func (lt *LocalTranscriber) LoadModel(ctx context.Context, name string) (api.Model, error) {
	binary, err := exec.LookPath(files.ExpandUser(lt.config.BinaryPath))
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrModelLoadFailed)
	}

	modelPath, err := ResolveModelPath(lt.config.ModelsDir, name)
	if err != nil {
		return nil, err
	}

	lt.logger.Debug("resolved model", zap.String("binary", binary), zap.String("model_path", modelPath))
	return &localModel{
		name:       name,
		binaryPath: binary,
		modelPath:  modelPath,
		config:     lt.config,
		logger:     lt.logger,
	}, nil
}

type localModel struct {
	name       string
	binaryPath string
	modelPath  string
	config     LocalProviderConfig
	logger     *zap.Logger
}

// cliOutput is the document written by whisper-cli -oj
type cliOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func (m *localModel) args(inputFilePath, outputBase string) []string {
	args := []string{
		"-m", m.modelPath,
		"-f", inputFilePath,
		"-l", m.config.Language,
		"-oj",
		"-of", outputBase,
		"-np",
	}
	if m.config.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(m.config.Threads))
	}
	if m.config.Prompt != "" {
		args = append(args, "--prompt", m.config.Prompt)
	}
	return args
}

// Transcribe runs the binary on inputFilePath and parses its JSON output.
func (m *localModel) Transcribe(ctx context.Context, inputFilePath string) (*model.Transcription, error) {
	if err := files.CheckReadable(inputFilePath); err != nil {
		return nil, err
	}

	outputBase := filepath.Join(m.config.TempDir, "whisper-transcribe-"+uuid.NewString())
	outputFile := outputBase + ".json"
	defer os.Remove(outputFile)

	args := m.args(inputFilePath, outputBase)
	command := exec.CommandContext(ctx, m.binaryPath, args...)
	setProcessGroup(command)
	command.WaitDelay = waitDelay
	var stderr bytes.Buffer
	command.Stderr = &stderr

	m.logger.Debug("running transcription command",
		zap.String("command", m.binaryPath+" "+strings.Join(args, " ")))

	start := time.Now()
	if err := command.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &provider.TranscriptionError{
			Code:     "command_failed",
			Message:  "command execution error: " + err.Error() + ", stderr: " + tail(stderr.String(), maxStderr),
			Provider: providerName,
			Cause:    apperrors.ErrTranscriptionFailed,
		}
	}

	data, err := files.ReadOutputFile(outputFile)
	if err != nil {
		return nil, apperrors.Wrap(err, "read whisper.cpp output")
	}

	var out cliOutput
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, apperrors.Wrap(apperrors.Mark(err, apperrors.ErrResponseInvalid), "parse whisper.cpp output")
	}

	result := &model.Transcription{
		Language: out.Result.Language,
		Model:    m.name,
		Engine:   providerName,
		Duration: time.Since(start),
	}
	for i, seg := range out.Transcription {
		result.Segments = append(result.Segments, model.Segment{
			ID:    i,
			Start: time.Duration(seg.Offsets.From) * time.Millisecond,
			End:   time.Duration(seg.Offsets.To) * time.Millisecond,
			Text:  seg.Text,
		})
	}
	result.Text = model.TextFromSegments(result.Segments)

	return result, nil
}

func (m *localModel) Close() error {
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
