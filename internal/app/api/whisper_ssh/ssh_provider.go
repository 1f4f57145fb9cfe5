package whisper_ssh

import (
	"bytes"
	"context"
	"os/exec"
	"path"
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

const (
	providerName = "whisper_ssh"
	maxOutput    = 2048
	waitDelay    = 2 * time.Second
)

// cleanupTimeout bounds removal of the uploaded copy after the run.
const cleanupTimeout = 30 * time.Second

// SSHWhisperConfig configures whisper.cpp on a remote host reached over SSH
type SSHWhisperConfig struct {
	Host       string // e.g. "user@gpu-box"
	RemoteDir  string // whisper.cpp checkout on the remote host
	BinaryPath string // relative to RemoteDir unless absolute
	ModelsDir  string // relative to RemoteDir unless absolute
	RemoteTmp  string
	Language   string
	Prompt     string
	Threads    int

	// Local clients; tests swap in fakes
	SSHCommand string
	SCPCommand string
}

// SSHWhisperProvider copies the audio to a remote host with scp and runs
// whisper-cli there with ssh.
type SSHWhisperProvider struct {
	common.BaseProvider
	config SSHWhisperConfig
	logger *zap.Logger
}

// NewSSHWhisperProvider creates a new SSH whisper provider
func NewSSHWhisperProvider(config SSHWhisperConfig, logger *zap.Logger) *SSHWhisperProvider {
	if config.RemoteDir == "" {
		config.RemoteDir = "."
	}
	if config.BinaryPath == "" {
		config.BinaryPath = "./build/bin/whisper-cli"
	}
	if config.ModelsDir == "" {
		config.ModelsDir = "models"
	}
	if config.RemoteTmp == "" {
		config.RemoteTmp = "/tmp"
	}
	if config.Language == "" {
		config.Language = model.AutoLanguage
	}
	if config.SSHCommand == "" {
		config.SSHCommand = "ssh"
	}
	if config.SCPCommand == "" {
		config.SCPCommand = "scp"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SSHWhisperProvider{BaseProvider: newBase(), config: config, logger: logger}
}

func newBase() common.BaseProvider {
	base := common.NewBaseProvider(providerName, "whisper.cpp over SSH", common.ProviderTypeRemote)
	base.RequiresInternet = false
	base.RequiresAPIKey = false
	base.DefaultModel = "base"
	base.AvailableModels = model.WhisperModels
	return base
}

// LoadModel checks that the local ssh and scp clients exist and resolves the
// remote model file. The remote side is first touched by Transcribe.
func (sp *SSHWhisperProvider) LoadModel(ctx context.Context, name string) (api.Model, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.RequiredField("model name")
	}
	for _, client := range []string{sp.config.SSHCommand, sp.config.SCPCommand} {
		if _, err := exec.LookPath(client); err != nil {
			return nil, apperrors.Mark(err, apperrors.ErrModelLoadFailed)
		}
	}

	modelPath := RemoteModelPath(sp.config.ModelsDir, name)
	sp.logger.Debug("remote model", zap.String("host", sp.config.Host), zap.String("model_path", modelPath))
	return &sshModel{name: name, modelPath: modelPath, config: sp.config, logger: sp.logger}, nil
}

// RemoteModelPath maps a whisper size to <modelsDir>/ggml-<size>.bin. Any
// other name is taken as a path on the remote host.
func RemoteModelPath(modelsDir, name string) string {
	if model.IsWhisperSize(name) {
		return path.Join(modelsDir, model.GGMLFileName(name))
	}
	return name
}

type sshModel struct {
	name      string
	modelPath string
	config    SSHWhisperConfig
	logger    *zap.Logger
}

func (m *sshModel) Close() error {
	return nil
}

// remoteCommand is the shell line run on the remote host
func (m *sshModel) remoteCommand(remoteFile string) string {
	args := []string{
		m.config.BinaryPath,
		"-m", m.modelPath,
		"-f", remoteFile,
		"-l", m.config.Language,
		"-nt", "-np",
	}
	if m.config.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(m.config.Threads))
	}
	if m.config.Prompt != "" {
		args = append(args, "--prompt", m.config.Prompt)
	}

	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellQuote(a)
	}
	return "cd " + shellQuote(m.config.RemoteDir) + " && " + strings.Join(quoted, " ")
}

// Transcribe uploads the file, runs whisper-cli remotely and returns its
// stdout. The uploaded copy is removed afterwards.
func (m *sshModel) Transcribe(ctx context.Context, inputFilePath string) (*model.Transcription, error) {
	if err := files.CheckReadable(inputFilePath); err != nil {
		return nil, err
	}

	remoteFile := path.Join(m.config.RemoteTmp, "whisper-transcribe-"+uuid.NewString()+filepath.Ext(inputFilePath))
	if _, err := m.run(ctx, m.config.SCPCommand, "-q", inputFilePath, m.config.Host+":"+remoteFile); err != nil {
		return nil, m.failure(ctx, "file_transfer_failed", "copy to remote", err, true)
	}
	defer m.cleanup(remoteFile)

	start := time.Now()
	stdout, err := m.run(ctx, m.config.SSHCommand, m.config.Host, m.remoteCommand(remoteFile))
	if err != nil {
		return nil, m.failure(ctx, "command_failed", "remote whisper-cli", err, true)
	}

	return &model.Transcription{
		Text:     strings.TrimSpace(stdout),
		Language: model.ExplicitLanguage(m.config.Language),
		Model:    m.name,
		Engine:   providerName,
		Duration: time.Since(start),
	}, nil
}

func (m *sshModel) run(ctx context.Context, name string, args ...string) (string, error) {
	command := exec.CommandContext(ctx, name, args...)
	command.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	m.logger.Debug("running command", zap.String("command", name), zap.Strings("args", args))
	if err := command.Run(); err != nil {
		return "", apperrors.Newf("%v, stderr: %s", err, tail(stderr.String()))
	}
	return stdout.String(), nil
}

func (m *sshModel) failure(ctx context.Context, code, step string, err error, retryable bool) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &provider.TranscriptionError{
		Code:      code,
		Message:   step + ": " + err.Error(),
		Provider:  providerName,
		Retryable: retryable,
		Cause:     apperrors.ErrTranscriptionFailed,
	}
}

func (m *sshModel) cleanup(remoteFile string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	if _, err := m.run(ctx, m.config.SSHCommand, m.config.Host, "rm -f "+shellQuote(remoteFile)); err != nil {
		m.logger.Warn("failed to remove remote file", zap.String("path", remoteFile), zap.Error(err))
	}
}

// shellQuote single-quotes s for a POSIX shell
func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./=:@+,", r))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxOutput {
		return s
	}
	return "..." + s[len(s)-maxOutput:]
}
