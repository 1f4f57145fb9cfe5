package whisper_server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/common"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/app/model"
	"whisper-transcribe/internal/app/util/files"
)

const (
	providerName = "whisper_server"
	maxErrorBody = 4096
)

// WhisperServerConfig represents configuration for the whisper.cpp server HTTP API
type WhisperServerConfig struct {
	BaseURL       string // e.g. "http://192.168.1.100:8080"
	InferencePath string // default "/inference"
	LoadPath      string // default "/load"
	Timeout       time.Duration
	Language      string
	Prompt        string
	Threads       int
}

// WhisperServerResponse is the verbose_json document returned by /inference
type WhisperServerResponse struct {
	Text     string                 `json:"text"`
	Task     string                 `json:"task,omitempty"`
	Language string                 `json:"language,omitempty"`
	Duration float64                `json:"duration,omitempty"`
	Segments []WhisperServerSegment `json:"segments,omitempty"`
}

// WhisperServerSegment represents a segment in verbose response
type WhisperServerSegment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// WhisperServerProvider transcribes via HTTP to a running whisper.cpp server
type WhisperServerProvider struct {
	common.BaseProvider
	config WhisperServerConfig
	client *http.Client
	logger *zap.Logger
}

// NewWhisperServerProvider creates a new whisper-server HTTP provider
func NewWhisperServerProvider(config WhisperServerConfig, logger *zap.Logger) *WhisperServerProvider {
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if config.InferencePath == "" {
		config.InferencePath = "/inference"
	}
	if config.LoadPath == "" {
		config.LoadPath = "/load"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WhisperServerProvider{
		BaseProvider: newBase(),
		config:       config,
		client:       &http.Client{Timeout: config.Timeout},
		logger:       logger,
	}
}

func newBase() common.BaseProvider {
	base := common.NewBaseProvider(providerName, "whisper.cpp server (HTTP)", common.ProviderTypeRemote)
	base.RequiresAPIKey = false
	base.DefaultModel = "base"
	base.AvailableModels = model.WhisperModels
	return base
}

// LoadModel asks the server to swap in a ggml file when name is a path on
// the server host. A size name uses whatever model the server was started
// with, since the server's model directory is unknown here.
func (wsp *WhisperServerProvider) LoadModel(ctx context.Context, name string) (api.Model, error) {
	if !strings.HasSuffix(name, ".bin") && !strings.ContainsRune(name, '/') {
		wsp.logger.Debug("using the model loaded by the server", zap.String("requested", name))
		return &serverModel{name: name, provider: wsp}, nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("model", name); err != nil {
		return nil, apperrors.Wrap(err, "add model field")
	}
	if err := writer.Close(); err != nil {
		return nil, apperrors.Wrap(err, "close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wsp.config.BaseURL+wsp.config.LoadPath, &body)
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrRequestFailed)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := wsp.client.Do(req)
	if err != nil {
		return nil, apperrors.Mark(apperrors.Wrap(err, "load model on server"), apperrors.ErrModelLoadFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apperrors.Wrapf(apperrors.ErrModelLoadFailed, "server returned HTTP %d: %s",
			resp.StatusCode, strings.TrimSpace(string(data)))
	}

	wsp.logger.Info("model loaded on server", zap.String("model", name))
	return &serverModel{name: name, provider: wsp}, nil
}

type serverModel struct {
	name     string
	provider *WhisperServerProvider
}

func (m *serverModel) Close() error {
	return nil
}

func (m *serverModel) Transcribe(ctx context.Context, inputFilePath string) (*model.Transcription, error) {
	if err := files.CheckReadable(inputFilePath); err != nil {
		return nil, err
	}

	wsp := m.provider
	body, contentType, err := wsp.createMultipartForm(inputFilePath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wsp.config.BaseURL+wsp.config.InferencePath, body)
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrRequestFailed)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := wsp.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &provider.TranscriptionError{
			Code:      "network_error",
			Message:   fmt.Sprintf("failed to reach whisper server: %v", err),
			Provider:  providerName,
			Retryable: true,
			Cause:     apperrors.Mark(err, apperrors.ErrRequestFailed),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		e := provider.ErrorFromStatus(providerName, resp.StatusCode, strings.TrimSpace(string(data)))
		e.Cause = apperrors.ErrTranscriptionFailed
		return nil, e
	}

	var serverResp WhisperServerResponse
	if err := json.NewDecoder(resp.Body).Decode(&serverResp); err != nil {
		return nil, &provider.TranscriptionError{
			Code:     "response_parse_error",
			Message:  fmt.Sprintf("failed to parse server response: %v", err),
			Provider: providerName,
			Cause:    apperrors.Mark(err, apperrors.ErrResponseInvalid),
		}
	}

	result := &model.Transcription{
		Text:     serverResp.Text,
		Language: serverResp.Language,
		Model:    m.name,
		Engine:   providerName,
		Duration: time.Since(start),
	}
	for _, seg := range serverResp.Segments {
		result.Segments = append(result.Segments, model.Segment{
			ID:    seg.ID,
			Start: time.Duration(seg.Start * float64(time.Second)),
			End:   time.Duration(seg.End * float64(time.Second)),
			Text:  seg.Text,
		})
	}
	return result, nil
}

// createMultipartForm builds the /inference upload
func (wsp *WhisperServerProvider) createMultipartForm(inputFilePath string) (*bytes.Buffer, string, error) {
	file, err := os.Open(inputFilePath)
	if err != nil {
		return nil, "", apperrors.Mark(err, apperrors.ErrFileReadFailed)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(inputFilePath))
	if err != nil {
		return nil, "", apperrors.Wrap(err, "create form file")
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", apperrors.Mark(err, apperrors.ErrFileReadFailed)
	}

	language := model.ExplicitLanguage(wsp.config.Language)
	if language == "" {
		language = model.AutoLanguage
	}
	fields := [][2]string{
		{"response_format", "verbose_json"},
		{"language", language},
	}
	if wsp.config.Prompt != "" {
		fields = append(fields, [2]string{"prompt", wsp.config.Prompt})
	}
	if wsp.config.Threads > 0 {
		fields = append(fields, [2]string{"threads", strconv.Itoa(wsp.config.Threads)})
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, "", apperrors.Wrapf(err, "add %s field", f[0])
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", apperrors.Wrap(err, "close multipart writer")
	}
	return body, writer.FormDataContentType(), nil
}
