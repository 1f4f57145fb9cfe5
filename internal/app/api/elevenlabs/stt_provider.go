package elevenlabs

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
	providerName   = "elevenlabs"
	defaultBaseURL = "https://api.elevenlabs.io/v1"
	// maxErrorBody bounds how much of an error response is kept
	maxErrorBody = 4096
)

// ElevenLabsSTTProvider transcribes through the ElevenLabs Speech-to-Text API
type ElevenLabsSTTProvider struct {
	common.BaseProvider
	config ElevenLabsConfig
	client *http.Client
	logger *zap.Logger
}

// ElevenLabsConfig represents configuration for ElevenLabs STT provider
type ElevenLabsConfig struct {
	APIKey   string
	BaseURL  string
	Language string
	Timeout  time.Duration
}

// ElevenLabsResponse represents the response from ElevenLabs STT API
type ElevenLabsResponse struct {
	Text         string  `json:"text"`
	LanguageCode string  `json:"language_code,omitempty"`
	Words        []Word  `json:"words,omitempty"`
	LanguageProb float64 `json:"language_probability,omitempty"`
}

// Word represents word-level timing information from ElevenLabs
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Type  string  `json:"type"`
}

// NewElevenLabsSTTProvider creates a new ElevenLabs STT provider
func NewElevenLabsSTTProvider(config ElevenLabsConfig, logger *zap.Logger) *ElevenLabsSTTProvider {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ElevenLabsSTTProvider{
		BaseProvider: newBase(),
		config:       config,
		client:       &http.Client{Timeout: config.Timeout},
		logger:       logger,
	}
}

func newBase() common.BaseProvider {
	base := common.NewBaseProvider(providerName, "ElevenLabs Speech-to-Text", common.ProviderTypeRemote)
	base.DefaultModel = "scribe_v1"
	base.AvailableModels = []string{"scribe_v1", "scribe_v1_experimental"}
	return base
}

// APIModel maps whisper size names to the default Scribe model.
func APIModel(name string) string {
	if name == "" || model.IsWhisperSize(name) {
		return "scribe_v1"
	}
	return name
}

// LoadModel selects the hosted model
func (el *ElevenLabsSTTProvider) LoadModel(ctx context.Context, name string) (api.Model, error) {
	apiModel := APIModel(name)
	if apiModel != name {
		el.logger.Info("using hosted model", zap.String("requested", name), zap.String("model", apiModel))
	}
	return &sttModel{name: apiModel, provider: el}, nil
}

type sttModel struct {
	name     string
	provider *ElevenLabsSTTProvider
}

func (m *sttModel) Close() error {
	return nil
}

// Transcribe uploads the audio file and returns the API's text.
func (m *sttModel) Transcribe(ctx context.Context, inputFilePath string) (*model.Transcription, error) {
	if err := files.CheckReadable(inputFilePath); err != nil {
		return nil, err
	}

	el := m.provider
	httpReq, err := el.createHTTPRequest(ctx, inputFilePath, m.name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := el.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &provider.TranscriptionError{
			Code:      "network_error",
			Message:   fmt.Sprintf("failed to call ElevenLabs API: %v", err),
			Provider:  providerName,
			Retryable: true,
			Cause:     apperrors.Mark(err, apperrors.ErrRequestFailed),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		e := provider.ErrorFromStatus(providerName, resp.StatusCode, strings.TrimSpace(string(body)))
		e.Cause = apperrors.ErrTranscriptionFailed
		return nil, e
	}

	var sttResp ElevenLabsResponse
	if err := json.NewDecoder(resp.Body).Decode(&sttResp); err != nil {
		return nil, &provider.TranscriptionError{
			Code:     "response_parse_error",
			Message:  fmt.Sprintf("failed to parse API response: %v", err),
			Provider: providerName,
			Cause:    apperrors.Mark(err, apperrors.ErrResponseInvalid),
		}
	}

	result := &model.Transcription{
		Text:     sttResp.Text,
		Language: sttResp.LanguageCode,
		Model:    m.name,
		Engine:   providerName,
		Duration: time.Since(start),
	}
	for i, w := range sttResp.Words {
		if w.Type != "word" {
			continue
		}
		result.Segments = append(result.Segments, model.Segment{
			ID:    i,
			Start: time.Duration(w.Start * float64(time.Second)),
			End:   time.Duration(w.End * float64(time.Second)),
			Text:  w.Text,
		})
	}
	return result, nil
}

// createHTTPRequest builds the multipart upload for the speech-to-text endpoint
func (el *ElevenLabsSTTProvider) createHTTPRequest(ctx context.Context, inputFilePath, modelID string) (*http.Request, error) {
	file, err := os.Open(inputFilePath)
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrFileReadFailed)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(inputFilePath))
	if err != nil {
		return nil, apperrors.Wrap(err, "create form file")
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrFileReadFailed)
	}

	fields := map[string]string{"model_id": modelID}
	if lang := model.ExplicitLanguage(el.config.Language); lang != "" {
		fields["language_code"] = lang
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, apperrors.Wrapf(err, "add %s field", k)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, apperrors.Wrap(err, "close multipart writer")
	}

	url := el.config.BaseURL + "/speech-to-text"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrRequestFailed)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("xi-api-key", el.config.APIKey)
	req.Header.Set("User-Agent", "whisper-transcribe")

	return req, nil
}
