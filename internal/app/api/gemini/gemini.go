package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/common"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/app/model"
	"whisper-transcribe/internal/app/util/files"
)

const providerName = "gemini"

// inlineLimit is the largest request the API accepts with inline audio.
// Larger files go through the Files API.
const inlineLimit = 20 << 20

const basePrompt = "Generate a verbatim transcript of the speech in this audio. " +
	"Output only the transcript text, without timestamps, speaker labels or commentary."

var mimeTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mp3",
	".aiff": "audio/aiff",
	".aif":  "audio/aiff",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".webm": "audio/webm",
}

// MimeType returns the audio MIME type for path's extension.
func MimeType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := mimeTypes[ext]; ok {
		return mt, nil
	}
	return "", apperrors.Wrapf(apperrors.ErrUnsupportedAudio, "no audio type known for %q", ext)
}

// APIModel maps whisper size names to the default Gemini model.
func APIModel(name, fallback string) string {
	if name == "" || model.IsWhisperSize(name) {
		return fallback
	}
	return name
}

// GeminiConfig configures the Gemini engine
type GeminiConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Language     string
	Prompt       string
	Timeout      time.Duration
}

// GeminiProvider transcribes by prompting a multimodal Gemini model.
type GeminiProvider struct {
	common.BaseProvider
	config GeminiConfig
	logger *zap.Logger
}

// NewGeminiProvider creates a new Gemini engine
func NewGeminiProvider(config GeminiConfig, logger *zap.Logger) *GeminiProvider {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GeminiProvider{BaseProvider: newBase(config.DefaultModel), config: config, logger: logger}
}

func newBase(defaultModel string) common.BaseProvider {
	base := common.NewBaseProvider(providerName, "Google Gemini", common.ProviderTypeRemote)
	base.DefaultModel = defaultModel
	base.AvailableModels = []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-2.0-flash"}
	return base
}

// LoadModel creates the API client for the selected model.
func (g *GeminiProvider) LoadModel(ctx context.Context, name string) (api.Model, error) {
	apiModel := APIModel(name, g.config.DefaultModel)
	if apiModel != name {
		g.logger.Info("using hosted model", zap.String("requested", name), zap.String("model", apiModel))
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     g.config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: g.config.Timeout},
	}
	if g.config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: g.config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, apperrors.Mark(apperrors.Wrap(err, "create gemini client"), apperrors.ErrModelLoadFailed)
	}

	return &geminiModel{name: apiModel, client: client, config: g.config, logger: g.logger}, nil
}

type geminiModel struct {
	name   string
	client *genai.Client
	config GeminiConfig
	logger *zap.Logger
}

func (m *geminiModel) Close() error {
	return nil
}

// Prompt builds the instruction sent along with the audio.
func Prompt(language, hint string) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	if language = model.ExplicitLanguage(language); language != "" {
		fmt.Fprintf(&b, " The speech is in language %q.", language)
	}
	if hint != "" {
		b.WriteString(" Context: ")
		b.WriteString(hint)
	}
	return b.String()
}

func (m *geminiModel) Transcribe(ctx context.Context, audioPath string) (*model.Transcription, error) {
	if err := files.CheckReadable(audioPath); err != nil {
		return nil, err
	}
	mimeType, err := MimeType(audioPath)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	audioPart, cleanup, err := m.audioPart(ctx, audioPath, mimeType)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(Prompt(m.config.Language, m.config.Prompt)),
			audioPart,
		}, genai.RoleUser),
	}
	resp, err := m.client.Models.GenerateContent(ctx, m.name, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, handleAPIError(err)
	}

	text := resp.Text()
	if text == "" {
		return nil, &provider.TranscriptionError{
			Code:     "empty_response",
			Message:  "model returned no text",
			Provider: providerName,
			Cause:    apperrors.ErrResponseInvalid,
		}
	}

	return &model.Transcription{
		Text:     text,
		Language: model.ExplicitLanguage(m.config.Language),
		Model:    m.name,
		Engine:   providerName,
		Duration: time.Since(start),
	}, nil
}

// audioPart inlines small files and uploads large ones. cleanup deletes
// any uploaded file.
func (m *geminiModel) audioPart(ctx context.Context, audioPath, mimeType string) (*genai.Part, func(), error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, nil, apperrors.Mark(err, apperrors.ErrFileReadFailed)
	}

	if info.Size() <= inlineLimit {
		data, err := os.ReadFile(audioPath)
		if err != nil {
			return nil, nil, apperrors.Mark(err, apperrors.ErrFileReadFailed)
		}
		return genai.NewPartFromBytes(data, mimeType), func() {}, nil
	}

	m.logger.Debug("uploading audio", zap.String("path", audioPath), zap.Int64("bytes", info.Size()))
	file, err := m.client.Files.UploadFromPath(ctx, audioPath, &genai.UploadFileConfig{MIMEType: mimeType})
	if err != nil {
		return nil, nil, handleAPIError(err)
	}
	cleanup := func() {
		if _, err := m.client.Files.Delete(context.Background(), file.Name, nil); err != nil {
			m.logger.Warn("failed to delete uploaded audio", zap.String("name", file.Name), zap.Error(err))
		}
	}

	for file.State == genai.FileStateProcessing {
		select {
		case <-ctx.Done():
			cleanup()
			return nil, nil, ctx.Err()
		case <-time.After(time.Second):
		}
		file, err = m.client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			cleanup()
			return nil, nil, handleAPIError(err)
		}
	}
	if file.State == genai.FileStateFailed {
		cleanup()
		return nil, nil, apperrors.Wrapf(apperrors.ErrUnsupportedAudio, "upload of %s was rejected", audioPath)
	}

	return genai.NewPartFromURI(file.URI, file.MIMEType), cleanup, nil
}

func handleAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		e := provider.ErrorFromStatus(providerName, apiErr.Code, apiErr.Message)
		e.Cause = apperrors.Mark(err, apperrors.ErrTranscriptionFailed)
		return e
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		e := provider.ErrorFromStatus(providerName, apiErrPtr.Code, apiErrPtr.Message)
		e.Cause = apperrors.Mark(err, apperrors.ErrTranscriptionFailed)
		return e
	}

	return &provider.TranscriptionError{
		Code:      "request_error",
		Message:   fmt.Sprintf("gemini request failed: %v", err),
		Provider:  providerName,
		Retryable: true,
		Cause:     apperrors.Mark(err, apperrors.ErrRequestFailed),
	}
}
