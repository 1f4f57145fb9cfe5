package whisper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/common"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/app/model"
	"whisper-transcribe/internal/app/util/files"
)

const providerName = "openai"

// OpenAIProviderConfig represents configuration specific to the OpenAI engine
type OpenAIProviderConfig struct {
	Language string
	Prompt   string
}

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	common.BaseProvider
	client *openai.Client
	config OpenAIProviderConfig
	logger *zap.Logger
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client, config OpenAIProviderConfig, logger *zap.Logger) *RemoteTranscriber {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RemoteTranscriber{BaseProvider: newBase(), client: client, config: config, logger: logger}
}

func newBase() common.BaseProvider {
	base := common.NewBaseProvider(providerName, "OpenAI Whisper API", common.ProviderTypeRemote)
	base.DefaultModel = openai.Whisper1
	base.AvailableModels = []string{openai.Whisper1, "gpt-4o-transcribe", "gpt-4o-mini-transcribe"}
	return base
}

// APIModel maps a local whisper size to the hosted whisper-1 model.
// Any other name is sent as is.
func APIModel(name string) string {
	if name == "" || model.IsWhisperSize(name) {
		return openai.Whisper1
	}
	return name
}

// LoadModel selects the hosted model. Nothing is downloaded.
func (rt *RemoteTranscriber) LoadModel(ctx context.Context, name string) (api.Model, error) {
	apiModel := APIModel(name)
	if apiModel != name {
		rt.logger.Info("using hosted model", zap.String("requested", name), zap.String("model", apiModel))
	}
	return &remoteModel{name: apiModel, transcriber: rt}, nil
}

type remoteModel struct {
	name        string
	transcriber *RemoteTranscriber
}

// verboseJSON is only offered by whisper-1
func (m *remoteModel) format() openai.AudioResponseFormat {
	if m.name == openai.Whisper1 {
		return openai.AudioResponseFormatVerboseJSON
	}
	return openai.AudioResponseFormatJSON
}

// Transcribe uploads the file and returns the API's text as is.
func (m *remoteModel) Transcribe(ctx context.Context, inputFilePath string) (*model.Transcription, error) {
	if err := files.CheckReadable(inputFilePath); err != nil {
		return nil, err
	}

	rt := m.transcriber
	req := openai.AudioRequest{
		Model:    m.name,
		FilePath: inputFilePath,
		Prompt:   rt.config.Prompt,
		Language: model.ExplicitLanguage(rt.config.Language),
		Format:   m.format(),
	}

	start := time.Now()
	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, handleAPIError(err)
	}

	result := &model.Transcription{
		Text:     resp.Text,
		Language: resp.Language,
		Model:    m.name,
		Engine:   providerName,
		Duration: time.Since(start),
	}
	for _, seg := range resp.Segments {
		result.Segments = append(result.Segments, model.Segment{
			ID:    seg.ID,
			Start: seconds(seg.Start),
			End:   seconds(seg.End),
			Text:  seg.Text,
		})
	}
	return result, nil
}

func (m *remoteModel) Close() error {
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// handleAPIError converts OpenAI API errors to TranscriptionError
func handleAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		e := provider.ErrorFromStatus(providerName, apiErr.HTTPStatusCode, apiErr.Message)
		e.Cause = apperrors.Mark(err, apperrors.ErrTranscriptionFailed)
		if apiErr.HTTPStatusCode == http.StatusBadRequest {
			e.Code = "invalid_file"
		}
		return e
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		e := provider.ErrorFromStatus(providerName, reqErr.HTTPStatusCode, string(reqErr.Body))
		e.Cause = apperrors.Mark(err, apperrors.ErrRequestFailed)
		return e
	}

	return &provider.TranscriptionError{
		Code:      "request_error",
		Message:   fmt.Sprintf("transcription request failed: %v", err),
		Provider:  providerName,
		Retryable: true,
		Cause:     apperrors.Mark(err, apperrors.ErrRequestFailed),
	}
}
