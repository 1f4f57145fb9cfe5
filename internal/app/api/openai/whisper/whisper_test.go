package whisper

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	openaiclient "whisper-transcribe/internal/app/api/openai"
	"whisper-transcribe/internal/app/api/provider"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/config"
)

func newTestTranscriber(t *testing.T, handler http.HandlerFunc) (*RemoteTranscriber, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	audio := filepath.Join(t.TempDir(), "audio.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("fake mp3 data"), 0644))

	client := openaiclient.NewClient("sk-test-key-1234567890", server.URL+"/v1", 5*time.Second)
	return NewRemoteTranscriber(client, OpenAIProviderConfig{Language: "en"}, nil), audio
}

// TestRemoteTranscriber_Transcribe tests the RemoteTranscriber implementation
func TestRemoteTranscriber_Transcribe(t *testing.T) {
	tests := []struct {
		name          string
		mockResponse  string
		mockStatus    int
		expectedText  string
		expectError   bool
		errorCode     string
		errorContains string
	}{
		{
			name:         "successful transcription",
			mockResponse: `{"task":"transcribe","language":"english","text":"This is a test transcription","segments":[{"id":0,"start":0,"end":2.5,"text":"This is a test transcription"}]}`,
			mockStatus:   http.StatusOK,
			expectedText: "This is a test transcription",
		},
		{
			name:         "special characters",
			mockResponse: `{"text": "Hello, 世界! This is a test with émojis 🎵"}`,
			mockStatus:   http.StatusOK,
			expectedText: "Hello, 世界! This is a test with émojis 🎵",
		},
		{
			name:         "unauthorized",
			mockResponse: `{"error": {"message": "Invalid API key", "type": "invalid_request_error"}}`,
			mockStatus:   http.StatusUnauthorized,
			expectError:  true,
			errorCode:    "auth_error",
		},
		{
			name:         "rate limit",
			mockResponse: `{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`,
			mockStatus:   http.StatusTooManyRequests,
			expectError:  true,
			errorCode:    "rate_limit",
		},
		{
			name:          "server error",
			mockResponse:  `{"error": {"message": "Internal server error", "type": "server_error"}}`,
			mockStatus:    http.StatusInternalServerError,
			expectError:   true,
			errorCode:     "server_error",
			errorContains: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, audio := newTestTranscriber(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
				assert.Equal(t, "Bearer sk-test-key-1234567890", r.Header.Get("Authorization"))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.mockStatus)
				_, _ = io.WriteString(w, tt.mockResponse)
			})

			m, err := rt.LoadModel(context.Background(), "base")
			require.NoError(t, err)

			result, err := m.Transcribe(context.Background(), audio)
			if tt.expectError {
				require.Error(t, err)
				var terr *provider.TranscriptionError
				require.True(t, errors.As(err, &terr))
				assert.Equal(t, tt.errorCode, terr.Code)
				assert.Equal(t, "openai", terr.Provider)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedText, result.Text)
			assert.Equal(t, "whisper-1", result.Model)
		})
	}
}

func TestRemoteTranscriber_RequestFields(t *testing.T) {
	rt, audio := newTestTranscriber(t, func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		assert.Equal(t, "en", r.FormValue("language"))

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		assert.Equal(t, "audio.mp3", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"ok","segments":[{"id":0,"start":0.5,"end":1.25,"text":"ok"}]}`)
	})

	m, err := rt.LoadModel(context.Background(), "large-v3")
	require.NoError(t, err)

	result, err := m.Transcribe(context.Background(), audio)
	require.NoError(t, err)
	require.Len(t, result.Segments, 1)
	assert.Equal(t, 500*time.Millisecond, result.Segments[0].Start)
	assert.Equal(t, 1250*time.Millisecond, result.Segments[0].End)
}

func TestRemoteTranscriber_AutoLanguageIsOmitted(t *testing.T) {
	for _, lang := range []string{"", "auto"} {
		t.Run("language="+lang, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
					return
				}
				_, sent := r.MultipartForm.Value["language"]
				assert.False(t, sent, "detection sends no language field")

				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"text":"ok"}`)
			}))
			t.Cleanup(server.Close)

			audio := filepath.Join(t.TempDir(), "audio.mp3")
			require.NoError(t, os.WriteFile(audio, []byte("fake mp3 data"), 0644))

			client := openaiclient.NewClient("sk-test-key-1234567890", server.URL+"/v1", 5*time.Second)
			rt := NewRemoteTranscriber(client, OpenAIProviderConfig{Language: lang}, nil)

			m, err := rt.LoadModel(context.Background(), "base")
			require.NoError(t, err)
			result, err := m.Transcribe(context.Background(), audio)
			require.NoError(t, err)
			assert.Equal(t, "ok", result.Text)
		})
	}
}

func TestRemoteTranscriber_MissingFile(t *testing.T) {
	rt, audio := newTestTranscriber(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	m, err := rt.LoadModel(context.Background(), "whisper-1")
	require.NoError(t, err)

	_, err = m.Transcribe(context.Background(), audio+".missing")
	assert.True(t, errors.Is(err, apperrors.ErrFileNotFound))
}

func TestAPIModel(t *testing.T) {
	assert.Equal(t, "whisper-1", APIModel(""))
	assert.Equal(t, "whisper-1", APIModel("base"))
	assert.Equal(t, "whisper-1", APIModel("large"))
	assert.Equal(t, "gpt-4o-transcribe", APIModel("gpt-4o-transcribe"))
}

func TestCreateOpenAIProvider(t *testing.T) {
	cfg := &config.Config{}
	_, err := createOpenAIProvider(cfg, nil)
	assert.True(t, errors.Is(err, apperrors.ErrMissingAPIKey))

	cfg.APIKeys.OpenAI = "not-a-key"
	_, err = createOpenAIProvider(cfg, nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidAPIKey))

	cfg.APIKeys.OpenAIBaseURL = "http://localhost:8080/v1"
	engine, err := createOpenAIProvider(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", engine.Info().Name)
	assert.True(t, strings.Contains(engine.Info().DisplayName, "OpenAI"))
}
