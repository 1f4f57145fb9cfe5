package whisper_server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisper-transcribe/internal/app/api/provider"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/config"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*WhisperServerProvider, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	audio := filepath.Join(t.TempDir(), "call.wav")
	require.NoError(t, os.WriteFile(audio, []byte("RIFF fake"), 0644))

	return NewWhisperServerProvider(WhisperServerConfig{
		BaseURL: server.URL + "/",
		Timeout: 5 * time.Second,
		Prompt:  "Kubernetes",
	}, nil), audio
}

func TestWhisperServer_Transcribe(t *testing.T) {
	p, audio := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inference", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		assert.Equal(t, "auto", r.FormValue("language"))
		assert.Equal(t, "Kubernetes", r.FormValue("prompt"))

		_, header, err := r.FormFile("file")
		if assert.NoError(t, err) {
			assert.Equal(t, "call.wav", header.Filename)
		}

		_, _ = io.WriteString(w, `{"task":"transcribe","language":"english","duration":3.2,
			"text":" Deploy it to Kubernetes.","segments":[{"id":0,"text":" Deploy it to Kubernetes.","start":0.0,"end":3.2}]}`)
	})

	m, err := p.LoadModel(context.Background(), "base")
	require.NoError(t, err)

	result, err := m.Transcribe(context.Background(), audio)
	require.NoError(t, err)
	assert.Equal(t, " Deploy it to Kubernetes.", result.Text)
	assert.Equal(t, "english", result.Language)
	require.Len(t, result.Segments, 1)
	assert.Equal(t, 3200*time.Millisecond, result.Segments[0].End)
}

func TestWhisperServer_LoadModelPath(t *testing.T) {
	var loaded string
	p, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/load", r.URL.Path)
		loaded = r.FormValue("model")
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})

	_, err := p.LoadModel(context.Background(), "models/ggml-small.bin")
	require.NoError(t, err)
	assert.Equal(t, "models/ggml-small.bin", loaded)
}

func TestWhisperServer_LoadModelFails(t *testing.T) {
	p, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such file", http.StatusInternalServerError)
	})

	_, err := p.LoadModel(context.Background(), "/srv/ggml-huge.bin")
	assert.True(t, errors.Is(err, apperrors.ErrModelLoadFailed))
	assert.Contains(t, err.Error(), "no such file")
}

func TestWhisperServer_HTTPError(t *testing.T) {
	p, audio := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"failed to read WAV file"}`, http.StatusBadRequest)
	})

	m, err := p.LoadModel(context.Background(), "base")
	require.NoError(t, err)

	_, err = m.Transcribe(context.Background(), audio)
	var terr *provider.TranscriptionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "request_error", terr.Code)
	assert.Contains(t, err.Error(), "failed to read WAV file")
}

func TestCreateWhisperServerProvider(t *testing.T) {
	cfg := &config.Config{}
	_, err := createWhisperServerProvider(cfg, nil)
	require.Error(t, err)

	cfg.Settings.ServerURL = "http://127.0.0.1:8080"
	engine, err := createWhisperServerProvider(cfg, nil)
	require.NoError(t, err)
	info := engine.Info()
	assert.True(t, info.RequiresInternet)
	assert.False(t, info.RequiresAPIKey)
}
