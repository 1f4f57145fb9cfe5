package converter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/app/testutil"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core), logs
}

func TestConverter_Do(t *testing.T) {
	tests := []struct {
		name       string
		outputArg  string
		wantOutput func(dir string) string
		text       string
	}{
		{
			name:       "default_output_in_working_directory",
			wantOutput: func(dir string) string { return filepath.Join(dir, "episode.txt") },
			text:       testutil.SampleTranscripts[0],
		},
		{
			name:       "explicit_output_path",
			outputArg:  "custom/result.md",
			wantOutput: func(dir string) string { return "custom/result.md" },
			text:       testutil.SampleTranscripts[2],
		},
		{
			name:       "empty_transcription_still_written",
			wantOutput: func(dir string) string { return filepath.Join(dir, "episode.txt") },
			text:       testutil.SampleTranscripts[3],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			testutil.Chdir(t, dir)
			require.NoError(t, os.Mkdir(filepath.Join(dir, "custom"), 0755))
			audio := testutil.WriteAudioFixture(t, dir, "episode.wav")

			mdl := &testutil.MockModel{}
			mdl.On("Transcribe", mock.Anything, audio).Return(testutil.TextResult(tt.text), nil).Once()
			mdl.On("Close").Return(nil).Once()

			engine := testutil.NewMockEngine("mock")
			engine.On("LoadModel", mock.Anything, "base").Return(mdl, nil).Once()

			logger, logs := newObservedLogger()
			c := NewConverter(engine, "base", logger, ProgressConfig{})

			result, err := c.Do(context.Background(), Request{AudioPath: audio, OutputPath: tt.outputArg})
			require.NoError(t, err)

			want := tt.wantOutput(dir)
			assert.Equal(t, want, result.OutputPath)
			assert.Equal(t, audio, result.AudioPath)

			content, err := os.ReadFile(want)
			require.NoError(t, err)
			assert.Equal(t, tt.text, string(content), "text is written unmodified")

			engine.AssertExpectations(t)
			mdl.AssertExpectations(t)

			messages := make([]string, 0, logs.Len())
			for _, entry := range logs.All() {
				messages = append(messages, entry.Message)
			}
			assert.Equal(t, []string{"loading model", "processing audio file", "transcription saved"}, messages)
		})
	}
}

func TestConverter_Do_LoadModelFails(t *testing.T) {
	dir := t.TempDir()
	audio := testutil.WriteAudioFixture(t, dir, "a.wav")
	output := filepath.Join(dir, "a.txt")

	engine := testutil.NewMockEngine("mock")
	engine.On("LoadModel", mock.Anything, "large-v3").
		Return(nil, apperrors.Wrapf(apperrors.ErrModelNotFound, "ggml-large-v3.bin")).Once()

	c := NewConverter(engine, "large-v3", zap.NewNop(), ProgressConfig{})
	_, err := c.Do(context.Background(), Request{AudioPath: audio, OutputPath: output})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrModelNotFound))
	assert.Contains(t, err.Error(), `load model "large-v3"`)
	assert.NoFileExists(t, output)
	engine.AssertExpectations(t)
}

func TestConverter_Do_TranscribeFails(t *testing.T) {
	dir := t.TempDir()
	audio := testutil.WriteAudioFixture(t, dir, "a.wav")
	output := filepath.Join(dir, "a.txt")

	mdl := &testutil.MockModel{}
	mdl.On("Transcribe", mock.Anything, audio).Return(nil, apperrors.ErrTranscriptionFailed).Once()
	mdl.On("Close").Return(nil).Once()

	engine := testutil.NewMockEngine("mock")
	engine.On("LoadModel", mock.Anything, "base").Return(mdl, nil)

	c := NewConverter(engine, "base", nil, ProgressConfig{})
	_, err := c.Do(context.Background(), Request{AudioPath: audio, OutputPath: output})

	assert.True(t, errors.Is(err, apperrors.ErrTranscriptionFailed))
	assert.NoFileExists(t, output)
	mdl.AssertExpectations(t)
}

func TestConverter_Do_MissingOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	audio := testutil.WriteAudioFixture(t, dir, "a.wav")
	output := filepath.Join(dir, "missing", "a.txt")

	mdl := &testutil.MockModel{}
	mdl.On("Transcribe", mock.Anything, audio).Return(testutil.TextResult("hi"), nil)
	mdl.On("Close").Return(nil)

	engine := testutil.NewMockEngine("mock")
	engine.On("LoadModel", mock.Anything, "base").Return(mdl, nil)

	c := NewConverter(engine, "base", nil, ProgressConfig{})
	_, err := c.Do(context.Background(), Request{AudioPath: audio, OutputPath: output})

	assert.True(t, errors.Is(err, apperrors.ErrFileWriteFailed))
	assert.NoDirExists(t, filepath.Dir(output))
}

func TestConverter_Do_CloseErrorIsLogged(t *testing.T) {
	dir := t.TempDir()
	audio := testutil.WriteAudioFixture(t, dir, "a.wav")

	mdl := &testutil.MockModel{}
	mdl.On("Transcribe", mock.Anything, audio).Return(testutil.TextResult("hi"), nil)
	mdl.On("Close").Return(errors.New("busy"))

	engine := testutil.NewMockEngine("mock")
	engine.On("LoadModel", mock.Anything, "base").Return(mdl, nil)

	core, logs := observer.New(zap.WarnLevel)
	c := NewConverter(engine, "base", zap.New(core), ProgressConfig{})
	_, err := c.Do(context.Background(), Request{AudioPath: audio, OutputPath: filepath.Join(dir, "a.txt")})

	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("failed to release model").Len())
}

func TestConverter_Do_EmptyAudioPath(t *testing.T) {
	engine := testutil.NewMockEngine("mock")
	c := NewConverter(engine, "base", nil, ProgressConfig{})

	_, err := c.Do(context.Background(), Request{})
	require.Error(t, err)
	engine.AssertNotCalled(t, "LoadModel", mock.Anything, mock.Anything)
}

func TestConverter_Do_WithSpinner(t *testing.T) {
	dir := t.TempDir()
	audio := testutil.WriteAudioFixture(t, dir, "a.wav")

	mdl := &testutil.MockModel{}
	mdl.On("Transcribe", mock.Anything, audio).Return(testutil.TextResult("hi"), nil)
	mdl.On("Close").Return(nil)

	engine := testutil.NewMockEngine("mock")
	engine.On("LoadModel", mock.Anything, "base").Return(mdl, nil)

	var buf bytes.Buffer
	c := NewConverter(engine, "base", nil, ProgressConfig{Enabled: true, Writer: &buf})
	_, err := c.Do(context.Background(), Request{AudioPath: audio, OutputPath: filepath.Join(dir, "a.txt")})

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
}
