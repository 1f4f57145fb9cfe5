package converter

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/app/model"
	"whisper-transcribe/internal/app/util/files"
)

// Request names one audio file and, optionally, where its text goes.
type Request struct {
	AudioPath  string
	OutputPath string
}

// Result describes a completed conversion. Paths are the resolved ones.
type Result struct {
	AudioPath     string
	OutputPath    string
	Transcription *model.Transcription
	Elapsed       time.Duration
}

type Converter struct {
	engine    api.Engine
	modelName string
	logger    *zap.Logger
	progress  *ProgressManager
}

func NewConverter(engine api.Engine, modelName string, logger *zap.Logger, progress ProgressConfig) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		engine:    engine,
		modelName: modelName,
		logger:    logger,
		progress:  NewProgressManager(progress),
	}
}

// Do loads the model, transcribes one audio file and writes the text.
func (c *Converter) Do(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	audioPath, outputPath, err := files.ResolvePaths(req.AudioPath, req.OutputPath)
	if err != nil {
		return nil, err
	}

	spinner := c.progress.Spinner()
	defer spinner.Stop()

	c.logger.Info("loading model",
		zap.String("engine", c.engine.Info().Name),
		zap.String("model", c.modelName))
	spinner.SetStage("loading model " + c.modelName)

	m, err := c.engine.LoadModel(ctx, c.modelName)
	if err != nil {
		return nil, apperrors.Wrapf(err, "load model %q", c.modelName)
	}
	defer func() {
		if err := m.Close(); err != nil {
			c.logger.Warn("failed to release model", zap.Error(err))
		}
	}()

	c.logger.Info("processing audio file", zap.String("path", audioPath))
	spinner.SetStage("transcribing " + filepath.Base(audioPath))

	transcription, err := m.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, apperrors.Wrapf(err, "transcribe %s", audioPath)
	}
	if transcription == nil {
		return nil, apperrors.Wrapf(apperrors.ErrResponseInvalid, "transcribe %s: empty result", audioPath)
	}

	if err := files.WriteTranscript(outputPath, transcription.Text); err != nil {
		return nil, apperrors.Wrapf(err, "save transcription to %s", outputPath)
	}
	spinner.Done()

	result := &Result{
		AudioPath:     audioPath,
		OutputPath:    outputPath,
		Transcription: transcription,
		Elapsed:       time.Since(start),
	}
	c.logger.Info("transcription saved",
		zap.String("path", outputPath),
		zap.Int("chars", len(transcription.Text)),
		zap.String("language", transcription.Language),
		zap.Int("segments", len(transcription.Segments)),
		zap.Duration("elapsed", result.Elapsed))

	return result, nil
}
