//go:build whisper

package whisper_binding

import (
	"context"
	"io"
	"time"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/api/whisper_cpp"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/app/model"
)

// Available reports whether the binary was built with the bindings.
const Available = true

// LoadModel loads the ggml model into memory once.
func (bt *BindingTranscriber) LoadModel(ctx context.Context, name string) (api.Model, error) {
	path, err := whisper_cpp.ResolveModelPath(bt.config.ModelsDir, name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	m, err := whisper.New(path)
	if err != nil {
		return nil, apperrors.Mark(apperrors.Wrapf(err, "load %s", path), apperrors.ErrModelLoadFailed)
	}
	bt.logger.Debug("model loaded", zap.String("path", path), zap.Duration("elapsed", time.Since(start)))

	return &bindingModel{name: name, model: m, config: bt.config, logger: bt.logger}, nil
}

type bindingModel struct {
	name   string
	model  whisper.Model
	config BindingConfig
	logger *zap.Logger
}

func (m *bindingModel) Transcribe(ctx context.Context, audioPath string) (*model.Transcription, error) {
	samples, err := DecodeWAV(audioPath)
	if err != nil {
		return nil, err
	}

	wctx, err := m.model.NewContext()
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrModelLoadFailed)
	}

	language := m.config.Language
	if language == "" {
		language = model.AutoLanguage
	}
	if err := wctx.SetLanguage(language); err != nil {
		return nil, apperrors.Mark(apperrors.Wrapf(err, "language %q", language), apperrors.ErrInvalidConfig)
	}
	if m.config.Threads > 0 {
		wctx.SetThreads(uint(m.config.Threads))
	}
	if m.config.Prompt != "" {
		wctx.SetInitialPrompt(m.config.Prompt)
	}

	// The bindings offer no cancellation; the encoder callback is the
	// only hook, so a cancelled context aborts before encoding.
	encoderBegin := func() bool { return ctx.Err() == nil }

	start := time.Now()
	if err := wctx.Process(samples, encoderBegin, nil, nil); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.Mark(err, apperrors.ErrTranscriptionFailed)
	}

	result := &model.Transcription{
		Language: wctx.DetectedLanguage(),
		Model:    m.name,
		Engine:   providerName,
	}
	for {
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Mark(err, apperrors.ErrTranscriptionFailed)
		}
		result.Segments = append(result.Segments, model.Segment{
			ID:    seg.Num,
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	result.Text = model.TextFromSegments(result.Segments)
	result.Duration = time.Since(start)

	return result, nil
}

func (m *bindingModel) Close() error {
	return m.model.Close()
}
