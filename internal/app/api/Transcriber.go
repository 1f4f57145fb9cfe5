package api

import (
	"context"

	"whisper-transcribe/internal/app/common"
	"whisper-transcribe/internal/app/model"
)

// Engine loads named speech-recognition models.
type Engine interface {
	Info() common.ProviderInfo

	// LoadModel resolves and loads the named model. The caller owns the
	// returned Model and must Close it.
	LoadModel(ctx context.Context, name string) (Model, error)
}

// Model is a loaded model that can transcribe audio files.
type Model interface {
	Transcribe(ctx context.Context, audioPath string) (*model.Transcription, error)
	Close() error
}
