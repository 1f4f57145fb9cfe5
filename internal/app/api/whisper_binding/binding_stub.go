//go:build !whisper

package whisper_binding

import (
	"context"

	"whisper-transcribe/internal/app/api"
	apperrors "whisper-transcribe/internal/app/errors"
)

// Available reports whether the binary was built with the bindings.
const Available = false

// LoadModel fails: this binary was built without the "whisper" tag.
func (bt *BindingTranscriber) LoadModel(ctx context.Context, name string) (api.Model, error) {
	return nil, apperrors.Wrap(apperrors.ErrModelLoadFailed,
		`engine "whisper" needs a build with -tags whisper and libwhisper; use engine "whisper_cpp" instead`)
}
