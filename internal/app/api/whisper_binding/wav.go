package whisper_binding

import (
	"os"

	"github.com/go-audio/wav"

	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/app/util/files"
)

// SampleRate is the only rate whisper models accept.
const SampleRate = 16000

// DecodeWAV reads a 16 kHz WAV file into mono float32 samples in [-1, 1].
// Multi-channel input is averaged down to one channel. No resampling is done.
func DecodeWAV(path string) ([]float32, error) {
	if err := files.CheckReadable(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrFileReadFailed)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupportedAudio, "%s is not a WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, apperrors.Mark(apperrors.Wrapf(err, "decode %s", path), apperrors.ErrUnsupportedAudio)
	}
	if buf.Format == nil || buf.Format.SampleRate != SampleRate {
		rate := 0
		if buf.Format != nil {
			rate = buf.Format.SampleRate
		}
		return nil, apperrors.Wrapf(apperrors.ErrUnsupportedAudio,
			"%s has sample rate %d Hz, need %d Hz", path, rate, SampleRate)
	}

	data := buf.AsFloat32Buffer().Data
	channels := buf.Format.NumChannels
	if channels <= 1 {
		return data, nil
	}

	mono := make([]float32, len(data)/channels)
	for i := range mono {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += data[i*channels+c]
		}
		mono[i] = sum / float32(channels)
	}
	return mono, nil
}
