package model

import "strings"

// WhisperModels lists the whisper sizes accepted by name, smallest first.
var WhisperModels = []string{
	"tiny", "tiny.en",
	"base", "base.en",
	"small", "small.en",
	"medium", "medium.en",
	"large-v1", "large-v2", "large-v3", "large-v3-turbo",
}

var whisperAliases = map[string]string{
	"large": "large-v3",
	"turbo": "large-v3-turbo",
}

// CanonicalWhisperSize maps a size name or alias to its canonical form.
// ok is false for names that are not whisper sizes.
func CanonicalWhisperSize(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := whisperAliases[name]; ok {
		return alias, true
	}
	for _, m := range WhisperModels {
		if m == name {
			return m, true
		}
	}
	return "", false
}

// IsWhisperSize reports whether name is a whisper size or alias
func IsWhisperSize(name string) bool {
	_, ok := CanonicalWhisperSize(name)
	return ok
}

// GGMLFileName is the whisper.cpp file name for a size, e.g. ggml-base.bin.
func GGMLFileName(size string) string {
	if canonical, ok := CanonicalWhisperSize(size); ok {
		size = canonical
	}
	return "ggml-" + size + ".bin"
}
