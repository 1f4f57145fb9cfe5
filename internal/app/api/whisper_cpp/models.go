package whisper_cpp

import (
	"os"
	"path/filepath"
	"strings"

	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/app/model"
	"whisper-transcribe/internal/app/util/files"
)

// ResolveModelPath turns a model name into a ggml model file.
// name may be a path to an existing file, a whisper size ("base",
// "large-v3", ...) looked up as <modelsDir>/ggml-<size>.bin, or a bare file
// name inside modelsDir. Nothing is downloaded.
func ResolveModelPath(modelsDir, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", apperrors.RequiredField("model name")
	}

	if looksLikePath(name) {
		path := files.ExpandUser(name)
		if isFile(path) {
			return path, nil
		}
		return "", apperrors.Wrapf(apperrors.ErrModelNotFound, "%s", path)
	}

	dir := files.ExpandUser(modelsDir)
	var candidates []string
	if strings.HasSuffix(name, ".bin") {
		candidates = []string{name, filepath.Join(dir, name)}
	} else {
		candidates = []string{filepath.Join(dir, model.GGMLFileName(name))}
		if !model.IsWhisperSize(name) {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	for _, candidate := range candidates {
		if isFile(candidate) {
			return candidate, nil
		}
	}

	return "", apperrors.Wrapf(apperrors.ErrModelNotFound,
		"%q: looked for %s (download it into the models directory or pass a file path)",
		name, strings.Join(candidates, ", "))
}

func looksLikePath(name string) bool {
	return strings.HasPrefix(name, "~") ||
		strings.ContainsRune(name, '/') ||
		strings.ContainsRune(name, filepath.Separator)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
