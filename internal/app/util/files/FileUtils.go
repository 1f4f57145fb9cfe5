package files

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	apperrors "whisper-transcribe/internal/app/errors"
)

// TranscriptExt is appended to the audio base name to form the default output.
const TranscriptExt = ".txt"

// ExpandUser replaces a leading "~" or "~name" with the matching home
// directory. Paths that do not start with "~", or name an unknown user, are
// returned unchanged.
func ExpandUser(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	rest := path[1:]
	name := rest
	if i := strings.IndexAny(rest, `/`+string(filepath.Separator)); i >= 0 {
		name = rest[:i]
		rest = rest[i:]
	} else {
		rest = ""
	}

	var home string
	if name == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		home = h
	} else {
		u, err := user.Lookup(name)
		if err != nil {
			return path
		}
		home = u.HomeDir
	}

	if rest == "" {
		return home
	}
	return filepath.Join(home, rest)
}

// DefaultOutputPath returns "<cwd>/<audio base name without extension>.txt".
func DefaultOutputPath(audioPath string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", apperrors.Wrap(err, "get working directory")
	}
	return filepath.Join(cwd, StripExt(filepath.Base(audioPath))+TranscriptExt), nil
}

// StripExt drops the last extension of a base name. A leading dot does not
// start an extension, so ".bashrc" is returned as is.
func StripExt(base string) string {
	trimmed := strings.TrimLeft(base, ".")
	ext := filepath.Ext(trimmed)
	return base[:len(base)-len(ext)]
}

// ResolvePaths expands "~" in both paths and fills in the default output path
// when outputPath is empty.
func ResolvePaths(audioPath, outputPath string) (string, string, error) {
	if audioPath == "" {
		return "", "", apperrors.RequiredField("audio file path")
	}

	audioPath = ExpandUser(audioPath)
	if outputPath != "" {
		return audioPath, ExpandUser(outputPath), nil
	}

	out, err := DefaultOutputPath(audioPath)
	if err != nil {
		return "", "", err
	}
	return audioPath, out, nil
}

// CheckReadable reports ErrFileNotFound when path does not name a regular file.
func CheckReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.Mark(err, apperrors.ErrFileNotFound)
		}
		return apperrors.Mark(err, apperrors.ErrFileReadFailed)
	}
	if info.IsDir() {
		return apperrors.Wrapf(apperrors.ErrFileReadFailed, "%s is a directory", path)
	}
	return nil
}

// WriteTranscript writes text to path, creating or truncating the file.
// The parent directory must already exist.
func WriteTranscript(path string, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return apperrors.Mark(err, apperrors.ErrFileWriteFailed)
	}
	return nil
}

// ReadOutputFile reads the specified output file and returns its text content.
func ReadOutputFile(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", apperrors.Mark(err, apperrors.ErrFileReadFailed)
	}

	return strings.TrimSpace(string(content)), nil
}
