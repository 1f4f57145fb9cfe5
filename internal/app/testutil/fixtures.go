package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleTranscripts are realistic engine outputs. Leading spaces are what
// whisper emits at segment starts.
var SampleTranscripts = []string{
	" Welcome to our podcast. Today we're discussing the latest developments in speech recognition.",
	" In this episode, we explore the impact of automation on modern businesses.",
	"这是一个测试音频文件。",
	"",
}

// WriteAudioFixture creates a placeholder audio file under dir.
// Engines are mocked in tests that use it, so the bytes are not decoded.
func WriteAudioFixture(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("RIFF\x00\x00\x00\x00WAVE"), 0644); err != nil {
		t.Fatalf("write audio fixture: %v", err)
	}
	return path
}

// Chdir switches into dir for the rest of the test.
func Chdir(t testing.TB, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
