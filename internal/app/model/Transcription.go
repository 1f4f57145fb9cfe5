package model

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// Transcription is what an engine hands back for one audio file.
// Text is the only field the program persists; the rest is for logging.
type Transcription struct {
	Text     string
	Language string
	Model    string
	Engine   string
	Duration time.Duration
	Segments []Segment
}

// Segment is a timed piece of a transcription, when the engine reports them.
type Segment struct {
	ID    int
	Start time.Duration
	End   time.Duration
	Text  string
}

// TextFromSegments concatenates segment texts in order. Engines emit segment
// text with its own leading whitespace, so no separator is inserted.
func TextFromSegments(segments []Segment) string {
	return strings.Join(lo.Map(segments, func(s Segment, _ int) string {
		return s.Text
	}), "")
}
