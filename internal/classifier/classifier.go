// Package classifier turns a decoded face into the strings shown to the user.
package classifier

import (
	"fmt"
	"strconv"

	"github.com/example/insultr/internal/face"
)

// Threshold is the minimum score, inclusive, for an emotion to be reported.
const Threshold = 55.0

const (
	// UnknownAge is returned when the age is not reported.
	UnknownAge = "-1"
	// UnknownEmotion is returned when no emotion reaches Threshold.
	UnknownEmotion = "Unknown?"
	// Title is the heading of the summary dialog.
	Title = "You"
)

type rule struct {
	label string
	score func(*face.Emotion) *float64
}

// Order matters: the first rule at or above Threshold wins, regardless of
// how the other scores compare.
var rules = []rule{
	{"Angry", func(e *face.Emotion) *float64 { return e.Anger }},
	{"Digusted", func(e *face.Emotion) *float64 { return e.Disgust }},
	{"Scared", func(e *face.Emotion) *float64 { return e.Fear }},
	{"Neutral", func(e *face.Emotion) *float64 { return e.Neutral }},
	{"Sad", func(e *face.Emotion) *float64 { return e.Sadness }},
	{"Surprised", func(e *face.Emotion) *float64 { return e.Surprise }},
	{"Happy", func(e *face.Emotion) *float64 { return e.Happiness }},
}

// ClassifyAge returns the decimal age, or UnknownAge when absent.
func ClassifyAge(age *face.Age) string {
	if age == nil || age.Value == nil {
		return UnknownAge
	}
	return strconv.Itoa(*age.Value)
}

// ClassifyEmotion returns the label of the first emotion, in priority order,
// whose score is present and at least Threshold.
func ClassifyEmotion(emotion *face.Emotion) string {
	if emotion == nil {
		return UnknownEmotion
	}
	for _, r := range rules {
		if v := r.score(emotion); v != nil && *v >= Threshold {
			return r.label
		}
	}
	return UnknownEmotion
}

// Summary is what gets shown for one analysed face.
type Summary struct {
	Age     string
	Emotion string
	Title   string
	Message string
}

// Summarize classifies a face and renders the dialog text.
func Summarize(r *face.Result) Summary {
	var attrs *face.Attributes
	if r != nil {
		attrs = r.Attributes
	}
	var (
		age     *face.Age
		emotion *face.Emotion
	)
	if attrs != nil {
		age = attrs.Age
		emotion = attrs.Emotion
	}

	s := Summary{
		Age:     ClassifyAge(age),
		Emotion: ClassifyEmotion(emotion),
		Title:   Title,
	}
	s.Message = Message(s.Age, s.Emotion)
	return s
}

// Message renders the dialog body for an age and emotion label.
func Message(age, emotion string) string {
	return fmt.Sprintf("Here are some things I noticed about you...\n\nYour Age: %s\nYour Emotion: %s", age, emotion)
}
