// Package models defines the domain types for LifeNote.
package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lifenote/internal/apperr"
)

// Topic is one of the fixed note categories.
type Topic string

const (
	TopicDiary    Topic = "diary"
	TopicHealth   Topic = "health"
	TopicDev      Topic = "dev"
	TopicLearning Topic = "learning"

	// DefaultTopic is used when a draft is submitted without a selection.
	DefaultTopic = TopicDiary
)

// TopicInfo carries the display attributes of a topic.
type TopicInfo struct {
	Topic Topic  `json:"topic"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

// Topics lists every known topic in display order.
var Topics = []TopicInfo{
	{Topic: TopicDiary, Label: "Diary", Emoji: "📝"},
	{Topic: TopicHealth, Label: "Health", Emoji: "🏋"},
	{Topic: TopicDev, Label: "Software dev", Emoji: "👩‍💻"},
	{Topic: TopicLearning, Label: "Learning", Emoji: "📚"},
}

// Valid reports whether t is a known topic.
func (t Topic) Valid() bool {
	for _, info := range Topics {
		if info.Topic == t {
			return true
		}
	}
	return false
}

// Emoji returns the topic's emoji, falling back to the diary one.
func (t Topic) Emoji() string {
	for _, info := range Topics {
		if info.Topic == t {
			return info.Emoji
		}
	}
	return Topics[0].Emoji
}

// ResolveTopic applies the default rule: an empty selection resolves to
// DefaultTopic, a known topic to itself, anything else is rejected.
func ResolveTopic(t Topic) (Topic, error) {
	t = Topic(strings.TrimSpace(string(t)))
	if t == "" {
		return DefaultTopic, nil
	}
	if !t.Valid() {
		return "", apperr.Validation("topic", "unknown topic "+string(t))
	}
	return t, nil
}

// TimeDetails is the calendar snapshot embedded in every note.
type TimeDetails struct {
	Year      int   `json:"year"`
	Month     int   `json:"month"`
	Week      int   `json:"week"`
	Date      int   `json:"date"`
	DayOfWeek int   `json:"dayOfWeek"`
	Hour      int   `json:"hour"`
	Minute    int   `json:"minute"`
	Timestamp int64 `json:"timestamp"`
}

// Note is a persisted journal entry.
type Note struct {
	ID          string      `json:"id"`
	Content     string      `json:"content"`
	Topic       Topic       `json:"topic"`
	TimeDetails TimeDetails `json:"timeDetails"`
	CreatedAt   time.Time   `json:"createdAt,omitempty"`
}

// Draft is a note that has not been submitted yet.
type Draft struct {
	Content string `json:"content"`
	Topic   Topic  `json:"topic,omitempty"`
}

// Blank reports whether the draft content is empty after trimming.
func (d Draft) Blank() bool {
	return strings.TrimSpace(d.Content) == ""
}

// Validate checks the draft before it may be persisted.
func (d Draft) Validate() error {
	if d.Blank() {
		return apperr.Validation("content", "please enter note content")
	}
	if d.Topic == "" {
		return nil
	}
	if err := validation.Validate(d.Topic, validation.In(TopicDiary, TopicHealth, TopicDev, TopicLearning)); err != nil {
		return apperr.Validation("topic", "unknown topic "+string(d.Topic))
	}
	return nil
}
