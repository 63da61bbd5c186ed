// Package controller holds the journal's view state and the pure transition
// function that drives it, plus a Controller that runs the resulting effects
// against a note repository.
package controller

import (
	"github.com/starford/lifenote/internal/models"
)

// Mode is the top-level view.
type Mode string

const (
	ModeBrowsing Mode = "browsing"
	ModeWriting  Mode = "writing"
)

// TimeRange is the selected timeline filter.
type TimeRange string

const (
	RangeNone     TimeRange = ""
	RangeThisYear TimeRange = "this_year"
)

// ParseRange maps user input to a TimeRange.
func ParseRange(s string) (TimeRange, bool) {
	switch s {
	case "", "none":
		return RangeNone, true
	case string(RangeThisYear), "year":
		return RangeThisYear, true
	}
	return RangeNone, false
}

// NoticeKind classifies a user-facing notice.
type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice is a message to show the user once.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// State is the complete, serializable view state.
type State struct {
	Mode        Mode          `json:"mode"`
	Draft       models.Draft  `json:"draft"`
	Range       TimeRange     `json:"range"`
	Saving      bool          `json:"saving"`
	LoadingYear bool          `json:"loadingYear"`
	Year        int           `json:"year,omitempty"`
	Notes       []models.Note `json:"notes"`
	Notice      *Notice       `json:"notice,omitempty"`
}

// Initial returns the state the journal starts in.
func Initial() State {
	return State{Mode: ModeBrowsing}
}

// Busy reports whether a repository call is outstanding.
func (s State) Busy() bool {
	return s.Saving || s.LoadingYear
}

// clone copies s so that transitions never share the notes slice. Notices
// are immutable once created and are shared.
func (s State) clone() State {
	if s.Notes != nil {
		s.Notes = append([]models.Note(nil), s.Notes...)
	}
	return s
}
