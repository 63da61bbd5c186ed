package controller

import (
	"github.com/starford/lifenote/internal/apperr"
	"github.com/starford/lifenote/internal/models"
)

// Event is a user intent or the outcome of an effect.
type Event interface {
	eventName() string
}

// User intents.
type (
	OpenWriter  struct{}
	EditContent struct{ Text string }
	PickTopic   struct{ Topic models.Topic }
	Cancel      struct{}
	Submit      struct{}
	// SelectRange picks a timeline filter. Year is the current year and is
	// filled in by the Controller when zero.
	SelectRange struct {
		Range TimeRange
		Year  int
	}
)

// Effect outcomes.
type (
	AppendSucceeded struct {
		Note models.Note
		// Draft is the draft that was submitted.
		Draft models.Draft
		// Year is the current year at completion, used for the refresh.
		Year int
	}
	AppendFailed struct {
		Err error
	}
	YearLoaded struct {
		Year  int
		Notes []models.Note
	}
	YearLoadFailed struct {
		Year int
		Err  error
	}
)

func (OpenWriter) eventName() string      { return "open_writer" }
func (EditContent) eventName() string     { return "edit_content" }
func (PickTopic) eventName() string       { return "pick_topic" }
func (Cancel) eventName() string          { return "cancel" }
func (Submit) eventName() string          { return "submit" }
func (SelectRange) eventName() string     { return "select_range" }
func (AppendSucceeded) eventName() string { return "append_succeeded" }
func (AppendFailed) eventName() string    { return "append_failed" }
func (YearLoaded) eventName() string      { return "year_loaded" }
func (YearLoadFailed) eventName() string  { return "year_load_failed" }

// EventName returns the stable name of ev, used in logs.
func EventName(ev Event) string {
	return ev.eventName()
}

// Effect is a repository call requested by a transition.
type Effect interface {
	effectName() string
}

// AppendNote asks for Draft to be stored.
type AppendNote struct {
	Draft models.Draft
}

// LoadYear asks for the notes of Year.
type LoadYear struct {
	Year int
}

func (AppendNote) effectName() string { return "append_note" }
func (LoadYear) effectName() string   { return "load_year" }

// Notices shown after effects complete.
const (
	NoticeSaved = "note saved"
)

// Transition applies ev to s and returns the next state plus the effects to
// run. It never mutates s.
func Transition(s State, ev Event) (State, []Effect) {
	next := s.clone()

	switch e := ev.(type) {
	case OpenWriter:
		next.Notice = nil
		next.Mode = ModeWriting
		return next, nil

	case EditContent:
		if next.Mode != ModeWriting {
			return s, nil
		}
		next.Draft.Content = e.Text
		return next, nil

	case PickTopic:
		next.Notice = nil
		if _, err := models.ResolveTopic(e.Topic); err != nil || e.Topic == "" {
			next.Notice = &Notice{Kind: NoticeError, Message: "unknown topic " + string(e.Topic)}
			return next, nil
		}
		next.Draft.Topic = e.Topic
		return next, nil

	case Cancel:
		next.Notice = nil
		next.Mode = ModeBrowsing
		next.Draft = models.Draft{}
		return next, nil

	case Submit:
		if s.Saving || s.Mode != ModeWriting {
			return s, nil
		}
		if err := next.Draft.Validate(); err != nil {
			next.Notice = &Notice{Kind: NoticeError, Message: apperr.Notice(err)}
			return next, nil
		}
		next.Notice = nil
		next.Saving = true
		return next, []Effect{AppendNote{Draft: next.Draft}}

	case SelectRange:
		next.Notice = nil
		next.Range = e.Range
		if e.Range != RangeThisYear {
			return next, nil
		}
		next.LoadingYear = true
		next.Year = e.Year
		return next, []Effect{LoadYear{Year: e.Year}}

	case AppendSucceeded:
		next.Saving = false
		next.Notice = &Notice{Kind: NoticeInfo, Message: NoticeSaved}
		// Only close the writer if the user has not started on something
		// else while the save was in flight.
		if next.Draft == e.Draft {
			next.Draft = models.Draft{}
			next.Mode = ModeBrowsing
		}
		if next.Range != RangeThisYear {
			return next, nil
		}
		year := e.Year
		if year == 0 {
			year = next.Year
		}
		next.LoadingYear = true
		next.Year = year
		return next, []Effect{LoadYear{Year: year}}

	case AppendFailed:
		next.Saving = false
		next.Notice = &Notice{Kind: NoticeError, Message: apperr.Notice(e.Err)}
		return next, nil

	case YearLoaded:
		next.LoadingYear = false
		next.Year = e.Year
		next.Notes = append([]models.Note{}, e.Notes...)
		return next, nil

	case YearLoadFailed:
		next.LoadingYear = false
		next.Notice = &Notice{Kind: NoticeError, Message: apperr.Notice(e.Err)}
		return next, nil
	}

	return s, nil
}
