package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/starford/lifenote/internal/apperr"
	"github.com/starford/lifenote/internal/models"
)

func writing(content string, topic models.Topic) State {
	s := Initial()
	s.Mode = ModeWriting
	s.Draft = models.Draft{Content: content, Topic: topic}
	return s
}

func TestOpenWriter_KeepsDraftAndRange(t *testing.T) {
	s := Initial()
	s.Range = RangeThisYear
	s.Draft.Topic = models.TopicDev

	next, effects := Transition(s, OpenWriter{})
	if next.Mode != ModeWriting {
		t.Errorf("mode = %q", next.Mode)
	}
	if next.Range != RangeThisYear || next.Draft.Topic != models.TopicDev {
		t.Errorf("open writer should keep selections: %+v", next)
	}
	if len(effects) != 0 {
		t.Errorf("effects = %v", effects)
	}
}

func TestEditContent_IgnoredWhileBrowsing(t *testing.T) {
	next, _ := Transition(Initial(), EditContent{Text: "hi"})
	if next.Draft.Content != "" {
		t.Error("edit while browsing should be ignored")
	}
	next, _ = Transition(writing("", ""), EditContent{Text: "hi"})
	if next.Draft.Content != "hi" {
		t.Errorf("content = %q", next.Draft.Content)
	}
}

func TestPickTopic(t *testing.T) {
	next, _ := Transition(writing("x", ""), PickTopic{Topic: models.TopicLearning})
	if next.Draft.Topic != models.TopicLearning {
		t.Errorf("topic = %q", next.Draft.Topic)
	}
	next, _ = Transition(writing("x", models.TopicDev), PickTopic{Topic: "chores"})
	if next.Draft.Topic != models.TopicDev {
		t.Error("invalid pick must not change the topic")
	}
	if next.Notice == nil || next.Notice.Kind != NoticeError {
		t.Errorf("notice = %+v", next.Notice)
	}
}

func TestCancel_DiscardsDraft(t *testing.T) {
	s := writing("half a thought", models.TopicHealth)
	s.Range = RangeThisYear
	next, effects := Transition(s, Cancel{})
	if next.Mode != ModeBrowsing {
		t.Errorf("mode = %q", next.Mode)
	}
	if next.Draft != (models.Draft{}) {
		t.Errorf("draft = %+v", next.Draft)
	}
	if next.Range != RangeThisYear {
		t.Error("cancel keeps the time range")
	}
	if len(effects) != 0 {
		t.Errorf("effects = %v", effects)
	}
}

func TestSubmit_Blank(t *testing.T) {
	s := writing("   ", models.TopicHealth)
	next, effects := Transition(s, Submit{})
	if next.Saving {
		t.Error("blank submit must not enter Saving")
	}
	if len(effects) != 0 {
		t.Errorf("effects = %v", effects)
	}
	if next.Notice == nil || next.Notice.Kind != NoticeError || next.Notice.Message != "please enter note content" {
		t.Errorf("notice = %+v", next.Notice)
	}
	if next.Mode != ModeWriting || next.Draft != s.Draft {
		t.Error("blank submit keeps the writer open with its draft")
	}
}

func TestSubmit_StartsSaving(t *testing.T) {
	s := writing("Went for a run", models.TopicHealth)
	next, effects := Transition(s, Submit{})
	if !next.Saving {
		t.Fatal("expected Saving")
	}
	if len(effects) != 1 {
		t.Fatalf("effects = %v", effects)
	}
	eff, ok := effects[0].(AppendNote)
	if !ok || eff.Draft != s.Draft {
		t.Errorf("effect = %#v", effects[0])
	}
}

func TestSubmit_NoReentry(t *testing.T) {
	s := writing("x", "")
	s.Saving = true
	next, effects := Transition(s, Submit{})
	if len(effects) != 0 {
		t.Error("submit while saving must be a no-op")
	}
	if !next.Saving {
		t.Error("saving flag should remain")
	}
}

func TestSubmit_IgnoredWhileBrowsing(t *testing.T) {
	s := Initial()
	s.Draft.Content = "stale"
	if _, effects := Transition(s, Submit{}); len(effects) != 0 {
		t.Error("submit outside the writer should do nothing")
	}
}

func TestAppendSucceeded_ClosesWriter(t *testing.T) {
	s := writing("done", models.TopicDev)
	s.Saving = true
	next, effects := Transition(s, AppendSucceeded{Note: models.Note{ID: "1"}, Draft: s.Draft, Year: 2025})
	if next.Saving || next.Mode != ModeBrowsing || next.Draft != (models.Draft{}) {
		t.Errorf("state = %+v", next)
	}
	if next.Notice == nil || next.Notice.Message != NoticeSaved {
		t.Errorf("notice = %+v", next.Notice)
	}
	if len(effects) != 0 {
		t.Errorf("no refresh expected without this_year: %v", effects)
	}
}

func TestAppendSucceeded_RefreshesThisYear(t *testing.T) {
	s := writing("done", "")
	s.Saving = true
	s.Range = RangeThisYear
	s.Year = 2025
	next, effects := Transition(s, AppendSucceeded{Draft: s.Draft, Year: 2025})
	if !next.LoadingYear {
		t.Error("expected LoadingYear")
	}
	if len(effects) != 1 || effects[0] != (LoadYear{Year: 2025}) {
		t.Errorf("effects = %v", effects)
	}
}

func TestAppendSucceeded_KeepsNewerDraft(t *testing.T) {
	submitted := models.Draft{Content: "first"}
	s := writing("second thoughts", "")
	s.Saving = true
	next, _ := Transition(s, AppendSucceeded{Draft: submitted})
	if next.Mode != ModeWriting || next.Draft.Content != "second thoughts" {
		t.Errorf("draft edited during save should survive: %+v", next)
	}
}

func TestAppendFailed_PreservesDraft(t *testing.T) {
	s := writing("keep me", models.TopicDiary)
	s.Saving = true
	next, effects := Transition(s, AppendFailed{Err: fmt.Errorf("%w: %w", apperr.ErrWrite, errors.New("quota"))})
	if next.Saving {
		t.Error("saving should end")
	}
	if next.Draft != s.Draft || next.Mode != ModeWriting {
		t.Errorf("draft should be preserved: %+v", next)
	}
	if next.Notice == nil || next.Notice.Message != apperr.NoticeWriteFailed {
		t.Errorf("notice = %+v", next.Notice)
	}
	if len(effects) != 0 {
		t.Errorf("no retry expected: %v", effects)
	}
}

func TestSelectRange(t *testing.T) {
	next, effects := Transition(Initial(), SelectRange{Range: RangeThisYear, Year: 2025})
	if !next.LoadingYear || next.Range != RangeThisYear || next.Year != 2025 {
		t.Errorf("state = %+v", next)
	}
	if len(effects) != 1 || effects[0] != (LoadYear{Year: 2025}) {
		t.Errorf("effects = %v", effects)
	}

	// Selecting it again re-triggers the fetch.
	again, effects := Transition(next, SelectRange{Range: RangeThisYear, Year: 2025})
	if !again.LoadingYear || len(effects) != 1 {
		t.Errorf("reselect: %+v %v", again, effects)
	}

	cleared, effects := Transition(next, SelectRange{Range: RangeNone})
	if cleared.Range != RangeNone || len(effects) != 0 {
		t.Errorf("clear: %+v %v", cleared, effects)
	}
}

func TestYearLoaded(t *testing.T) {
	s := Initial()
	s.LoadingYear = true
	notes := []models.Note{{ID: "b"}, {ID: "a"}}
	next, _ := Transition(s, YearLoaded{Year: 2025, Notes: notes})
	if next.LoadingYear || len(next.Notes) != 2 || next.Notes[0].ID != "b" {
		t.Errorf("state = %+v", next)
	}
	notes[0].ID = "mutated"
	if next.Notes[0].ID != "b" {
		t.Error("state must not alias the loaded slice")
	}
}

func TestYearLoadFailed_KeepsPreviousNotes(t *testing.T) {
	s := Initial()
	s.LoadingYear = true
	s.Notes = []models.Note{{ID: "old"}}
	next, _ := Transition(s, YearLoadFailed{Year: 2025, Err: fmt.Errorf("%w: offline", apperr.ErrRead)})
	if next.LoadingYear {
		t.Error("loading should end")
	}
	if len(next.Notes) != 1 || next.Notes[0].ID != "old" {
		t.Errorf("notes = %+v", next.Notes)
	}
	if next.Notice == nil || next.Notice.Message != apperr.NoticeReadFailed {
		t.Errorf("notice = %+v", next.Notice)
	}
}

func TestTransition_DoesNotMutateInput(t *testing.T) {
	s := writing("x", "")
	s.Notes = []models.Note{{ID: "1"}}
	before, _ := json.Marshal(s)
	Transition(s, Cancel{})
	Transition(s, YearLoaded{Notes: []models.Note{{ID: "2"}}})
	after, _ := json.Marshal(s)
	if string(before) != string(after) {
		t.Errorf("input mutated:\n%s\n%s", before, after)
	}
}

func TestState_Serializable(t *testing.T) {
	s := writing("x", models.TopicDev)
	s.Notice = &Notice{Kind: NoticeInfo, Message: "hi"}
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var back State
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.Mode != s.Mode || back.Draft != s.Draft || *back.Notice != *s.Notice {
		t.Errorf("round trip = %+v", back)
	}
}

func TestParseRange(t *testing.T) {
	if r, ok := ParseRange("year"); !ok || r != RangeThisYear {
		t.Errorf("year -> %q %v", r, ok)
	}
	if _, ok := ParseRange("decade"); ok {
		t.Error("decade should not parse")
	}
}
