// Package ui renders journal state for the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/starford/lifenote/internal/controller"
	"github.com/starford/lifenote/internal/models"
)

var (
	faint  = color.New(color.Faint).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// Placeholder texts for the year view.
const (
	LoadingText = "Loading..."
	EmptyText   = "No notes yet"
)

// FormatTime renders a snapshot as M/D HH:MM.
func FormatTime(td models.TimeDetails) string {
	return fmt.Sprintf("%d/%d %02d:%02d", td.Month, td.Date, td.Hour, td.Minute)
}

// FormatNoteCard renders one note: emoji, topic and time on the first line,
// the content indented below it.
func FormatNoteCard(note models.Note) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %s %s  %s\n",
		note.Topic.Emoji(),
		cyan(string(note.Topic)),
		faint(FormatTime(note.TimeDetails))))

	for _, line := range strings.Split(note.Content, "\n") {
		sb.WriteString("     " + line + "\n")
	}
	return sb.String()
}

// FormatYearHeader renders the heading of the year view.
func FormatYearHeader(year, count int) string {
	return fmt.Sprintf("\n%s %s\n", bold(fmt.Sprintf("%d", year)), faint(fmt.Sprintf("(%d notes)", count)))
}

// FormatYear renders the year view: a loading line, the empty text or the
// note cards in the order given.
func FormatYear(year int, notes []models.Note, loading bool) string {
	var sb strings.Builder
	sb.WriteString(FormatYearHeader(year, len(notes)))
	sb.WriteString(Separator())

	switch {
	case loading && len(notes) == 0:
		sb.WriteString("  " + faint(LoadingText) + "\n")
	case len(notes) == 0:
		sb.WriteString("  " + faint(EmptyText) + "\n")
	default:
		if loading {
			sb.WriteString("  " + faint(LoadingText) + "\n")
		}
		for _, n := range notes {
			sb.WriteString(FormatNoteCard(n))
		}
	}
	return sb.String()
}

// FormatTopics renders the topic picker, marking selected or the default.
func FormatTopics(topics []models.TopicInfo, selected models.Topic) string {
	var sb strings.Builder
	for _, info := range topics {
		marker := " "
		if info.Topic == selected || (selected == "" && info.Topic == models.DefaultTopic) {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("  %s %s %-9s %s\n", marker, info.Emoji, info.Topic, faint(info.Label)))
	}
	return sb.String()
}

// FormatDraft renders the writer.
func FormatDraft(s controller.State) string {
	var sb strings.Builder
	topic := s.Draft.Topic
	if topic == "" {
		topic = models.DefaultTopic
	}
	sb.WriteString(fmt.Sprintf("\n%s %s %s\n", bold("New note"), topic.Emoji(), cyan(string(topic))))
	if s.Draft.Content == "" {
		sb.WriteString("  " + faint("(empty)") + "\n")
	} else {
		for _, line := range strings.Split(s.Draft.Content, "\n") {
			sb.WriteString("  " + line + "\n")
		}
	}
	if s.Saving {
		sb.WriteString("  " + yellow("Saving...") + "\n")
	}
	return sb.String()
}

// FormatNotice renders a notice, or nothing.
func FormatNotice(n *controller.Notice) string {
	if n == nil {
		return ""
	}
	if n.Kind == controller.NoticeError {
		return Error(n.Message) + "\n"
	}
	return Success(n.Message) + "\n"
}

// FormatState renders the whole journal screen.
func FormatState(s controller.State) string {
	var sb strings.Builder
	if s.Mode == controller.ModeWriting {
		sb.WriteString(FormatDraft(s))
	}
	if s.Range == controller.RangeThisYear {
		sb.WriteString(FormatYear(s.Year, s.Notes, s.LoadingYear))
	}
	sb.WriteString(FormatNotice(s.Notice))
	return sb.String()
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func Success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func Error(msg string) string {
	return color.New(color.FgRed).Sprint("✗ ") + msg
}
