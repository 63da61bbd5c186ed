// Package journal implements the interactive line-based journal that drives
// a controller from a terminal.
package journal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/starford/lifenote/internal/apperr"
	"github.com/starford/lifenote/internal/controller"
	"github.com/starford/lifenote/internal/models"
	"github.com/starford/lifenote/internal/ui"
)

const helpText = `Commands:
  :new            start a note
  :topic <name>   pick the topic of the note
  :topics         list topics
  :save           submit the note
  :cancel         discard the note
  :year           show this year's notes
  :clear          clear the timeline filter
  :range <name>   pick a timeline filter (this_year, none)
  :help           show this help
  :quit           leave
While writing, any other line is added to the note.
`

// errNotWriting is shown for input that needs an open writer.
var errNotWriting = errors.New("not writing a note, type :new to start one")

// TopicSource lists the topics a note can be tagged with.
type TopicSource interface {
	Topics(ctx context.Context) ([]models.TopicInfo, error)
}

type builtinTopics struct{}

func (builtinTopics) Topics(context.Context) ([]models.TopicInfo, error) {
	return models.Topics, nil
}

// Session reads commands from in and prints the resulting screens to out.
type Session struct {
	ctrl   *controller.Controller
	in     io.Reader
	out    io.Writer
	topics TopicSource
}

// Option configures a Session.
type Option func(*Session)

// WithTopicSource makes :topics ask src, typically a remote server, instead
// of the built-in list.
func WithTopicSource(src TopicSource) Option {
	return func(s *Session) {
		if src != nil {
			s.topics = src
		}
	}
}

// NewSession returns a session driving ctrl.
func NewSession(ctrl *controller.Controller, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{ctrl: ctrl, in: in, out: out, topics: builtinTopics{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes input until :quit, end of input or ctx cancellation.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprint(s.out, helpText)

	scanner := bufio.NewScanner(s.in)
	state := s.ctrl.Snapshot()
	s.prompt(state)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := scanner.Text()

		ev, quit, err := s.parse(ctx, line, state)
		if quit {
			return nil
		}
		if err != nil {
			fmt.Fprintln(s.out, ui.Error(err.Error()))
		} else if ev != nil {
			next, err := s.ctrl.Do(ctx, ev)
			if err != nil {
				return err
			}
			fmt.Fprint(s.out, render(ev, state, next))
			state = next
		}
		s.prompt(state)
	}
	return scanner.Err()
}

func (s *Session) prompt(state controller.State) {
	if state.Mode == controller.ModeWriting {
		fmt.Fprint(s.out, "✎ ")
		return
	}
	fmt.Fprint(s.out, "> ")
}

// parse maps one input line to an event. A nil event with no error means
// the line was handled locally.
func (s *Session) parse(ctx context.Context, line string, state controller.State) (controller.Event, bool, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		if state.Mode != controller.ModeWriting {
			if trimmed != "" {
				return nil, false, errNotWriting
			}
			return nil, false, nil
		}
		content := line
		if state.Draft.Content != "" {
			content = state.Draft.Content + "\n" + line
		}
		return controller.EditContent{Text: content}, false, nil
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(trimmed, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "new", "n":
		return controller.OpenWriter{}, false, nil
	case "topic", "t":
		return controller.PickTopic{Topic: models.Topic(arg)}, false, nil
	case "topics":
		topics, err := s.topics.Topics(ctx)
		if err != nil {
			return nil, false, errors.New(apperr.Notice(err))
		}
		fmt.Fprint(s.out, ui.FormatTopics(topics, state.Draft.Topic))
		return nil, false, nil
	case "save", "s":
		if state.Mode != controller.ModeWriting {
			return nil, false, errNotWriting
		}
		return controller.Submit{}, false, nil
	case "cancel", "c":
		return controller.Cancel{}, false, nil
	case "year", "y":
		return selectRange(string(controller.RangeThisYear))
	case "clear":
		return selectRange("none")
	case "range", "r":
		return selectRange(arg)
	case "help", "h":
		fmt.Fprint(s.out, helpText)
		return nil, false, nil
	case "quit", "q":
		return nil, true, nil
	}
	return nil, false, fmt.Errorf("unknown command :%s", cmd)
}

func selectRange(name string) (controller.Event, bool, error) {
	r, ok := controller.ParseRange(name)
	if !ok {
		return nil, false, fmt.Errorf("unknown range %q", name)
	}
	return controller.SelectRange{Range: r}, false, nil
}

// render prints the parts of the screen that changed between prev and next.
// Selecting a range always reprints the timeline.
func render(ev controller.Event, prev, next controller.State) string {
	_, selected := ev.(controller.SelectRange)
	var sb strings.Builder

	if next.Mode == controller.ModeWriting &&
		(prev.Mode != controller.ModeWriting || prev.Draft.Topic != next.Draft.Topic) {
		sb.WriteString(ui.FormatDraft(next))
	}
	if next.Range == controller.RangeThisYear &&
		(selected || prev.Range != next.Range || prev.Year != next.Year || !sameNotes(prev.Notes, next.Notes)) {
		sb.WriteString(ui.FormatYear(next.Year, next.Notes, next.LoadingYear))
	}
	if next.Notice != prev.Notice {
		sb.WriteString(ui.FormatNotice(next.Notice))
	}
	return sb.String()
}

func sameNotes(a, b []models.Note) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
