package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/lifenote/internal/models"
)

// topicsURI is the resource describing the note topics.
const topicsURI = "lifenote://topics"

// TopicsGuide renders the topic list and the note rules as Markdown.
func TopicsGuide() string {
	var b strings.Builder
	b.WriteString("# LifeNote topics\n\n")
	b.WriteString("Every note is tagged with exactly one topic. ")
	fmt.Fprintf(&b, "When no topic is given, `%s` is used.\n\n", models.DefaultTopic)
	b.WriteString("| topic | label | emoji |\n|---|---|---|\n")
	for _, info := range models.Topics {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", info.Topic, info.Label, info.Emoji)
	}
	b.WriteString("\n## Rules\n\n")
	b.WriteString("- Content must not be blank; it is stored verbatim.\n")
	b.WriteString("- The submit time is broken down into year, month, week, date, weekday, hour and minute.\n")
	b.WriteString("- Week is the number of started 7-day blocks since January 1, not the ISO week.\n")
	b.WriteString("- Notes cannot be edited or deleted.\n")
	return b.String()
}
