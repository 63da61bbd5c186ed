package api

import (
	"github.com/starford/lifenote/internal/models"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Content string       `json:"content" example:"Went for a run"`
	Topic   models.Topic `json:"topic,omitempty" example:"health"`
}

// Draft converts the request into a domain draft.
func (r CreateNoteRequest) Draft() models.Draft {
	return models.Draft{Content: r.Content, Topic: r.Topic}
}

// NoteListResponse wraps a year's notes, most recent first.
type NoteListResponse struct {
	Year  int           `json:"year" example:"2025"`
	Notes []models.Note `json:"notes"`
	Total int           `json:"total" example:"42"`
}

// TopicsResponse lists the known topics.
type TopicsResponse struct {
	Topics  []models.TopicInfo `json:"topics"`
	Default models.Topic       `json:"default" example:"diary"`
}
