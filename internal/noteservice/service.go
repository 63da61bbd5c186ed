// Package noteservice implements the note repository: appending drafts to
// the document store and listing a year's notes, most recent first.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/starford/lifenote/internal/apperr"
	"github.com/starford/lifenote/internal/docstore"
	"github.com/starford/lifenote/internal/models"
	"github.com/starford/lifenote/internal/timedetail"
)

// DefaultCollection is the collection notes are stored in.
const DefaultCollection = "notes"

// yearField is the document path the year query filters on.
const yearField = "timeDetails.year"

// CreatedCallback is called after a note has been stored.
type CreatedCallback func(note models.Note)

// Service coordinates the time detail builder and the document store.
type Service struct {
	store      docstore.Store
	collection string
	now        func() time.Time
	logger     *slog.Logger
	onCreated  []CreatedCallback
}

// Option configures a Service.
type Option func(*Service)

// WithCollection overrides the collection name.
func WithCollection(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.collection = name
		}
	}
}

// WithClock sets the source of the submit instant.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// OnCreated registers a callback fired after every successful Append.
func OnCreated(cb CreatedCallback) Option {
	return func(s *Service) { s.onCreated = append(s.onCreated, cb) }
}

// NewService creates a new note service.
func NewService(store docstore.Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		collection: DefaultCollection,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// noteDocument is the stored shape of a note.
type noteDocument struct {
	Content     string             `json:"content"`
	Topic       models.Topic       `json:"topic"`
	TimeDetails models.TimeDetails `json:"timeDetails"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Append validates d and stores it as a new note. Blank content fails with a
// validation error before the store is contacted.
func (s *Service) Append(ctx context.Context, d models.Draft) (*models.Note, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	topic, err := models.ResolveTopic(d.Topic)
	if err != nil {
		return nil, err
	}

	details := timedetail.Build(s.now())
	data := map[string]any{
		"content":     d.Content,
		"topic":       string(topic),
		"timeDetails": detailsToMap(details),
		"createdAt":   docstore.ServerTimestamp,
	}

	id, err := s.store.Create(ctx, s.collection, data)
	if err != nil {
		s.logger.Error("append note failed", slog.String("topic", string(topic)), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", apperr.ErrWrite, err)
	}

	note := models.Note{
		ID:          id,
		Content:     d.Content,
		Topic:       topic,
		TimeDetails: details,
	}
	s.logger.Info("note appended",
		slog.String("id", id),
		slog.String("topic", string(topic)),
		slog.Int("year", details.Year),
		slog.Int("week", details.Week))

	for _, cb := range s.onCreated {
		cb(note)
	}
	return &note, nil
}

// ListForYear returns every note whose time snapshot falls in year, sorted
// by timestamp, most recent first. Documents that are not valid notes are
// logged and left out.
func (s *Service) ListForYear(ctx context.Context, year int) ([]models.Note, error) {
	docs, err := s.store.Query(ctx, s.collection, docstore.Eq(yearField, year))
	if err != nil {
		s.logger.Error("list notes failed", slog.Int("year", year), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", apperr.ErrRead, err)
	}

	notes := make([]models.Note, 0, len(docs))
	for _, doc := range docs {
		note, err := DecodeNote(doc)
		if err != nil {
			s.logger.Warn("skipping invalid note", slog.String("id", doc.ID), slog.String("error", err.Error()))
			continue
		}
		notes = append(notes, note)
	}
	SortRecentFirst(notes)
	return notes, nil
}

// SortRecentFirst orders notes by snapshot timestamp, newest first. Ties keep
// their relative order.
func SortRecentFirst(notes []models.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].TimeDetails.Timestamp > notes[j].TimeDetails.Timestamp
	})
}

// Collection returns the collection name notes are stored in.
func (s *Service) Collection() string {
	return s.collection
}

// DecodeNote converts a document written by another process into a note,
// rejecting documents that would break the stored-note invariants.
func DecodeNote(doc docstore.Document) (models.Note, error) {
	note, err := decode(doc)
	if err != nil {
		return models.Note{}, err
	}
	if strings.TrimSpace(note.Content) == "" {
		return models.Note{}, apperr.Validation("content", "document has no content")
	}
	if !note.Topic.Valid() {
		return models.Note{}, apperr.Validation("topic", "unknown topic "+string(note.Topic))
	}
	return note, nil
}

func decode(doc docstore.Document) (models.Note, error) {
	var nd noteDocument
	if err := doc.Decode(&nd); err != nil {
		return models.Note{}, err
	}
	return models.Note{
		ID:          doc.ID,
		Content:     nd.Content,
		Topic:       nd.Topic,
		TimeDetails: nd.TimeDetails,
		CreatedAt:   nd.CreatedAt,
	}, nil
}

func detailsToMap(td models.TimeDetails) map[string]any {
	return map[string]any{
		"year":      td.Year,
		"month":     td.Month,
		"week":      td.Week,
		"date":      td.Date,
		"dayOfWeek": td.DayOfWeek,
		"hour":      td.Hour,
		"minute":    td.Minute,
		"timestamp": td.Timestamp,
	}
}
