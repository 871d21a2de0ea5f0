package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/AnshRaj112/feedback-tracker/internal/database"
	"github.com/AnshRaj112/feedback-tracker/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultRating    = 5
	minRating        = 1
	maxRating        = 5
	maxNameLength    = 100
	maxMessageLength = 1000
)

// Store owns the persisted feedback collection. Every write is a full
// read-modify-write of the document; writes are serialized in-process.
type Store struct {
	backend database.Backend
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string

	writeMu sync.Mutex
}

type StoreOption func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(newID func() string) StoreOption {
	return func(s *Store) { s.newID = newID }
}

func NewStore(backend database.Backend, logger *zap.Logger, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   newRecordID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newRecordID returns a time-ordered UUID. Unique even within one millisecond.
func newRecordID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// BackendName reports which backend persists the collection.
func (s *Store) BackendName() string {
	return s.backend.Name()
}

// Load returns the current collection. It never fails: missing state becomes an
// empty baseline, a legacy array is upgraded and persisted, and unreadable state
// is reported as empty.
func (s *Store) Load(ctx context.Context) models.FeedbackCollection {
	col, persist, err := s.read(ctx)
	if err != nil {
		s.logger.Warn("feedback unreadable, serving empty collection", zap.Error(err))
		return col
	}
	if !persist {
		return col
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	col, err = s.loadLocked(ctx)
	if err != nil {
		s.logger.Warn("feedback unreadable, serving empty collection", zap.Error(err))
	}
	return col
}

// Save replaces the persisted collection with records.
func (s *Store) Save(ctx context.Context, records []models.Feedback) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.save(ctx, records)
	return err
}

// Create validates input and appends a new record.
func (s *Store) Create(ctx context.Context, in models.FeedbackInput, originIP string) (models.Feedback, error) {
	name, email, message, err := validateInput(in)
	if err != nil {
		return models.Feedback{}, err
	}
	rating := defaultRating
	if in.Rating.Set {
		rating = in.Rating.Value
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	col, err := s.loadLocked(ctx)
	if err != nil {
		return models.Feedback{}, err
	}
	record := models.Feedback{
		ID:        s.uniqueID(col.Feedback),
		Name:      name,
		Email:     email,
		Message:   message,
		Rating:    rating,
		CreatedAt: s.now(),
		OriginIP:  strings.TrimSpace(originIP),
	}

	records := make([]models.Feedback, 0, len(col.Feedback)+1)
	records = append(records, col.Feedback...)
	records = append(records, record)
	if _, err := s.save(ctx, records); err != nil {
		return models.Feedback{}, err
	}

	s.logger.Info("feedback created", zap.String("id", record.ID), zap.Int("rating", record.Rating))
	return record, nil
}

// Update replaces the editable fields of the record with the given id. An
// absent or unparseable rating keeps the stored one.
func (s *Store) Update(ctx context.Context, id string, in models.FeedbackInput) (models.Feedback, error) {
	name, email, message, err := validateInput(in)
	if err != nil {
		return models.Feedback{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	col, err := s.loadLocked(ctx)
	if err != nil {
		return models.Feedback{}, err
	}
	idx := indexOf(col.Feedback, id)
	if idx < 0 {
		return models.Feedback{}, &NotFoundError{ID: id}
	}

	records := append([]models.Feedback(nil), col.Feedback...)
	record := records[idx]
	record.Name = name
	record.Email = email
	record.Message = message
	if in.Rating.Set && validRating(in.Rating.Value) {
		record.Rating = in.Rating.Value
	}
	stamp := s.now()
	record.LastModified = &stamp
	records[idx] = record

	if _, err := s.save(ctx, records); err != nil {
		return models.Feedback{}, err
	}

	s.logger.Info("feedback updated", zap.String("id", id))
	return record, nil
}

// Delete removes the record with the given id and returns how many remain.
func (s *Store) Delete(ctx context.Context, id string) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	col, err := s.loadLocked(ctx)
	if err != nil {
		return 0, err
	}
	idx := indexOf(col.Feedback, id)
	if idx < 0 {
		return len(col.Feedback), &NotFoundError{ID: id}
	}

	records := make([]models.Feedback, 0, len(col.Feedback)-1)
	records = append(records, col.Feedback[:idx]...)
	records = append(records, col.Feedback[idx+1:]...)
	if _, err := s.save(ctx, records); err != nil {
		return len(col.Feedback), err
	}

	s.logger.Info("feedback deleted", zap.String("id", id), zap.Int("remaining", len(records)))
	return len(records), nil
}

// read decodes the backend state. persist is true when the returned collection
// must be written back (new baseline or upgraded legacy data). On error the
// collection is an empty placeholder that must never be written.
func (s *Store) read(ctx context.Context) (models.FeedbackCollection, bool, error) {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, database.ErrNoState) {
		return s.envelope(nil), true, nil
	}
	if err != nil {
		return s.envelope(nil), false, &PersistenceError{Op: "read", Err: err}
	}

	col, legacy, err := decodeDocument(data, s.now(), s.newID)
	if err != nil {
		return s.envelope(nil), false, &PersistenceError{Op: "read", Err: err}
	}
	if legacy {
		s.logger.Info("upgrading legacy feedback array", zap.Int("records", len(col.Feedback)))
		return s.envelope(col.Feedback), true, nil
	}
	return col, false, nil
}

// loadLocked is the strict load used under writeMu. A failed read is returned
// so that writers never replace stored data they could not see.
func (s *Store) loadLocked(ctx context.Context) (models.FeedbackCollection, error) {
	col, persist, err := s.read(ctx)
	if err != nil || !persist {
		return col, err
	}
	saved, err := s.save(ctx, col.Feedback)
	if err != nil {
		s.logger.Warn("could not persist feedback baseline", zap.Error(err))
		return col, nil
	}
	return saved, nil
}

func (s *Store) save(ctx context.Context, records []models.Feedback) (models.FeedbackCollection, error) {
	col := s.envelope(records)
	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return col, &PersistenceError{Op: "encode", Err: err}
	}
	if err := s.backend.Write(ctx, data); err != nil {
		s.logger.Error("feedback write failed", zap.String("backend", s.backend.Name()), zap.Error(err))
		return col, &PersistenceError{Op: "write", Err: err}
	}
	return col, nil
}

func (s *Store) envelope(records []models.Feedback) models.FeedbackCollection {
	if records == nil {
		records = []models.Feedback{}
	}
	return models.FeedbackCollection{
		Feedback: records,
		Metadata: models.Metadata{
			LastModified: s.now(),
			Version:      models.CollectionVersion,
			Count:        len(records),
		},
	}
}

func (s *Store) uniqueID(existing []models.Feedback) string {
	for {
		id := s.newID()
		if indexOf(existing, id) < 0 {
			return id
		}
	}
}

func indexOf(records []models.Feedback, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func validRating(r int) bool {
	return r >= minRating && r <= maxRating
}

// validateInput trims and checks fields in order name, message, rating.
func validateInput(in models.FeedbackInput) (name, email, message string, err error) {
	name = strings.TrimSpace(in.Name)
	email = strings.TrimSpace(in.Email)
	message = strings.TrimSpace(in.Message)

	switch {
	case name == "":
		return "", "", "", &ValidationError{Field: "name", Message: "Name is required"}
	case utf8.RuneCountInString(name) > maxNameLength:
		return "", "", "", &ValidationError{Field: "name", Message: "Name must be 100 characters or fewer"}
	case message == "":
		return "", "", "", &ValidationError{Field: "message", Message: "Message is required"}
	case utf8.RuneCountInString(message) > maxMessageLength:
		return "", "", "", &ValidationError{Field: "message", Message: "Message must be 1000 characters or fewer"}
	case in.Rating.Set && !validRating(in.Rating.Value):
		return "", "", "", &ValidationError{Field: "rating", Message: "Rating must be between 1 and 5"}
	}
	return name, email, message, nil
}
