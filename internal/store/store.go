// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/inneratlas/backend/internal/model/journal"
	"github.com/inneratlas/backend/internal/model/lesson"
	"github.com/inneratlas/backend/internal/model/part"
	"github.com/inneratlas/backend/internal/model/session"
	"github.com/inneratlas/backend/internal/model/user"
	"github.com/inneratlas/backend/internal/model/wellness"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Repository defines the persistence operations the rest of the service
// depends on. The realtime layer only uses the message methods.
type Repository interface {
	// UpsertUser creates or updates a user profile.
	UpsertUser(ctx context.Context, u *user.User) error

	// GetUser retrieves a user by id.
	GetUser(ctx context.Context, id string) (*user.User, error)

	// CreatePart stores a new part, filling in id and timestamps.
	CreatePart(ctx context.Context, p *part.Part) error

	// GetPart retrieves a part by id.
	GetPart(ctx context.Context, id string) (*part.Part, error)

	// ListParts returns all parts owned by a user, newest first.
	ListParts(ctx context.Context, userID string) ([]part.Part, error)

	// UpdatePart replaces the mutable fields of an existing part.
	UpdatePart(ctx context.Context, p *part.Part) error

	// DeletePart removes a part by id.
	DeletePart(ctx context.Context, id string) error

	// CreateEntry stores a new journal entry, filling in id and timestamp.
	CreateEntry(ctx context.Context, e *journal.Entry) error

	// GetEntry retrieves a journal entry by id.
	GetEntry(ctx context.Context, id string) (*journal.Entry, error)

	// ListEntries returns a user's journal entries, newest first.
	ListEntries(ctx context.Context, userID string) ([]journal.Entry, error)

	// UpdateEntry replaces the mutable fields of an existing entry.
	UpdateEntry(ctx context.Context, e *journal.Entry) error

	// DeleteEntry removes a journal entry by id.
	DeleteEntry(ctx context.Context, id string) error

	// CreateSession stores a new therapy session record.
	CreateSession(ctx context.Context, s *session.Session) error

	// GetSession retrieves a session by id.
	GetSession(ctx context.Context, id string) (*session.Session, error)

	// ListSessionsForUser returns sessions where the user is therapist or
	// client, newest first.
	ListSessionsForUser(ctx context.Context, userID string) ([]session.Session, error)

	// UpdateSessionStatus transitions a session to a new status.
	UpdateSessionStatus(ctx context.Context, id, status string) error

	// CreateMessage persists a chat message and returns it with its
	// generated id and timestamp.
	CreateMessage(ctx context.Context, sessionID, senderID string, senderRole session.Role, messageType, content string) (session.ChatMessage, error)

	// ListMessages returns a session's chat history ordered by creation
	// time ascending.
	ListMessages(ctx context.Context, sessionID string) ([]session.ChatMessage, error)

	// SeedLessons inserts lessons that are not already present.
	SeedLessons(ctx context.Context, lessons []lesson.Lesson) error

	// ListLessons returns all lessons in presentation order.
	ListLessons(ctx context.Context) ([]lesson.Lesson, error)

	// GetLesson retrieves a lesson by id.
	GetLesson(ctx context.Context, id string) (*lesson.Lesson, error)

	// UpsertLessonProgress records a user's completion state for a lesson.
	UpsertLessonProgress(ctx context.Context, p *lesson.Progress) error

	// ListLessonProgress returns a user's progress across all lessons.
	ListLessonProgress(ctx context.Context, userID string) ([]lesson.Progress, error)

	// CreateActivity logs a self-care activity.
	CreateActivity(ctx context.Context, a *wellness.Activity) error

	// ListActivities returns a user's activities, newest first.
	ListActivities(ctx context.Context, userID string) ([]wellness.Activity, error)

	// UpsertGrounding records grounding-technique progress.
	UpsertGrounding(ctx context.Context, g *wellness.GroundingProgress) error

	// ListGrounding returns a user's grounding progress rows.
	ListGrounding(ctx context.Context, userID string) ([]wellness.GroundingProgress, error)

	// CreateCheckIn logs an anxiety check-in.
	CreateCheckIn(ctx context.Context, c *wellness.CheckIn) error

	// ListCheckIns returns a user's check-ins, newest first.
	ListCheckIns(ctx context.Context, userID string) ([]wellness.CheckIn, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
