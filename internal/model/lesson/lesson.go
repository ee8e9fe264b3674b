package lesson

import "time"

// Lesson is a psychoeducation unit presented to clients between sessions.
type Lesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Body     string `json:"body"`
	Ordering int    `json:"ordering"`
}

// Progress records a user's completion state for one lesson.
type Progress struct {
	UserID      string     `json:"userId"`
	LessonID    string     `json:"lessonId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
