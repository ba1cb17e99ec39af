package models

import "time"

// AttendanceStatus is the outcome recorded for a class day.
type AttendanceStatus string

// Attendance outcomes.
const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// AttendanceRecord marks a student present or absent on a date (YYYY-MM-DD).
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Date      string           `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	MarkedAt  time.Time        `db:"marked_at" json:"marked_at"`
}

// ProgressRecord stores an assessment result for a student.
type ProgressRecord struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	Subject    string    `db:"subject" json:"subject"`
	Topic      string    `db:"topic" json:"topic"`
	Score      int       `db:"score" json:"score"`
	Feedback   string    `db:"feedback" json:"feedback"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}
