package database

import (
	"database/sql"
)

// TimestampLayout is the timezone-naive ISO-8601 layout used for the
// timestamp column. Lexicographic order matches chronological order.
const TimestampLayout = "2006-01-02T15:04:05"

// DateLayout is the calendar-date form used for daily windows.
const DateLayout = "2006-01-02"

// Decision is the persisted record of one moderated message. The
// content and reasoning columns carry the original text verbatim,
// including non-Latin scripts. Feedback stays NULL until a moderator
// reacts to the verdict.
type Decision struct {
	MessageID      string         `db:"message_id"`
	UserID         string         `db:"user_id"`
	Content        string         `db:"content"`
	Timestamp      string         `db:"timestamp"`
	Classification string         `db:"classification"`
	Confidence     float64        `db:"confidence"`
	Reasoning      string         `db:"reasoning"`
	Action         string         `db:"action"`
	Feedback       sql.NullString `db:"feedback"`
}

// ClassificationCount is one row of the per-classification aggregate.
type ClassificationCount struct {
	Classification string  `db:"classification"`
	Count          int     `db:"count"`
	AvgConfidence  float64 `db:"avg_confidence"`
}

// FeedbackTotals summarizes human feedback over a window: how many
// decisions received any feedback, and how many were marked CORRECT.
type FeedbackTotals struct {
	Total   int `db:"total"`
	Correct int `db:"correct"`
}

// DailyCounts summarizes one calendar day of decisions.
type DailyCounts struct {
	Messages int `db:"messages"`
	Approved int `db:"approved"`
	Flagged  int `db:"flagged"`
	Deleted  int `db:"deleted"`
}
