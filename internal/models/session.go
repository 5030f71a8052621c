package models

// SessionStatus represents the status of a repair session.
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusRepairing SessionStatus = "repairing"
	SessionStatusComplete  SessionStatus = "complete"
	SessionStatusError     SessionStatus = "error"
)

// RepairSession represents one run of the graph repair over an uploaded model.
type RepairSession struct {
	ID               string        `json:"id"`
	FileID           string        `json:"fileId"`
	Status           SessionStatus `json:"status"`
	Progress         float64       `json:"progress"` // 0-100
	NodeCount        int           `json:"nodeCount,omitempty"`
	LineCount        int           `json:"lineCount,omitempty"`
	SplitMothers     int           `json:"splitMothers,omitempty"`
	SyntheticNodes   int           `json:"syntheticNodes,omitempty"`
	ProcessingTimeMs int64         `json:"processingTimeMs,omitempty"`
	StartTime        int64         `json:"startTime,omitempty"` // Unix ms
	EndTime          int64         `json:"endTime,omitempty"`   // Unix ms
	ParserName       string        `json:"parserName,omitempty"`
	Error            string        `json:"error,omitempty"`
	ParseErrors      []ParseError  `json:"parseErrors,omitempty"`
}

// ParseError represents a recoverable problem with a single record of the
// ingested export. The offending record is skipped, not fatal.
type ParseError struct {
	Record  int    `json:"record"`
	Content string `json:"content,omitempty"`
	Reason  string `json:"reason"`
}

// NewRepairSession creates a new RepairSession in pending status.
func NewRepairSession(id, fileID string) *RepairSession {
	return &RepairSession{
		ID:       id,
		FileID:   fileID,
		Status:   SessionStatusPending,
		Progress: 0,
	}
}
