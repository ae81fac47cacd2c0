package api

import (
	"time"
	"unicode/utf8"
)

// ModuleID names one of the generation workflows.
type ModuleID string

const (
	ModuleMarketing ModuleID = "marketing"
	ModuleSales     ModuleID = "sales"
	ModuleLead      ModuleID = "lead"
)

// GenerationRequest is built at form submission and discarded after dispatch.
type GenerationRequest struct {
	ModuleID ModuleID          `json:"module_id"`
	Payload  map[string]string `json:"payload"`
}

// GenerationResult is the text returned by a successful call.
type GenerationResult struct {
	ModuleID   ModuleID  `json:"module_id"`
	RawText    string    `json:"raw_text"`
	ReceivedAt time.Time `json:"received_at"`
}

// HistoryEntry is one recorded output. Timestamp is ISO-8601 UTC.
type HistoryEntry struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Preview   string `json:"preview"`
}

const (
	PreviewLength = 100
	PreviewSuffix = "..."
	// TimestampLayout matches Date.toISOString output.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// NewHistoryEntry builds an entry stamped at now.
func NewHistoryEntry(content string, now time.Time) HistoryEntry {
	return HistoryEntry{
		Content:   content,
		Timestamp: now.UTC().Format(TimestampLayout),
		Preview:   Preview(content),
	}
}

// Preview returns the first PreviewLength characters of content followed by
// PreviewSuffix. The suffix is always appended.
func Preview(content string) string {
	if utf8.RuneCountInString(content) <= PreviewLength {
		return content + PreviewSuffix
	}
	r := []rune(content)
	return string(r[:PreviewLength]) + PreviewSuffix
}

// Time parses the entry timestamp; zero time when unparsable.
func (h HistoryEntry) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, h.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// LoadingState drives what an output container shows.
type LoadingState int

const (
	StateIdle LoadingState = iota
	StateLoading
	StateDone
)

func (s LoadingState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateDone:
		return "done"
	default:
		return "idle"
	}
}
