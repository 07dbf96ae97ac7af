package models

// Summary is the digest returned for a room. The wire field order follows
// the backend response.
type Summary struct {
	SummaryPoints []string `json:"summary_points"`
	MessageCount  int      `json:"message_count"`
	TimeRange     string   `json:"time_range"`
}
