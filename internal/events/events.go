package events

import "time"

type SessionCreatedEvent struct {
	SessionID string   `json:"session_id"`
	Name      string   `json:"name,omitempty"`
	Items     []string `json:"items"`
	Pairs     int      `json:"pairs"`
}

type ComparisonRecordedEvent struct {
	SessionID string `json:"session_id"`
	Winner    string `json:"winner"`
	Loser     string `json:"loser"`
	JudgeID   string `json:"judge_id,omitempty"`
	Compared  int    `json:"compared_pairs"`
	Total     int    `json:"total_pairs"`
}

type SessionCompletedEvent struct {
	SessionID string `json:"session_id"`
	Compared  int    `json:"compared_pairs"`
	Total     int    `json:"total_pairs"`
}

type SessionResetEvent struct {
	SessionID string `json:"session_id"`
}

type SessionDeletedEvent struct {
	SessionID string `json:"session_id"`
}

type StatsEvent struct {
	Sessions    int       `json:"sessions"`
	Comparisons int       `json:"comparisons"`
	Timestamp   time.Time `json:"timestamp"`
}
