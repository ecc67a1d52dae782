package model

import "time"

// HistoryRecord is one completed analysis kept in the on-device store.
// Records are immutable once written; the store returns them newest first.
type HistoryRecord struct {
	ID         string         `json:"id"`
	Result     AnalysisResult `json:"result"`
	RecordedAt time.Time      `json:"recordedAt"`
}
