package store

import (
	"fmt"
	"time"

	"github.com/lucsky/cuid"
	log "github.com/sirupsen/logrus"

	"github.com/paul5577/AI-analysis-of-scoliosis/model"
)

// AppendHistory records one completed analysis. There is no size cap and no
// deduplication; the stored sequence only grows until ClearHistory.
func (s *Store) AppendHistory(result model.AnalysisResult) (model.HistoryRecord, error) {
	record := model.HistoryRecord{
		ID:         cuid.New(),
		Result:     result,
		RecordedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(`
	INSERT INTO history (id, cobb_angle, classification, captured_at, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		record.ID,
		record.Result.CobbAngleDegrees,
		string(record.Result.Classification),
		record.Result.CapturedAt,
		record.RecordedAt.Format(time.RFC3339),
	)
	if err != nil {
		return model.HistoryRecord{}, fmt.Errorf("failed to append history: %w", err)
	}
	return record, nil
}

// LoadHistory returns all records, newest first. Unreadable rows and read
// failures are logged and treated as an empty history rather than surfaced;
// the caller never sees an error here.
func (s *Store) LoadHistory() []model.HistoryRecord {
	rows, err := s.db.Query(`
	SELECT id, cobb_angle, classification, captured_at, recorded_at
	FROM history
	ORDER BY recorded_at DESC, rowid DESC`)
	if err != nil {
		log.Warnf("history unreadable, treating as empty: %v", err)
		return []model.HistoryRecord{}
	}
	defer rows.Close()

	records := []model.HistoryRecord{}
	for rows.Next() {
		var record model.HistoryRecord
		var classification, recordedAt string
		if err := rows.Scan(&record.ID, &record.Result.CobbAngleDegrees, &classification, &record.Result.CapturedAt, &recordedAt); err != nil {
			log.Warnf("history unreadable, treating as empty: %v", err)
			return []model.HistoryRecord{}
		}
		record.Result.Classification = model.Classification(classification)
		if record.RecordedAt, err = time.Parse(time.RFC3339, recordedAt); err != nil {
			log.Warnf("skipping history record %s with bad timestamp: %v", record.ID, err)
			continue
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		log.Warnf("history unreadable, treating as empty: %v", err)
		return []model.HistoryRecord{}
	}
	return records
}

// ClearHistory removes every record. Whole-store clearing is the only
// deletion operation offered.
func (s *Store) ClearHistory() error {
	if _, err := s.db.Exec(`DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
