package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"possales/internal/core"
	"possales/internal/report"
)

// ReportGeneratedMessage announces a finished sales report. Consumers can
// fetch the full table from the archive by RunID.
type ReportGeneratedMessage struct {
	RunID       string          `json:"run_id"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	Granularity string          `json:"granularity"`
	ByCategory  bool            `json:"by_category"`
	Buckets     int             `json:"buckets"`
	Total       decimal.Decimal `json:"total"`
	Skipped     int             `json:"skipped"`
	Timestamp   time.Time       `json:"timestamp"`
}

// NewReportGeneratedMessage summarizes s for runID.
func NewReportGeneratedMessage(runID string, s report.Summary) *ReportGeneratedMessage {
	return &ReportGeneratedMessage{
		RunID:       runID,
		Start:       s.Start.Format(core.DateLayout),
		End:         s.End.Format(core.DateLayout),
		Granularity: s.Granularity.String(),
		ByCategory:  s.ByCategory,
		Buckets:     len(s.Buckets),
		Total:       s.Total(),
		Skipped:     s.Skipped,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportGeneratedMessageFromJSON creates a message from JSON bytes
func ReportGeneratedMessageFromJSON(data []byte) (*ReportGeneratedMessage, error) {
	var msg ReportGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
