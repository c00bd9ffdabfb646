package amqp

import (
	"encoding/json"
	"time"
)

// AnalysisRecordedMessage notifies the audit worker that a question was
// answered. Carries the audit record ID plus the headline numbers; the
// worker fetches the full record from the database when it needs more.
type AnalysisRecordedMessage struct {
	ID         int64     `json:"id"`
	Question   string    `json:"question"`
	TotalCents int64     `json:"total_cents"`
	ItemCount  int       `json:"item_count"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewAnalysisRecordedMessage(id int64, question string, totalCents int64, itemCount int) *AnalysisRecordedMessage {
	return &AnalysisRecordedMessage{
		ID:         id,
		Question:   question,
		TotalCents: totalCents,
		ItemCount:  itemCount,
		Timestamp:  time.Now(),
	}
}

func (m *AnalysisRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AnalysisRecordedMessageFromJSON(data []byte) (*AnalysisRecordedMessage, error) {
	var msg AnalysisRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
