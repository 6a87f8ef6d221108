package model

type TrackingStatus string

const (
	TrackingStatusProcessing TrackingStatus = "processing"
	TrackingStatusCompleted  TrackingStatus = "completed"
	TrackingStatusError      TrackingStatus = "error"
)

// TrackingRecord is the idempotency-store entry for one appointment. It is
// created and mutated only by the tracker; the store's TTL handles expiry.
type TrackingRecord struct {
	TaskID      string         `json:"taskId"`
	Status      TrackingStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	CompletedAt string         `json:"completedAt,omitempty"`
	ErrorAt     string         `json:"errorAt,omitempty"`
}
