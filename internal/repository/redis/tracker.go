package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/eligibility-checker/internal/model"
	"github.com/jwalitptl/eligibility-checker/pkg/logger"
)

// TrackerConfig controls tracking-record keys and retention.
type TrackerConfig struct {
	KeyPrefix   string
	TrackingTTL time.Duration
	ErrorTTL    time.Duration
}

// Tracker persists appointment tracking records in Redis. The atomic SETNX in
// MarkProcessing is what keeps concurrent checker instances from submitting
// the same appointment twice.
type Tracker struct {
	client *redis.Client
	config TrackerConfig
	logger *logger.Logger
}

func NewTracker(client *redis.Client, config TrackerConfig, logger *logger.Logger) *Tracker {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "auto-check:appointment:"
	}
	if config.TrackingTTL <= 0 {
		config.TrackingTTL = 7 * 24 * time.Hour
	}
	if config.ErrorTTL <= 0 {
		config.ErrorTTL = 24 * time.Hour
	}
	return &Tracker{
		client: client,
		config: config,
		logger: logger,
	}
}

func (t *Tracker) key(appointmentID string) string {
	return t.config.KeyPrefix + appointmentID
}

// GetStatus returns the tracking record for an appointment, or nil when none
// exists.
func (t *Tracker) GetStatus(ctx context.Context, appointmentID string) (*model.TrackingRecord, error) {
	data, err := t.client.Get(ctx, t.key(appointmentID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tracking record: %w", err)
	}

	var record model.TrackingRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to decode tracking record: %w", err)
	}
	return &record, nil
}

// ShouldProcess reports whether an appointment is eligible for a processing
// attempt: no record yet, or the last attempt errored. Read failures fail
// open so a store outage delays duplicates rather than dropping work.
func (t *Tracker) ShouldProcess(ctx context.Context, appointmentID string) bool {
	record, err := t.GetStatus(ctx, appointmentID)
	if err != nil {
		t.logger.Error(err, "failed to read tracking record, allowing attempt",
			"appointment_id", appointmentID)
		return true
	}
	if record == nil {
		return true
	}
	if record.Status == model.TrackingStatusError {
		t.logger.Info("appointment had previous error, allowing retry",
			"appointment_id", appointmentID)
		return true
	}
	return false
}

// MarkProcessing atomically claims an appointment. It returns true only when
// this call created the record; false means another instance already owns it.
func (t *Tracker) MarkProcessing(ctx context.Context, appointmentID string) (bool, error) {
	record := model.TrackingRecord{
		Status:    model.TrackingStatusProcessing,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("failed to encode tracking record: %w", err)
	}

	// Single conditional write. A GET-then-SET pair would race against other
	// checker instances sharing this store.
	created, err := t.client.SetNX(ctx, t.key(appointmentID), data, t.config.TrackingTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark appointment processing: %w", err)
	}
	return created, nil
}

// MarkCompleted overwrites the record with a terminal completed state and a
// fresh retention TTL.
func (t *Tracker) MarkCompleted(ctx context.Context, appointmentID, taskID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	record := model.TrackingRecord{
		TaskID:      taskID,
		Status:      model.TrackingStatusCompleted,
		CreatedAt:   now,
		CompletedAt: now,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode tracking record: %w", err)
	}

	if err := t.client.Set(ctx, t.key(appointmentID), data, t.config.TrackingTTL).Err(); err != nil {
		return fmt.Errorf("failed to mark appointment completed: %w", err)
	}
	return nil
}

// MarkError records a failed attempt. The shorter TTL lets the appointment
// retire from the store sooner than a completed one, so the next run can
// retry it even after the record expires.
func (t *Tracker) MarkError(ctx context.Context, appointmentID, message string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	record := model.TrackingRecord{
		Status:    model.TrackingStatusError,
		Error:     message,
		CreatedAt: now,
		ErrorAt:   now,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode tracking record: %w", err)
	}

	if err := t.client.Set(ctx, t.key(appointmentID), data, t.config.ErrorTTL).Err(); err != nil {
		return fmt.Errorf("failed to mark appointment error: %w", err)
	}
	return nil
}
