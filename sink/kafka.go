/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"chainguard.dev/trialscreen/screening/matcher"
	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EventType labels match result events.
const EventType = "trialscreen.match_result"

// Event is the message value published for each result.
type Event struct {
	ID        string               `json:"id"`
	Type      string               `json:"type"`
	RunID     string               `json:"run_id"`
	Timestamp time.Time            `json:"timestamp"`
	Result    *matcher.MatchResult `json:"result"`
}

// MessageWriter is the subset of *kafka.Writer used by Kafka.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes results to a topic, keyed by patient and study so that
// updates for the same pair land on the same partition.
type Kafka struct {
	writer MessageWriter
	runID  string
	now    func() time.Time
}

// NewKafka creates a synchronous publisher that waits for all replicas.
func NewKafka(brokers []string, topic, runID string) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}
	return newKafka(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}, runID), nil
}

func newKafka(w MessageWriter, runID string) *Kafka {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Kafka{writer: w, runID: runID, now: time.Now}
}

// Write implements Sink.
func (k *Kafka) Write(ctx context.Context, result *matcher.MatchResult) error {
	if result == nil {
		return errors.New("result is nil")
	}
	event := Event{
		ID:        uuid.NewString(),
		Type:      EventType,
		RunID:     k.runID,
		Timestamp: k.now().UTC(),
		Result:    result,
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(result.PatientID + "/" + result.StudyID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(EventType)},
			{Key: "run-id", Value: []byte(k.runID)},
			{Key: "rule-decision", Value: []byte(result.RuleDecision)},
			{Key: "final-decision", Value: []byte(result.FinalDecision)},
			{Key: "conflict", Value: []byte(strconv.FormatBool(result.Conflict))},
		},
	}

	log := clog.FromContext(ctx).With("event_id", event.ID).With("patient_id", result.PatientID).With("study_id", result.StudyID)
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		log.Errorf("Failed to publish match result: %v", err)
		return fmt.Errorf("publishing result for %s: %w", result.PatientID, err)
	}
	log.Debug("Published match result")
	return nil
}

// Close implements Sink.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
