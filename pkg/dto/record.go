package dto

import "time"

// RecordEvent wraps a persisted record on the message bus and the live feed.
type RecordEvent struct {
	Topic     string    `json:"topic"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}
