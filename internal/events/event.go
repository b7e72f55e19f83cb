package events

import "time"

// Event is the JSON envelope written to every topic.
type Event struct {
	Type      string         `json:"type"`
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

func NewEvent(typ, id string, data map[string]any) Event {
	return Event{Type: typ, ID: id, Timestamp: time.Now().Unix(), Data: data}
}
