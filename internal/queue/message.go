package queue

import (
	"time"

	"github.com/iacastillo90/petcare-booking/internal/audit"
)

// BookingMessage is the JSON body published for every lifecycle event.
type BookingMessage struct {
	Event      string         `json:"event"`
	BookingID  string         `json:"booking_id,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

func NewBookingMessage(ev audit.Event) BookingMessage {
	msg := BookingMessage{
		Event:      ev.Action,
		OccurredAt: ev.OccurredAt.UTC(),
		Data:       ev.Metadata,
	}
	if ev.EntityID != nil {
		msg.BookingID = ev.EntityID.String()
	}
	if ev.ActorID != nil {
		msg.ActorID = ev.ActorID.String()
	}
	return msg
}
