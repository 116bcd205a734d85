package model

import "time"

// Slot is a bookable unit of the office agenda as stored in the `slots`
// table. A slot is created available, flipped to unavailable when a booking
// consumes it, and flipped back when the booking is cancelled. The database
// enforces at most one slot per (date, time) pair.
//
// Fields:
//
//	ID        – primary key identifier.
//	Date      – calendar date in YYYY-MM-DD form.
//	Time      – time of day in HH:MM form.
//	Available – whether the slot can still be booked.
//	CreatedAt – creation timestamp.
type Slot struct {
	ID        uint64    `json:"id"`         // slots.id
	Date      string    `json:"data"`       // slots.slot_date
	Time      string    `json:"hora"`       // slots.slot_time
	Available bool      `json:"disponivel"` // slots.available
	CreatedAt time.Time `json:"-"`          // slots.created_at
}
