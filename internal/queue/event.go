// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when a booking is successfully created.
// It carries enough information for downstream consumers to log or notify
// without querying the primary database. The CPF is masked to its middle
// digits since the broker is not part of the trust boundary of the store.
type BookingCreatedEvent struct {
	BookingID uint64 `json:"booking_id"`
	Name      string `json:"name"`
	CPFMasked string `json:"cpf_masked"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	CreatedAt string `json:"created_at"`
}

// BookingCancelledEvent is published when an admin cancels a booking and
// its slot is released back to the public agenda.
type BookingCancelledEvent struct {
	BookingID   uint64 `json:"booking_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	CancelledAt string `json:"cancelled_at"`
}
