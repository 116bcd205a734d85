package model

import "time"

// Booking status values. A booking starts out pending and is marked served
// by an admin once the citizen has been attended. Only served bookings are
// eligible for retention purging.
const (
	StatusPending = "pendente"
	StatusServed  = "atendido"
)

// Booking records a citizen's reservation against one slot, mirroring the
// `bookings` table. The CPF is stored as its 11 digits with no punctuation.
//
// Fields:
//
//	ID        – primary key identifier.
//	Name      – full name of the citizen.
//	CPF       – 11-digit national identifier (digits only).
//	Email     – contact e-mail.
//	Phone     – contact phone, 10 or 11 digits.
//	Date      – booked calendar date in YYYY-MM-DD form.
//	Time      – booked time of day in HH:MM form.
//	Status    – StatusPending or StatusServed.
//	CreatedAt – creation timestamp.
type Booking struct {
	ID        uint64    `json:"id"`       // bookings.id
	Name      string    `json:"nome"`     // bookings.name
	CPF       string    `json:"cpf"`      // bookings.cpf
	Email     string    `json:"email"`    // bookings.email
	Phone     string    `json:"telefone"` // bookings.phone
	Date      string    `json:"data"`     // bookings.slot_date
	Time      string    `json:"hora"`     // bookings.slot_time
	Status    string    `json:"status"`   // bookings.status
	CreatedAt time.Time `json:"criado_em"`
}
