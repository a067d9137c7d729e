package model

// Event types carried inside an update envelope.
const (
	EventSlotCreated        = "slot_created"
	EventSlotDeleted        = "slot_deleted"
	EventAppointmentCreated = "appointment_created"
	EventAppointmentDeleted = "appointment_deleted"
)

// Event is the state-change payload fanned out to event stream subscribers.
// Exactly one of Slot or Appointment is set, matching Type. Date names the
// affected calendar day so clients can decide whether to re-fetch.
type Event struct {
	Type        string       `json:"type"`
	Slot        *Slot        `json:"slot,omitempty"`
	Appointment *Appointment `json:"appointment,omitempty"`
	Date        string       `json:"date"`
}

func SlotEvent(eventType string, slot *Slot) Event {
	return Event{Type: eventType, Slot: slot, Date: slot.Date.String()}
}

func AppointmentEvent(eventType string, apt *Appointment) Event {
	return Event{Type: eventType, Appointment: apt, Date: apt.Date.String()}
}
