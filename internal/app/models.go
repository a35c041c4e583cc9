package app

import "time"

// Reservation statuses as stored in direct_bookings. RESERVED rows are soft
// leases that expire at reserved_until; CONFIRMED and COMPLETED always block.
const (
	StatusReserved  = "RESERVED"
	StatusConfirmed = "CONFIRMED"
	StatusCompleted = "COMPLETED"
)

// CalendarBinding is the Google Calendar connection of a workshop or employee.
type CalendarBinding struct {
	CalendarID   string     `json:"calendar_id"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	TokenExpiry  *time.Time `json:"token_expiry,omitempty"`
}

// Usable reports whether the binding can be used at all. The access token may
// be stale; that is the credential refresher's problem, not a usability one.
func (b CalendarBinding) Usable() bool {
	return b.CalendarID != "" && b.AccessToken != "" && b.RefreshToken != ""
}

type Workshop struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Timezone     string          `json:"timezone,omitempty"`
	OpeningHours string          `json:"-"` // raw JSON, possibly double-encoded
	Calendar     CalendarBinding `json:"calendar"`
	OnVacation   bool            `json:"on_vacation"`
	Employees    []Employee      `json:"employees,omitempty"`
}

type Employee struct {
	ID           string          `json:"id"`
	WorkshopID   string          `json:"workshop_id"`
	Name         string          `json:"name"`
	WorkingHours string          `json:"-"` // raw JSON weekly table
	Calendar     CalendarBinding `json:"calendar"`
	OnVacation   bool            `json:"on_vacation"`
}

// Reservation is a locally stored direct booking. Time is the slot start as
// "HH:MM" in the workshop's operating timezone.
type Reservation struct {
	ID            string     `json:"id"`
	WorkshopID    string     `json:"workshop_id"`
	Date          time.Time  `json:"date"`
	Time          string     `json:"time"`
	Status        string     `json:"status"`
	ReservedUntil *time.Time `json:"reserved_until,omitempty"`
}
