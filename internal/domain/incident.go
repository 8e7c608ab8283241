package domain

import "time"

// IncidentDateLayout is the wire and storage format of Incident.IncidentDate.
const IncidentDateLayout = "2006-01-02"

// Incident 蛋糕债务事件（对应 cake_incidents 表）
type Incident struct {
	ID            string    `db:"id" json:"id"`
	PersonName    string    `db:"person_name" json:"person_name"`
	IncidentDate  string    `db:"incident_date" json:"incident_date"` // YYYY-MM-DD
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	CakeDelivered bool      `db:"cake_delivered" json:"cake_delivered"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Owed reports whether the incident is still an outstanding cake debt.
func (i Incident) Owed() bool { return !i.CakeDelivered }

// PersonStats per-person aggregate, recomputed on every read
type PersonStats struct {
	Name         string `json:"name"`
	Total        int    `json:"total"`
	Owed         int    `json:"owed"`
	Delivered    int    `json:"delivered"`
	DeliveryRate int    `json:"delivery_rate"` // percent, rounded
}

// WeekBucket one Monday-starting week of the weekly activity series
type WeekBucket struct {
	Week      string    `json:"week"` // label, e.g. "Jan 02"
	WeekStart time.Time `json:"week_start"`
	WeekEnd   time.Time `json:"week_end"`
	Delivered int       `json:"delivered"`
	Owed      int       `json:"owed"`
	Total     int       `json:"total"`
}

// Summary headline numbers shown on the dashboard and stats page
type Summary struct {
	TotalIncidents int    `json:"total_incidents"`
	TotalOwed      int    `json:"total_owed"`
	TotalDelivered int    `json:"total_delivered"`
	DeliveryRate   int    `json:"delivery_rate"`
	ActiveDebtors  int    `json:"active_debtors"`
	TopDebtor      string `json:"top_debtor,omitempty"`
}

// NameSuggestion autocomplete entry: a known person and how often they appear
type NameSuggestion struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}
