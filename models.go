package main

// Message is one row of the append-only conversation log. The client identity
// columns are denormalized copies of the intake fields, back-filled once known
// so the dashboard can show who wrote a message without joining on clients.
type Message struct {
	ID              int64  `db:"id" json:"id"`
	ClientID        string `db:"client_id" json:"client_id"`
	ClientName      string `db:"client_name" json:"client_name"`
	ClientLocation  string `db:"client_location" json:"client_location"`
	ClientPhone     string `db:"client_phone" json:"client_phone"`
	Message         string `db:"message" json:"message"`
	IsClientMessage bool   `db:"is_client_message" json:"is_client_message"`
	Read            bool   `db:"read" json:"read"`
	Timestamp       string `db:"timestamp" json:"timestamp"`
}

// ClientState is the per-client intake row: which fields were collected so far
// and where the scripted conversation currently stands.
type ClientState struct {
	ClientID  string `db:"client_id" json:"client_id"`
	Name      string `db:"name" json:"name"`
	Location  string `db:"location" json:"location"`
	Phone     string `db:"phone" json:"phone"`
	Step      Step   `db:"step" json:"step"`
	UpdatedAt string `db:"updated_at" json:"updated_at,omitempty"`
}
