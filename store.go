package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Store wraps all queries over the messages and clients tables. Queries are
// written with ? placeholders and passed through Rebind so the same code runs
// on sqlite and postgres.
type Store struct {
	db     *sqlx.DB
	driver string
}

func NewStore(db *sqlx.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// InsertMessage appends one row to the conversation log and returns its id.
func (st *Store) InsertMessage(clientID, text string, fromClient, read bool) (int64, error) {
	if st.driver == "postgres" {
		var id int64
		q := st.db.Rebind(`INSERT INTO messages (client_id, message, is_client_message, read) VALUES (?, ?, ?, ?) RETURNING id`)
		if err := st.db.Get(&id, q, clientID, text, fromClient, read); err != nil {
			return 0, fmt.Errorf("insert message: %w", err)
		}
		return id, nil
	}

	res, err := st.db.Exec(st.db.Rebind(`INSERT INTO messages (client_id, message, is_client_message, read) VALUES (?, ?, ?, ?)`),
		clientID, text, fromClient, read)
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert message id: %w", err)
	}
	return id, nil
}

// CreateClientState inserts a fresh state row at the first intake step.
func (st *Store) CreateClientState(clientID string) (*ClientState, error) {
	state := &ClientState{ClientID: clientID, Step: StepGetName}
	q := st.db.Rebind(`INSERT INTO clients (client_id, name, location, phone, step) VALUES (?, ?, ?, ?, ?)`)
	if _, err := st.db.Exec(q, clientID, "", "", "", StepGetName); err != nil {
		return nil, fmt.Errorf("create client state: %w", err)
	}
	return state, nil
}

// GetClientState returns the state row for clientID, or nil when none exists.
func (st *Store) GetClientState(clientID string) (*ClientState, error) {
	var state ClientState
	q := st.db.Rebind(`SELECT client_id, COALESCE(name,'') AS name, COALESCE(location,'') AS location,
		COALESCE(phone,'') AS phone, COALESCE(step,'') AS step FROM clients WHERE client_id = ?`)
	err := st.db.Get(&state, q, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get client state: %w", err)
	}
	return &state, nil
}

// EnsureClientState loads the state row for clientID, reconstructing it from
// the message log when the row is missing (a client resuming a conversation
// after its state was lost). The reconstructed row starts at chatting when all
// three intake fields are already known from prior messages, get_issue
// otherwise.
func (st *Store) EnsureClientState(clientID string) (*ClientState, error) {
	state, err := st.GetClientState(clientID)
	if err != nil || state != nil {
		return state, err
	}

	var identity struct {
		Name     string `db:"client_name"`
		Location string `db:"client_location"`
		Phone    string `db:"client_phone"`
	}
	q := st.db.Rebind(`SELECT COALESCE(client_name,'') AS client_name, COALESCE(client_location,'') AS client_location,
		COALESCE(client_phone,'') AS client_phone
		FROM messages WHERE client_id = ? AND client_name IS NOT NULL ORDER BY id DESC LIMIT 1`)
	err = st.db.Get(&identity, q, clientID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recover client identity: %w", err)
	}

	step := StepGetIssue
	if identity.Name != "" && identity.Location != "" && identity.Phone != "" {
		step = StepChatting
	}

	state = &ClientState{
		ClientID: clientID,
		Name:     identity.Name,
		Location: identity.Location,
		Phone:    identity.Phone,
		Step:     step,
	}
	ins := st.db.Rebind(`INSERT INTO clients (client_id, name, location, phone, step) VALUES (?, ?, ?, ?, ?)`)
	if _, err := st.db.Exec(ins, clientID, state.Name, state.Location, state.Phone, state.Step); err != nil {
		return nil, fmt.Errorf("recover client state: %w", err)
	}

	log.Debug().Str("clientID", clientID).Str("step", string(step)).Msg("Client state reconstructed from message log")
	return state, nil
}

// UpdateClientState persists the intake fields and step for an existing row.
func (st *Store) UpdateClientState(state *ClientState) error {
	q := st.db.Rebind(`UPDATE clients SET name = ?, location = ?, phone = ?, step = ?, updated_at = CURRENT_TIMESTAMP WHERE client_id = ?`)
	if _, err := st.db.Exec(q, state.Name, state.Location, state.Phone, state.Step, state.ClientID); err != nil {
		return fmt.Errorf("update client state: %w", err)
	}
	return nil
}

// SyncMessageDetails back-fills the denormalized identity columns on every
// message row of the client where the column is still empty. First write wins:
// a non-empty value is never overwritten.
func (st *Store) SyncMessageDetails(state *ClientState) error {
	backfill := func(column, value string) error {
		if value == "" {
			return nil
		}
		q := st.db.Rebind(fmt.Sprintf(
			`UPDATE messages SET %s = ? WHERE client_id = ? AND (%s IS NULL OR %s = '')`,
			column, column, column))
		_, err := st.db.Exec(q, value, state.ClientID)
		return err
	}

	if err := backfill("client_name", state.Name); err != nil {
		return fmt.Errorf("backfill name: %w", err)
	}
	if err := backfill("client_location", state.Location); err != nil {
		return fmt.Errorf("backfill location: %w", err)
	}
	if err := backfill("client_phone", state.Phone); err != nil {
		return fmt.Errorf("backfill phone: %w", err)
	}
	return nil
}

const messageColumns = `id, COALESCE(client_id,'') AS client_id, COALESCE(client_name,'') AS client_name,
	COALESCE(client_location,'') AS client_location, COALESCE(client_phone,'') AS client_phone,
	COALESCE(message,'') AS message, is_client_message, read, COALESCE(timestamp,'') AS timestamp`

// ListClientMessages returns the full transcript of one client in
// chronological order.
func (st *Store) ListClientMessages(clientID string) ([]Message, error) {
	var msgs []Message
	q := st.db.Rebind(`SELECT ` + messageColumns + ` FROM messages WHERE client_id = ? ORDER BY timestamp ASC, id ASC`)
	if err := st.db.Select(&msgs, q, clientID); err != nil {
		return nil, fmt.Errorf("list client messages: %w", err)
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

// ListLatestPerClient returns the most recent client-authored message of every
// conversation, newest first. Identity columns fall back to the clients table
// for rows written before the back-fill reached them.
func (st *Store) ListLatestPerClient() ([]Message, error) {
	var msgs []Message
	q := `SELECT m.id, COALESCE(m.client_id,'') AS client_id,
		COALESCE(NULLIF(m.client_name,''), NULLIF(c.name,''), '') AS client_name,
		COALESCE(NULLIF(m.client_location,''), NULLIF(c.location,''), '') AS client_location,
		COALESCE(NULLIF(m.client_phone,''), NULLIF(c.phone,''), '') AS client_phone,
		COALESCE(m.message,'') AS message, m.is_client_message, m.read, COALESCE(m.timestamp,'') AS timestamp
	FROM messages m
	JOIN (
		SELECT client_id, MAX(id) AS max_id
		FROM messages
		WHERE is_client_message = TRUE
		GROUP BY client_id
	) last ON last.max_id = m.id
	LEFT JOIN clients c ON c.client_id = m.client_id
	ORDER BY m.timestamp DESC, m.id DESC`
	if err := st.db.Select(&msgs, q); err != nil {
		return nil, fmt.Errorf("list latest per client: %w", err)
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

// MarkMessageRead flags one message as read. Marking an already-read message
// again is a no-op.
func (st *Store) MarkMessageRead(id int64) error {
	q := st.db.Rebind(`UPDATE messages SET read = TRUE WHERE id = ?`)
	if _, err := st.db.Exec(q, id); err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}

// DeleteMessage removes one message row.
func (st *Store) DeleteMessage(id int64) error {
	q := st.db.Rebind(`DELETE FROM messages WHERE id = ?`)
	if _, err := st.db.Exec(q, id); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// DeleteClient removes both the transcript and the state row of one client in
// a single transaction.
func (st *Store) DeleteClient(clientID string) error {
	tx, err := st.db.Beginx()
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(tx.Rebind(`DELETE FROM messages WHERE client_id = ?`), clientID); err != nil {
		return fmt.Errorf("delete client messages: %w", err)
	}
	if _, err := tx.Exec(tx.Rebind(`DELETE FROM clients WHERE client_id = ?`), clientID); err != nil {
		return fmt.Errorf("delete client state: %w", err)
	}
	return tx.Commit()
}

// DeleteAll wipes both tables.
func (st *Store) DeleteAll() error {
	tx, err := st.db.Beginx()
	if err != nil {
		return fmt.Errorf("delete all: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages`); err != nil {
		return fmt.Errorf("delete all messages: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM clients`); err != nil {
		return fmt.Errorf("delete all clients: %w", err)
	}
	return tx.Commit()
}
