// Package reconcile implements the client-side merge of polled message rows
// into already-rendered conversation state: optimistically rendered entries
// are bound to their server-confirmed rows instead of being drawn twice, and
// rows fetched more than once are rendered exactly once.
package reconcile

// Message is one server-confirmed row as seen by a poll.
type Message struct {
	ID             int64
	ClientID       string
	Text           string
	FromClient     bool
	Read           bool
	ClientName     string
	ClientLocation string
	ClientPhone    string
	Timestamp      string
}

// Entry is one rendered conversation bubble. ID stays zero while the entry is
// only known locally (optimistic render awaiting server confirmation).
type Entry struct {
	ID         int64
	Text       string
	FromClient bool
	Read       bool
}

// Confirmed reports whether the entry has been bound to a server row.
func (e *Entry) Confirmed() bool { return e.ID != 0 }

// pending is an optimistic entry waiting for its server row. minID is the
// highest server id known when the entry was rendered; only rows with a
// larger id may bind to it.
type pending struct {
	text  string
	entry *Entry
	minID int64
}

// Timeline holds the rendered state of one conversation: the visitor widget's
// view. Two pending queues track optimistic renders, one for client-authored
// sends and one for assistant replies rendered straight from the send
// response ahead of the next poll.
type Timeline struct {
	entries          []*Entry
	byID             map[int64]*Entry
	pendingClient    []pending
	pendingAssistant []pending
	lastServerID     int64
}

func NewTimeline() *Timeline {
	return &Timeline{byID: make(map[int64]*Entry)}
}

// AppendLocal renders an entry optimistically and queues it for confirmation
// by a later poll.
func (t *Timeline) AppendLocal(text string, fromClient bool) *Entry {
	e := &Entry{Text: text, FromClient: fromClient}
	t.entries = append(t.entries, e)
	p := pending{text: text, entry: e, minID: t.lastServerID}
	if fromClient {
		t.pendingClient = append(t.pendingClient, p)
	} else {
		t.pendingAssistant = append(t.pendingAssistant, p)
	}
	return e
}

// ApplyResult describes what one poll changed.
type ApplyResult struct {
	// Appended lists rows rendered fresh this poll, in arrival order.
	Appended []*Entry
	// ReadChanged lists previously rendered client entries whose read flag
	// flipped this poll.
	ReadChanged []*Entry
	// AssistantArrived is set when an assistant row appended or confirmed
	// this poll, which forces a scroll-to-bottom even away from the bottom.
	AssistantArrived bool
}

// Apply merges one poll's rows into the timeline. For each row: an already
// seen id only refreshes the read receipt; an unseen row first tries to bind
// to a pending optimistic entry with identical text and a smaller minID
// (first match wins); otherwise it is rendered fresh in arrival order.
//
// The text-equality heuristic is deliberately simple: two identical
// simultaneous messages from the same client can bind to the wrong
// placeholder. That ambiguity is accepted, not fixed.
func (t *Timeline) Apply(msgs []Message) ApplyResult {
	var res ApplyResult

	for _, m := range msgs {
		if m.ID != 0 {
			if e, ok := t.byID[m.ID]; ok {
				if m.FromClient && e.Read != m.Read {
					e.Read = m.Read
					res.ReadChanged = append(res.ReadChanged, e)
				}
				continue
			}
		}

		if e := t.takePending(m); e != nil {
			e.ID = m.ID
			if m.FromClient {
				e.Read = m.Read
			}
			if m.ID != 0 {
				t.byID[m.ID] = e
			}
			if !m.FromClient {
				res.AssistantArrived = true
			}
			continue
		}

		e := &Entry{ID: m.ID, Text: m.Text, FromClient: m.FromClient, Read: m.Read}
		t.entries = append(t.entries, e)
		if m.ID != 0 {
			t.byID[m.ID] = e
		}
		res.Appended = append(res.Appended, e)
		if !m.FromClient {
			res.AssistantArrived = true
		}
	}

	for _, m := range msgs {
		if m.ID > t.lastServerID {
			t.lastServerID = m.ID
		}
	}
	return res
}

func (t *Timeline) takePending(m Message) *Entry {
	q := &t.pendingClient
	if !m.FromClient {
		q = &t.pendingAssistant
	}
	for i, p := range *q {
		if p.text == m.Text && m.ID > p.minID {
			*q = append((*q)[:i], (*q)[i+1:]...)
			return p.entry
		}
	}
	return nil
}

// Entries returns every rendered entry in display order.
func (t *Timeline) Entries() []*Entry {
	return t.entries
}

// PendingCount returns how many optimistic entries still await confirmation.
// Entries whose confirmation never arrives stay pending forever; that is an
// accepted degraded state, not an error.
func (t *Timeline) PendingCount() int {
	return len(t.pendingClient) + len(t.pendingAssistant)
}

// LastServerID returns the highest server-assigned id seen so far.
func (t *Timeline) LastServerID() int64 {
	return t.lastServerID
}

// Reset clears all rendered state, as the widget does when it starts a fresh
// conversation.
func (t *Timeline) Reset() {
	t.entries = nil
	t.byID = make(map[int64]*Entry)
	t.pendingClient = nil
	t.pendingAssistant = nil
	t.lastServerID = 0
}
