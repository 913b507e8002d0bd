package reconcile

import "time"

// HighlightWindow is how long a freshly arrived row stays visually marked in
// the operator list.
const HighlightWindow = 10 * time.Second

// Inbox tracks the operator dashboard's view of the latest-message-per-client
// list. It keeps a notification-seen set separate from anything the renderer
// holds: a row may already be displayed from an earlier fetch and still never
// have qualified for a notification, so notification bookkeeping is keyed by
// message id on its own.
type Inbox struct {
	rows           []Message
	seen           map[int64]bool
	highlightUntil map[int64]time.Time
	deleted        map[int64]bool

	now func() time.Time
}

func NewInbox() *Inbox {
	return &Inbox{
		seen:           make(map[int64]bool),
		highlightUntil: make(map[int64]time.Time),
		deleted:        make(map[int64]bool),
		now:            time.Now,
	}
}

// Apply takes one poll's latest-per-client rows and returns the rows that
// should notify the operator this round: unread client-authored messages
// whose id has not been seen before. Each id notifies at most once, ever.
// notify is false on the initial fetch so a reloaded dashboard does not
// re-announce its backlog.
func (b *Inbox) Apply(msgs []Message, notify bool) []Message {
	b.rows = msgs

	var fresh []Message
	now := b.now()
	for _, m := range msgs {
		if m.ID == 0 || b.seen[m.ID] {
			continue
		}
		b.seen[m.ID] = true
		if notify && m.FromClient && !m.Read {
			fresh = append(fresh, m)
			b.highlightUntil[m.ID] = now.Add(HighlightWindow)
		}
	}
	return fresh
}

// Rows returns the current list with locally deleted rows filtered out.
func (b *Inbox) Rows() []Message {
	out := make([]Message, 0, len(b.rows))
	for _, m := range b.rows {
		if b.deleted[m.ID] {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Highlighted reports whether the row should still carry the new-message
// mark. Expired marks are dropped on the way out.
func (b *Inbox) Highlighted(id int64) bool {
	until, ok := b.highlightUntil[id]
	if !ok {
		return false
	}
	if b.now().After(until) {
		delete(b.highlightUntil, id)
		return false
	}
	return true
}

// MarkDeleted hides rows locally until the server-side delete is reflected by
// a later poll.
func (b *Inbox) MarkDeleted(ids ...int64) {
	for _, id := range ids {
		b.deleted[id] = true
	}
}
