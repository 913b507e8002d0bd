package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "chat.db")}
	db, err := InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, cfg.DBDriver)
}

func TestInsertMessageAssignsMonotonicIDs(t *testing.T) {
	st := newTestStore(t)

	first, err := st.InsertMessage("c1", "ola", true, false)
	require.NoError(t, err)
	second, err := st.InsertMessage("c1", "tudo bem?", true, false)
	require.NoError(t, err)

	assert.Greater(t, second, first)
}

func TestCreateAndGetClientState(t *testing.T) {
	st := newTestStore(t)

	created, err := st.CreateClientState("c1")
	require.NoError(t, err)
	assert.Equal(t, StepGetName, created.Step)

	loaded, err := st.GetClientState("c1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "c1", loaded.ClientID)
	assert.Equal(t, StepGetName, loaded.Step)
	assert.Empty(t, loaded.Name)

	missing, err := st.GetClientState("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEnsureClientStateRecoversFromMessages(t *testing.T) {
	st := newTestStore(t)

	// Transcript exists but the state row was lost. Identity is partially
	// known from the denormalized columns.
	_, err := st.InsertMessage("c1", "Maria Silva", true, false)
	require.NoError(t, err)
	require.NoError(t, st.SyncMessageDetails(&ClientState{ClientID: "c1", Name: "Maria Silva"}))

	state, err := st.EnsureClientState("c1")
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", state.Name)
	assert.Equal(t, StepGetIssue, state.Step)

	// The reconstructed row is persisted.
	again, err := st.GetClientState("c1")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, StepGetIssue, again.Step)
}

func TestEnsureClientStateRecoversToChattingWhenComplete(t *testing.T) {
	st := newTestStore(t)

	_, err := st.InsertMessage("c1", "oi", true, false)
	require.NoError(t, err)
	full := &ClientState{ClientID: "c1", Name: "Maria Silva", Location: "Sao Paulo, SP", Phone: "(11) 99999-0000"}
	require.NoError(t, st.SyncMessageDetails(full))

	state, err := st.EnsureClientState("c1")
	require.NoError(t, err)
	assert.Equal(t, StepChatting, state.Step)
	assert.Equal(t, "(11) 99999-0000", state.Phone)
}

func TestEnsureClientStateWithNoHistoryStartsAtGetIssue(t *testing.T) {
	st := newTestStore(t)

	state, err := st.EnsureClientState("fresh")
	require.NoError(t, err)
	assert.Equal(t, StepGetIssue, state.Step)
	assert.Empty(t, state.Name)
}

func TestSyncMessageDetailsFirstWriteWins(t *testing.T) {
	st := newTestStore(t)

	id, err := st.InsertMessage("c1", "oi", true, false)
	require.NoError(t, err)

	require.NoError(t, st.SyncMessageDetails(&ClientState{ClientID: "c1", Name: "Maria Silva"}))

	// A later sync with an empty name must not blank the column, and a later
	// non-empty value must not overwrite the first one.
	require.NoError(t, st.SyncMessageDetails(&ClientState{ClientID: "c1"}))
	require.NoError(t, st.SyncMessageDetails(&ClientState{ClientID: "c1", Name: "Outro Nome"}))

	msgs, err := st.ListClientMessages("c1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID)
	assert.Equal(t, "Maria Silva", msgs[0].ClientName)
}

func TestSyncMessageDetailsBackfillsEarlierRows(t *testing.T) {
	st := newTestStore(t)

	_, err := st.InsertMessage("c1", WelcomeMessage, false, false)
	require.NoError(t, err)
	_, err = st.InsertMessage("c1", "Maria Silva", true, false)
	require.NoError(t, err)

	require.NoError(t, st.SyncMessageDetails(&ClientState{ClientID: "c1", Name: "Maria Silva"}))

	msgs, err := st.ListClientMessages("c1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		assert.Equal(t, "Maria Silva", m.ClientName)
	}
}

func TestMarkMessageReadIsIdempotent(t *testing.T) {
	st := newTestStore(t)

	id, err := st.InsertMessage("c1", "oi", true, false)
	require.NoError(t, err)

	require.NoError(t, st.MarkMessageRead(id))
	require.NoError(t, st.MarkMessageRead(id))

	msgs, err := st.ListClientMessages("c1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read)
}

func TestListLatestPerClient(t *testing.T) {
	st := newTestStore(t)

	_, err := st.InsertMessage("c1", WelcomeMessage, false, false)
	require.NoError(t, err)
	_, err = st.InsertMessage("c1", "primeira", true, false)
	require.NoError(t, err)
	lastC1, err := st.InsertMessage("c1", "segunda", true, false)
	require.NoError(t, err)
	lastC2, err := st.InsertMessage("c2", "outra conversa", true, false)
	require.NoError(t, err)

	msgs, err := st.ListLatestPerClient()
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	ids := []int64{msgs[0].ID, msgs[1].ID}
	assert.Contains(t, ids, lastC1)
	assert.Contains(t, ids, lastC2)
	for _, m := range msgs {
		assert.True(t, m.IsClientMessage)
	}
}

func TestListLatestPerClientCoalescesIdentityFromState(t *testing.T) {
	st := newTestStore(t)

	// Row written before the back-fill: identity only in the clients table.
	_, err := st.InsertMessage("c1", "oi", true, false)
	require.NoError(t, err)
	_, err = st.CreateClientState("c1")
	require.NoError(t, err)
	require.NoError(t, st.UpdateClientState(&ClientState{
		ClientID: "c1", Name: "Maria Silva", Location: "Sao Paulo, SP", Phone: "(11) 99999-0000", Step: StepChatting,
	}))

	msgs, err := st.ListLatestPerClient()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Maria Silva", msgs[0].ClientName)
	assert.Equal(t, "Sao Paulo, SP", msgs[0].ClientLocation)
}

func TestDeleteClientRemovesMessagesAndState(t *testing.T) {
	st := newTestStore(t)

	_, err := st.CreateClientState("c1")
	require.NoError(t, err)
	_, err = st.InsertMessage("c1", "oi", true, false)
	require.NoError(t, err)
	_, err = st.InsertMessage("c2", "outro cliente", true, false)
	require.NoError(t, err)

	require.NoError(t, st.DeleteClient("c1"))

	msgs, err := st.ListClientMessages("c1")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	state, err := st.GetClientState("c1")
	require.NoError(t, err)
	assert.Nil(t, state)

	// The other conversation is untouched.
	others, err := st.ListClientMessages("c2")
	require.NoError(t, err)
	assert.Len(t, others, 1)

	// A purged client resuming behaves like first contact under the
	// recovery rule.
	recovered, err := st.EnsureClientState("c1")
	require.NoError(t, err)
	assert.Equal(t, StepGetIssue, recovered.Step)
}

func TestDeleteMessageAndDeleteAll(t *testing.T) {
	st := newTestStore(t)

	id, err := st.InsertMessage("c1", "oi", true, false)
	require.NoError(t, err)
	_, err = st.InsertMessage("c1", "tchau", true, false)
	require.NoError(t, err)
	_, err = st.CreateClientState("c1")
	require.NoError(t, err)

	require.NoError(t, st.DeleteMessage(id))
	msgs, err := st.ListClientMessages("c1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "tchau", msgs[0].Message)

	require.NoError(t, st.DeleteAll())
	msgs, err = st.ListClientMessages("c1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
	state, err := st.GetClientState("c1")
	require.NoError(t, err)
	assert.Nil(t, state)
}
