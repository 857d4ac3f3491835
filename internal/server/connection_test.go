package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lox/syncbingo/internal/round"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func readView(t *testing.T, conn *websocket.Conn) RoundViewData {
	t.Helper()
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeRoundView, msg.Type)
	var view RoundViewData
	require.NoError(t, json.Unmarshal(msg.Data, &view))
	return view
}

func readError(t *testing.T, conn *websocket.Conn) ErrorData {
	t.Helper()
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeError, msg.Type)
	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

func send(t *testing.T, conn *websocket.Conn, mt MessageType, data any) {
	t.Helper()
	msg, err := NewMessage(mt, data, time.Now())
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

func TestWatcherReceivesViewOnConnect(t *testing.T) {
	env := newTestEnv(t)
	conn := dialWatcher(t, env, "bob")

	view := readView(t, conn)
	assert.Equal(t, int64(0), view.RoundID)
	assert.Equal(t, round.PhaseSelection, view.Phase)
	assert.Empty(t, view.Selection)
	assert.Equal(t, 1, env.srv.WatcherCount())
}

func TestWatcherSelection(t *testing.T) {
	env := newTestEnv(t)
	conn := dialWatcher(t, env, "bob")
	readView(t, conn)

	send(t, conn, MessageTypeToggleCard, ToggleCardData{CardID: 26})
	view := readView(t, conn)
	assert.Equal(t, []int{26}, view.Selection)
	assert.Equal(t, origin+112, view.Window.PlayEnd)

	send(t, conn, MessageTypeToggleCard, ToggleCardData{CardID: 27})
	assert.Equal(t, []int{26, 27}, readView(t, conn).Selection)

	send(t, conn, MessageTypeToggleCard, ToggleCardData{CardID: 28})
	assert.Equal(t, "selection_full", readError(t, conn).Code)

	send(t, conn, MessageTypeToggleCard, ToggleCardData{CardID: 26})
	assert.Equal(t, []int{27}, readView(t, conn).Selection)

	send(t, conn, MessageTypeToggleCard, ToggleCardData{CardID: 900})
	assert.Equal(t, "invalid_card", readError(t, conn).Code)

	send(t, conn, MessageTypeClearSelection, nil)
	assert.Empty(t, readView(t, conn).Selection)

	send(t, conn, MessageTypeRandomAssign, nil)
	view = readView(t, conn)
	require.Len(t, view.Selection, 2)
	assert.NotEqual(t, view.Selection[0], view.Selection[1])

	send(t, conn, MessageType("shuffle"), nil)
	assert.Equal(t, "unknown_message_type", readError(t, conn).Code)
}

func TestWatcherWinsWithOwnCard(t *testing.T) {
	env := newTestEnv(t)
	conn := dialWatcher(t, env, "bob")
	readView(t, conn)

	send(t, conn, MessageTypeToggleCard, ToggleCardData{CardID: 26})
	readView(t, conn)

	env.setTime(t, origin+120)
	env.srv.Tick()

	view := readView(t, conn)
	assert.Equal(t, round.PhaseWinnerAnnounced, view.Phase)
	require.NotNil(t, view.Winner)
	assert.Equal(t, 26, view.Winner.CardID)
	assert.True(t, view.Winner.IsLocal)
	assert.Equal(t, "bob", view.Winner.PlayerName)
	assert.Equal(t, "W-1", view.Winner.PlayerID)
}

func TestWatcherRollover(t *testing.T) {
	env := newTestEnv(t)
	conn := dialWatcher(t, env, "bob")
	readView(t, conn)

	send(t, conn, MessageTypeToggleCard, ToggleCardData{CardID: 5})
	readView(t, conn)

	// Selection is closed once calling starts.
	env.setTime(t, origin+70)
	env.srv.Tick()
	assert.Equal(t, round.PhasePlaying, readView(t, conn).Phase)

	send(t, conn, MessageTypeToggleCard, ToggleCardData{CardID: 6})
	assert.Equal(t, "selection_closed", readError(t, conn).Code)

	// Card 5 does not win round 0, so round 1 chains from its original window.
	env.setTime(t, origin+200)
	env.srv.Tick()

	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeRollover, msg.Type)
	var rollover RolloverData
	require.NoError(t, json.Unmarshal(msg.Data, &rollover))
	assert.Equal(t, RolloverData{PreviousRoundID: 0, RoundID: 1}, rollover)

	view := readView(t, conn)
	assert.Equal(t, int64(1), view.RoundID)
	assert.Empty(t, view.Selection)
	assert.Equal(t, round.PhaseSelection, view.Phase)
}

func TestWatcherDisconnect(t *testing.T) {
	env := newTestEnv(t)
	conn := dialWatcher(t, env, "bob")
	readView(t, conn)
	require.Equal(t, 1, env.srv.WatcherCount())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return env.srv.WatcherCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestWatcherRateLimited(t *testing.T) {
	env := newTestEnv(t)
	conn := dialWatcher(t, env, "bob")
	readView(t, conn)

	const sent = messageBurst + 10
	for range sent {
		send(t, conn, MessageTypeClearSelection, nil)
	}

	limited := 0
	for range sent {
		msg := readMessage(t, conn)
		if msg.Type != MessageTypeError {
			continue
		}
		var data ErrorData
		require.NoError(t, json.Unmarshal(msg.Data, &data))
		assert.Equal(t, "rate_limited", data.Code)
		limited++
	}
	assert.Positive(t, limited)
}

func TestWatcherTracksCard(t *testing.T) {
	env := newTestEnv(t)
	conn := dialWatcher(t, env, "bob")
	readView(t, conn)

	send(t, conn, MessageTypeTrackCard, TrackCardData{CardID: 1})
	assert.Equal(t, "tracking_closed", readError(t, conn).Code)

	env.setTime(t, origin+100)
	env.srv.Tick()
	require.Equal(t, round.PhasePlaying, readView(t, conn).Phase)

	send(t, conn, MessageTypeTrackCard, TrackCardData{CardID: 501})
	assert.Equal(t, "invalid_card", readError(t, conn).Code)

	send(t, conn, MessageTypeTrackCard, TrackCardData{CardID: 1})
	view := readView(t, conn)
	assert.Empty(t, view.Selection)
	require.NotNil(t, view.Tracked)
	assert.Equal(t, 1, view.Tracked.CardID)
	for _, i := range []int{6, 10, 12, 14, 17} {
		assert.True(t, view.Tracked.Marked[i], "cell %d", i)
	}
	assert.False(t, view.Tracked.Marked[0])
	assert.Equal(t, 41, view.Tracked.Numbers[10])

	send(t, conn, MessageTypeTrackCard, TrackCardData{CardID: 0})
	assert.Nil(t, readView(t, conn).Tracked)

	// Tracking ends with the round.
	send(t, conn, MessageTypeTrackCard, TrackCardData{CardID: 1})
	require.NotNil(t, readView(t, conn).Tracked)

	env.setTime(t, origin+200)
	env.srv.Tick()
	require.Equal(t, MessageTypeRollover, readMessage(t, conn).Type)
	view = readView(t, conn)
	assert.Equal(t, int64(1), view.RoundID)
	assert.Nil(t, view.Tracked)
}

func TestWatcherWithCardsCannotTrack(t *testing.T) {
	env := newTestEnv(t)
	conn := dialWatcher(t, env, "bob")
	readView(t, conn)

	send(t, conn, MessageTypeToggleCard, ToggleCardData{CardID: 1})
	readView(t, conn)

	env.setTime(t, origin+100)
	env.srv.Tick()
	readView(t, conn)

	send(t, conn, MessageTypeTrackCard, TrackCardData{CardID: 2})
	assert.Equal(t, "tracking_unavailable", readError(t, conn).Code)
}
