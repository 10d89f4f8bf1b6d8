package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessage(t *testing.T) {
	t.Chdir(t.TempDir())

	ev := TicketReservedEvent{
		TicketID:   1,
		EventID:    7,
		UserID:     200,
		EventTitle: "Concert",
		EventDate:  "2026-10-01T20:00:00Z",
		Location:   "Main Hall",
		PriceCents: 2500,
		Remaining:  4,
		ReservedAt: "2026-08-31T12:00:00Z",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, handleMessage(body))
	require.NoError(t, handleMessage(body)) // appends

	b, err := os.ReadFile(filepath.Join("logs", "tickets.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "ticket_id=1")
	assert.Contains(t, string(b), `event="Concert"`)
	assert.Equal(t, 2, countLines(b))
}

func countLines(b []byte) int {
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}

func TestHandleMessageRejectsBadPayload(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.Error(t, handleMessage([]byte("not json")))
}
