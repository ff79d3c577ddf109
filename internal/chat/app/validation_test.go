package app

import (
	"testing"

	"chat_relay_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeJoin(t *testing.T) {
	cases := []struct {
		name     string
		roomID   string
		username string
		err      error
	}{
		{"username length 1 rejected", "R12", "a", domain.ErrInvalidUsername},
		{"username length 2 accepted", "R12", "ab", nil},
		{"room length 2 rejected", "R1", "alice", domain.ErrInvalidRoomID},
		{"room length 3 accepted", "R12", "alice", nil},
		{"whitespace is trimmed before counting", "  R1  ", " a ", domain.ErrInvalidUsername},
		{"characters not bytes", "日本語", "äö", nil},
		{"empty", "", "", domain.ErrInvalidUsername},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			roomID, username, err := normalizeJoin(domain.JoinRoomRequest{RoomID: c.roomID, Username: c.username})
			if c.err != nil {
				assert.ErrorIs(t, err, c.err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			assert.NoError(t, err)
			assert.NotEmpty(t, roomID)
			assert.NotEmpty(t, username)
		})
	}

	roomID, username, err := normalizeJoin(domain.JoinRoomRequest{RoomID: "  lobby ", Username: " bob "})
	assert.NoError(t, err)
	assert.Equal(t, "lobby", roomID)
	assert.Equal(t, "bob", username)
}

func TestNormalizeBody(t *testing.T) {
	_, err := normalizeBody(" \n\t ")
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	body, err := normalizeBody("  hi  ")
	assert.NoError(t, err)
	assert.Equal(t, "hi", body)
}
