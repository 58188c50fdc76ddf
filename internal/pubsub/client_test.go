package pubsub

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type payload struct {
	Player string `msgpack:"player"`
	Index  int    `msgpack:"index"`
}

func TestNew_WithoutProjectOnlyLogs(t *testing.T) {
	c := New("")
	defer c.Close()

	require.NoError(t, c.SendMessage(EventMatchRecorded, payload{Player: "Jane Doe", Index: 0}))
}

func TestProcessMessage_DecodesMsgpack(t *testing.T) {
	data, err := msgpack.Marshal(payload{Player: "Jane Doe", Index: 3})
	require.NoError(t, err)

	var got payload
	require.NoError(t, New("").ProcessMessage(data, &got))
	assert.Equal(t, payload{Player: "Jane Doe", Index: 3}, got)

	assert.Error(t, New("").ProcessMessage([]byte{0xc1}, &got))
}

func TestMock_RecordsCalls(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.SendMessage(EventMatchRecorded, "a"))

	m.SendMessageFunc = func(topic EventType, data any) error { return errors.New("down") }
	assert.Error(t, m.SendMessage(EventMatchDeleted, "b"))

	assert.Equal(t, []EventType{EventMatchRecorded, EventMatchDeleted}, m.Topics())
	m.Reset()
	assert.Empty(t, m.Topics())
}
