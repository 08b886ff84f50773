package ipc

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedBroker answers each incoming frame with the next canned response,
// mimicking greetd's one-response-per-request contract.
func scriptedBroker(t *testing.T, conn net.Conn, replies []response) <-chan []request {
	t.Helper()
	got := make(chan []request, 1)
	go func() {
		defer close(got)
		var seen []request
		for _, reply := range replies {
			var length [4]byte
			if _, err := io.ReadFull(conn, length[:]); err != nil {
				got <- seen
				return
			}
			payload := make([]byte, binary.LittleEndian.Uint32(length[:]))
			if _, err := io.ReadFull(conn, payload); err != nil {
				got <- seen
				return
			}
			var req request
			if err := json.Unmarshal(payload, &req); err != nil {
				got <- seen
				return
			}
			seen = append(seen, req)

			out, err := json.Marshal(reply)
			if err != nil {
				got <- seen
				return
			}
			binary.LittleEndian.PutUint32(length[:], uint32(len(out)))
			if _, err := conn.Write(length[:]); err != nil {
				got <- seen
				return
			}
			if _, err := conn.Write(out); err != nil {
				got <- seen
				return
			}
		}
		got <- seen
	}()
	return got
}

func TestSocketClient_AuthHandshake(t *testing.T) {
	t.Parallel()

	ours, theirs := net.Pipe()
	defer ours.Close()
	defer theirs.Close()

	got := scriptedBroker(t, theirs, []response{
		{Type: respAuthMessage, AuthMessageType: authKindSecret, AuthMessage: "Password:"},
		{Type: respSuccess},
		{Type: respSuccess},
	})

	c := NewSocketClient(ours)

	reply, err := c.CreateSession("alice")
	require.NoError(t, err)
	assert.Equal(t, AuthReply{Kind: PromptSecret, Text: "Password:"}, reply)

	password := "demo"
	reply, err = c.PostAuthMessageResponse(&password)
	require.NoError(t, err)
	assert.Equal(t, Success, reply.Kind)

	require.NoError(t, c.StartSession([]string{"sway"}, []string{"XDG_SESSION_TYPE=wayland"}))

	seen := <-got
	require.Len(t, seen, 3)
	assert.Equal(t, reqCreateSession, seen[0].Type)
	assert.Equal(t, "alice", seen[0].Username)
	assert.Equal(t, reqPostAuthMessage, seen[1].Type)
	require.NotNil(t, seen[1].Response)
	assert.Equal(t, "demo", *seen[1].Response)
	assert.Equal(t, reqStartSession, seen[2].Type)
	assert.Equal(t, []string{"sway"}, seen[2].Cmd)
}

func TestSocketClient_AuthErrorMapsToGenericMessage(t *testing.T) {
	t.Parallel()

	ours, theirs := net.Pipe()
	defer ours.Close()
	defer theirs.Close()

	scriptedBroker(t, theirs, []response{
		{Type: respError, ErrorType: errKindAuth, Description: "pam_unix: bad password"},
	})

	c := NewSocketClient(ours)
	reply, err := c.CreateSession("alice")
	require.NoError(t, err)
	assert.Equal(t, AuthError, reply.Kind)
	// PAM internals are hidden behind a generic message.
	assert.Equal(t, "Authentication failed", reply.Text)
}

func TestSocketClient_StartSessionError(t *testing.T) {
	t.Parallel()

	ours, theirs := net.Pipe()
	defer ours.Close()
	defer theirs.Close()

	scriptedBroker(t, theirs, []response{
		{Type: respError, ErrorType: errKindOther, Description: "no seat available"},
	})

	c := NewSocketClient(ours)
	err := c.StartSession([]string{"sway"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no seat available")
}

func TestSocketClient_MalformedFrame(t *testing.T) {
	t.Parallel()

	ours, theirs := net.Pipe()
	defer ours.Close()

	go func() {
		defer theirs.Close()
		// Consume the request, then reply with an oversized length prefix.
		var length [4]byte
		if _, err := io.ReadFull(theirs, length[:]); err != nil {
			return
		}
		payload := make([]byte, binary.LittleEndian.Uint32(length[:]))
		if _, err := io.ReadFull(theirs, payload); err != nil {
			return
		}
		binary.LittleEndian.PutUint32(length[:], maxFrameSize+1)
		_, _ = theirs.Write(length[:])
	}()

	c := NewSocketClient(ours)
	// CancelSession performs one round trip; the oversized frame must error.
	require.Error(t, c.CancelSession())
}

func TestDemoClient(t *testing.T) {
	t.Parallel()

	c := NewDemoClient()

	reply, err := c.CreateSession("anyone")
	require.NoError(t, err)
	assert.Equal(t, PromptSecret, reply.Kind)

	wrong := "hunter2"
	reply, err = c.PostAuthMessageResponse(&wrong)
	require.NoError(t, err)
	assert.Equal(t, AuthError, reply.Kind)

	right := "demo"
	reply, err = c.PostAuthMessageResponse(&right)
	require.NoError(t, err)
	assert.Equal(t, Success, reply.Kind)

	assert.NoError(t, c.StartSession([]string{"sway"}, nil))
	assert.NoError(t, c.CancelSession())
}

func TestConnect_MissingSocketEnv(t *testing.T) {
	t.Setenv("GREETD_SOCK", "")

	_, err := Connect()
	require.ErrorIs(t, err, ErrSocketNotFound)
}
