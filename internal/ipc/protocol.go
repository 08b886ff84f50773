// Package ipc speaks the greetd wire protocol: every frame is a 32-bit
// little-endian payload length followed by a JSON object, written over a
// persistent unix stream socket. The exchange is strictly half-duplex; each
// request is answered by exactly one response.
package ipc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// Request type tags.
const (
	reqCreateSession   = "create_session"
	reqPostAuthMessage = "post_auth_message_response"
	reqStartSession    = "start_session"
	reqCancelSession   = "cancel_session"
)

// Response type tags.
const (
	respSuccess     = "success"
	respError       = "error"
	respAuthMessage = "auth_message"
)

// Auth message kinds carried by an auth_message response.
const (
	authKindSecret  = "secret"
	authKindVisible = "visible"
	authKindInfo    = "info"
	authKindError   = "error"
)

// Error kinds carried by an error response.
const (
	errKindAuth  = "auth_error"
	errKindOther = "error"
)

type request struct {
	Type     string   `json:"type"`
	Username string   `json:"username,omitempty"`
	Response *string  `json:"response,omitempty"`
	Cmd      []string `json:"cmd,omitempty"`
	Env      []string `json:"env,omitempty"`
}

type response struct {
	Type            string `json:"type"`
	AuthMessageType string `json:"auth_message_type,omitempty"`
	AuthMessage     string `json:"auth_message,omitempty"`
	ErrorType       string `json:"error_type,omitempty"`
	Description     string `json:"description,omitempty"`
}

// AuthKind classifies an AuthReply.
type AuthKind int

const (
	// PromptSecret asks for hidden input (a password).
	PromptSecret AuthKind = iota
	// PromptVisible asks for visible input.
	PromptVisible
	// Info carries an informational message.
	Info
	// AuthError carries a failure the user can recover from.
	AuthError
	// Success means authentication finished.
	Success
)

// AuthReply is the broker's answer to one authentication request. Exactly one
// reply is produced per request.
type AuthReply struct {
	Kind AuthKind
	Text string
}

// writeFrame encodes req as one length-prefixed JSON frame.
func writeFrame(w io.Writer, req request) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(payload)))
	if _, err := w.Write(length[:]); err != nil {
		return fmt.Errorf("write frame length: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// readFrame decodes one length-prefixed JSON response frame.
func readFrame(r io.Reader) (response, error) {
	var length [4]byte
	if _, err := io.ReadFull(r, length[:]); err != nil {
		return response{}, fmt.Errorf("read frame length: %w", err)
	}
	n := binary.LittleEndian.Uint32(length[:])
	if n > maxFrameSize {
		return response{}, fmt.Errorf("malformed frame: length %d exceeds limit", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return response{}, fmt.Errorf("read frame payload: %w", err)
	}
	var resp response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

// maxFrameSize bounds a single response payload; greetd responses are tiny.
const maxFrameSize = 1 << 20

// toAuthReply maps a wire response onto the closed AuthReply vocabulary.
func toAuthReply(resp response) (AuthReply, error) {
	switch resp.Type {
	case respSuccess:
		return AuthReply{Kind: Success}, nil
	case respAuthMessage:
		switch resp.AuthMessageType {
		case authKindSecret:
			return AuthReply{Kind: PromptSecret, Text: resp.AuthMessage}, nil
		case authKindVisible:
			return AuthReply{Kind: PromptVisible, Text: resp.AuthMessage}, nil
		case authKindInfo:
			return AuthReply{Kind: Info, Text: resp.AuthMessage}, nil
		case authKindError:
			return AuthReply{Kind: AuthError, Text: resp.AuthMessage}, nil
		default:
			return AuthReply{}, fmt.Errorf("malformed frame: auth message kind %q", resp.AuthMessageType)
		}
	case respError:
		if resp.ErrorType == errKindAuth {
			return AuthReply{Kind: AuthError, Text: "Authentication failed"}, nil
		}
		return AuthReply{Kind: AuthError, Text: resp.Description}, nil
	default:
		return AuthReply{}, fmt.Errorf("malformed frame: response type %q", resp.Type)
	}
}
