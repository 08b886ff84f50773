package ipc

import (
	"errors"
	"fmt"
	"net"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

// ErrSocketNotFound is returned when GREETD_SOCK is unset or the socket
// cannot be reached. Fatal at startup unless the demo client is selected.
var ErrSocketNotFound = errors.New("greetd socket not found (GREETD_SOCK not set)")

// Client is the session-broker protocol surface consumed by the
// authentication controller.
type Client interface {
	// CreateSession opens an authentication exchange for username.
	CreateSession(username string) (AuthReply, error)
	// PostAuthMessageResponse answers the broker's most recent prompt.
	// A nil response acknowledges an informational message.
	PostAuthMessageResponse(response *string) (AuthReply, error)
	// StartSession launches the authenticated session. A non-nil error means
	// session start failed and the authentication state must reset.
	StartSession(cmd, env []string) error
	// CancelSession abandons the current exchange. Best-effort.
	CancelSession() error
	// Close releases the transport.
	Close() error
}

type socketEnv struct {
	Socket string `env:"GREETD_SOCK"`
}

// SocketClient talks to a real greetd daemon over its unix socket.
type SocketClient struct {
	conn net.Conn
}

var _ Client = (*SocketClient)(nil)

// Connect dials the socket named by the GREETD_SOCK environment variable.
func Connect() (*SocketClient, error) {
	var cfg socketEnv
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if cfg.Socket == "" {
		return nil, ErrSocketNotFound
	}

	logrus.WithField("socket", cfg.Socket).Info("connecting to greetd")
	conn, err := net.Dial("unix", cfg.Socket)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSocketNotFound, err)
	}
	return &SocketClient{conn: conn}, nil
}

// NewSocketClient wraps an established connection. Used by tests with an
// in-memory pipe.
func NewSocketClient(conn net.Conn) *SocketClient {
	return &SocketClient{conn: conn}
}

func (c *SocketClient) roundTrip(req request) (response, error) {
	logrus.WithField("type", req.Type).Debug("sending request")
	if err := writeFrame(c.conn, req); err != nil {
		return response{}, err
	}
	resp, err := readFrame(c.conn)
	if err != nil {
		return response{}, err
	}
	logrus.WithField("type", resp.Type).Debug("received response")
	return resp, nil
}

func (c *SocketClient) CreateSession(username string) (AuthReply, error) {
	resp, err := c.roundTrip(request{Type: reqCreateSession, Username: username})
	if err != nil {
		return AuthReply{}, err
	}
	return toAuthReply(resp)
}

func (c *SocketClient) PostAuthMessageResponse(response *string) (AuthReply, error) {
	resp, err := c.roundTrip(request{Type: reqPostAuthMessage, Response: response})
	if err != nil {
		return AuthReply{}, err
	}
	return toAuthReply(resp)
}

func (c *SocketClient) StartSession(cmd, env []string) error {
	resp, err := c.roundTrip(request{Type: reqStartSession, Cmd: cmd, Env: env})
	if err != nil {
		return err
	}
	switch resp.Type {
	case respSuccess:
		return nil
	case respError:
		return fmt.Errorf("session start failed: %s", resp.Description)
	default:
		return fmt.Errorf("session start failed: unexpected response %q", resp.Type)
	}
}

func (c *SocketClient) CancelSession() error {
	resp, err := c.roundTrip(request{Type: reqCancelSession})
	if err != nil {
		return err
	}
	if resp.Type == respError {
		return fmt.Errorf("cancel session: %s", resp.Description)
	}
	return nil
}

func (c *SocketClient) Close() error {
	return c.conn.Close()
}

// DemoClient is a no-op transport for dry runs: it never performs I/O and
// accepts the password "demo" for any username.
type DemoClient struct{}

var _ Client = DemoClient{}

// NewDemoClient returns the no-op demo transport.
func NewDemoClient() DemoClient {
	logrus.Info("running with demo transport")
	return DemoClient{}
}

func (DemoClient) CreateSession(username string) (AuthReply, error) {
	logrus.WithField("username", username).Debug("demo create_session")
	return AuthReply{Kind: PromptSecret, Text: "Password: "}, nil
}

func (DemoClient) PostAuthMessageResponse(response *string) (AuthReply, error) {
	if response != nil && *response == "demo" {
		return AuthReply{Kind: Success}, nil
	}
	return AuthReply{Kind: AuthError, Text: "Invalid password (hint: use 'demo')"}, nil
}

func (DemoClient) StartSession(cmd, env []string) error {
	logrus.WithFields(logrus.Fields{"cmd": cmd, "env": env}).Info("demo start_session")
	return nil
}

func (DemoClient) CancelSession() error { return nil }

func (DemoClient) Close() error { return nil }
