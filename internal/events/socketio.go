package events

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIOEvent is the socket.io event name every observation is emitted as.
const SocketIOEvent = "flow:event"

const connectTimeout = 15 * time.Second

// SocketIOObserver streams events to a socket.io server.
type SocketIOObserver struct {
	emit  func(event string, payload any) error
	close func()
}

// DialSocketIO connects to rawURL and returns an observer emitting on the
// given namespace. It waits until the connection is established.
func DialSocketIO(ctx context.Context, rawURL, namespace string) (*SocketIOObserver, error) {
	logger := ctxlog.FromContext(ctx).With("url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("events URL must be absolute, got '%s'", rawURL)
	}
	if namespace == "" {
		namespace = "/"
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Connected to event sink.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}

	return newSocketIOObserver(
		func(event string, payload any) error { return io.Emit(event, payload) },
		func() { io.Disconnect() },
	), nil
}

func newSocketIOObserver(emit func(string, any) error, close func()) *SocketIOObserver {
	return &SocketIOObserver{emit: emit, close: close}
}

// Observe emits e. Delivery failures are logged and otherwise ignored; the
// event sink never fails a run.
func (o *SocketIOObserver) Observe(ctx context.Context, e Event) {
	if err := o.emit(SocketIOEvent, Payload(e)); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to emit event.", "kind", string(e.Kind), "error", err)
	}
}

// Close disconnects from the server.
func (o *SocketIOObserver) Close() {
	o.close()
}

// Payload is the wire form of an event.
func Payload(e Event) map[string]any {
	p := map[string]any{
		"run_id": e.RunID,
		"kind":   string(e.Kind),
		"time":   e.Time.UTC().Format(time.RFC3339Nano),
	}
	if e.NodeID != "" {
		p["node_id"] = e.NodeID
	}
	if e.Firing > 0 {
		p["firing"] = e.Firing
	}
	if len(e.Missing) > 0 {
		p["missing"] = e.Missing
	}
	if e.Err != nil {
		p["error"] = e.Err.Error()
	}
	return p
}
