// Package main provides a CI-friendly WebSocket smoke test for the availability feed.
//
// It validates:
//   - handshake + subprotocol selection
//   - snapshot on connect for every client
//   - refresh -> snapshot
//   - error frame for an unsupported client type
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"

	v1 "github.com/yatinannam/foundathon-landing-sub000/shared/contracts/availability/v1"
)

const maxReadBytes = 1 << 20 // 1MiB

type smokeClient struct {
	name string
	conn *websocket.Conn

	inbox chan v1.Envelope
	errCh chan error
}

func main() {
	var (
		wsURL    = flag.String("url", "ws://127.0.0.1:8080/ws/availability", "WebSocket URL")
		origin   = flag.String("origin", "http://localhost", "Origin header to send (browser-like WS handshake)")
		minItems = flag.Int("min-items", 1, "Minimum problem statements expected in a snapshot")
		timeout  = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose  = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateWSURL(*wsURL); err != nil {
		fatalf("invalid -url: %v", err)
	}
	if err := validateOrigin(*origin); err != nil {
		fatalf("invalid -origin: %v", err)
	}

	root := context.Background()

	a := mustConnect(root, "A", *wsURL, *origin, *timeout)
	defer closeWS(a.conn)
	snapA := mustSnapshot(root, a, *minItems, *timeout)

	b := mustConnect(root, "B", *wsURL, *origin, *timeout)
	defer closeWS(b.conn)
	snapB := mustSnapshot(root, b, *minItems, *timeout)

	if snapA.Capacity != snapB.Capacity {
		fatalf("capacity mismatch between clients: A=%d B=%d", snapA.Capacity, snapB.Capacity)
	}
	if *verbose {
		fmt.Printf("connected: A B origin=%q capacity=%d items=%d\n", *origin, snapA.Capacity, len(snapA.Items))
	}

	mustWriteWithTimeout(root, a.conn, v1.Envelope{V: v1.Version, Type: v1.TypeRefresh, ID: "A-refresh", TS: time.Now().UTC()}, *timeout)
	refreshed := mustSnapshot(root, a, *minItems, *timeout)

	mustWriteWithTimeout(root, b.conn, v1.Envelope{V: v1.Version, Type: "message.send", ID: "B-bad", TS: time.Now().UTC()}, *timeout)
	ep := b.mustReadError(root, *timeout)
	if *verbose {
		fmt.Printf("error frame: code=%q msg=%q\n", ep.Code, ep.Message)
	}

	fmt.Printf("OK: capacity=%d items=%d full=%d\n", refreshed.Capacity, len(refreshed.Items), countFull(refreshed))
}

func validateWSURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	if strings.TrimSpace(u.Path) == "" {
		return errors.New("missing path")
	}
	return nil
}

func validateOrigin(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("origin must be http/https, got: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("origin missing host")
	}
	return nil
}

func mustConnect(parent context.Context, name, wsURL, origin string, stepTimeout time.Duration) *smokeClient {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	h := http.Header{}
	if strings.TrimSpace(origin) != "" {
		h.Set("Origin", origin)
	}

	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{v1.Subprotocol},
		HTTPHeader:   h,
	})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		fatalf("connect %s: %v", name, err)
	}
	if got := conn.Subprotocol(); got != v1.Subprotocol {
		fatalf("subprotocol mismatch (%s): got=%q want=%q", name, got, v1.Subprotocol)
	}

	conn.SetReadLimit(maxReadBytes)

	c := &smokeClient{
		name:  name,
		conn:  conn,
		inbox: make(chan v1.Envelope, 64),
		errCh: make(chan error, 1),
	}
	c.startReadLoop()
	return c
}

func (c *smokeClient) startReadLoop() {
	go func() {
		defer close(c.inbox)

		for {
			_, data, err := c.conn.Read(context.Background())
			if err != nil {
				c.fail(err)
				return
			}

			var env v1.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				c.fail(fmt.Errorf("bad json: %w", err))
				return
			}
			if err := env.ValidateServer(); err != nil {
				c.fail(fmt.Errorf("bad envelope: %w", err))
				return
			}

			select {
			case c.inbox <- env:
			default:
				c.fail(errors.New("inbox overflow: consumer too slow"))
				return
			}
		}
	}()
}

func (c *smokeClient) fail(err error) {
	select {
	case c.errCh <- err:
	default:
	}
}

func mustSnapshot(parent context.Context, c *smokeClient, minItems int, stepTimeout time.Duration) v1.Snapshot {
	env := c.mustReadUntilType(parent, v1.TypeSnapshot, stepTimeout)

	var snap v1.Snapshot
	if err := json.Unmarshal(env.Payload, &snap); err != nil {
		fatalf("unmarshal snapshot (%s): %v", c.name, err)
	}
	if snap.Capacity <= 0 {
		fatalf("snapshot capacity must be positive (%s): %d", c.name, snap.Capacity)
	}
	if len(snap.Items) < minItems {
		fatalf("snapshot has %d items, want >= %d (%s)", len(snap.Items), minItems, c.name)
	}
	for _, it := range snap.Items {
		if it.Taken+it.Remaining != snap.Capacity && !(it.Full && it.Remaining == 0) {
			fatalf("inconsistent item %q (%s): taken=%d remaining=%d capacity=%d", it.ID, c.name, it.Taken, it.Remaining, snap.Capacity)
		}
	}
	return snap
}

func (c *smokeClient) mustReadError(parent context.Context, stepTimeout time.Duration) v1.ErrorPayload {
	env := c.mustReadUntilType(parent, v1.TypeError, stepTimeout)
	var ep v1.ErrorPayload
	if err := json.Unmarshal(env.Payload, &ep); err != nil {
		fatalf("unmarshal error payload (%s): %v", c.name, err)
	}
	if strings.TrimSpace(ep.Code) == "" {
		fatalf("error frame missing code (%s)", c.name)
	}
	return ep
}

func (c *smokeClient) mustReadUntilType(parent context.Context, wantType string, stepTimeout time.Duration) v1.Envelope {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			fatalf("timeout waiting for %q (%s): %v", wantType, c.name, ctx.Err())
		case err := <-c.errCh:
			fatalf("connection error while waiting for %q (%s): %v", wantType, c.name, err)
		case env, ok := <-c.inbox:
			if !ok {
				fatalf("connection closed while waiting for %q (%s)", wantType, c.name)
			}
			if env.Type == wantType {
				return env
			}
			// Snapshots may arrive at any time when other clients change state.
			if env.Type == v1.TypeSnapshot {
				continue
			}
			fatalf("unexpected envelope type (%s): got=%q want=%q", c.name, env.Type, wantType)
		}
	}
}

func mustWriteWithTimeout(parent context.Context, conn *websocket.Conn, env v1.Envelope, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	b, err := json.Marshal(env)
	if err != nil {
		fatalf("marshal envelope: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
		fatalf("write failed: %v", err)
	}
}

func countFull(s v1.Snapshot) int {
	n := 0
	for _, it := range s.Items {
		if it.Full {
			n++
		}
	}
	return n
}

func closeWS(conn *websocket.Conn) {
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
