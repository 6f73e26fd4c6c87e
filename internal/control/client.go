package control

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// closeWait bounds the closing handshake when ctx carries no deadline.
const closeWait = 2 * time.Second

// Send dials a running instance at addr, sends one command and returns its reply.
// It completes the closing handshake so the server frees its single client slot
// before Send returns.
func Send(ctx context.Context, addr string, msg Message) (Message, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws/control"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return Message{}, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}
	if err := conn.WriteJSON(msg); err != nil {
		return Message{}, fmt.Errorf("sending %q: %w", msg.T, err)
	}
	var reply Message
	if err := conn.ReadJSON(&reply); err != nil {
		return Message{}, fmt.Errorf("reading reply: %w", err)
	}
	closeHandshake(ctx, conn)
	if reply.T == "error" {
		return reply, errors.New(reply.Error)
	}
	return reply, nil
}

// closeHandshake sends a close frame and drains until the peer closes too.
func closeHandshake(ctx context.Context, conn *websocket.Conn) {
	deadline := time.Now().Add(closeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		return
	}
	_ = conn.SetReadDeadline(deadline)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
