// Package control exposes the session over a loopback HTTP and websocket channel.
package control

import (
	"fmt"

	"github.com/frudas24/screenoff/internal/session"
)

// Command names accepted on the websocket.
const (
	CmdToggle    = "toggle"
	CmdEnable    = "enable"
	CmdDisable   = "disable"
	CmdSecondary = "secondary"
	CmdState     = "state"
)

// Output is one enumerated monitor as reported to clients.
type Output struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Primary   bool   `json:"primary"`
	Secondary bool   `json:"secondary"`
	Mode      string `json:"mode"`
}

// Message is a control websocket payload in both directions.
type Message struct {
	T          string   `json:"t"`
	ID         string   `json:"id,omitempty"`
	State      string   `json:"state,omitempty"`
	Secondary  []string `json:"secondary,omitempty"`
	Outputs    []Output `json:"outputs,omitempty"`
	Autostart  bool     `json:"autostart,omitempty"`
	SaveFailed bool     `json:"saveFailed,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// EventFor maps a client command onto a session event.
func EventFor(msg Message) (session.Event, error) {
	switch msg.T {
	case CmdToggle:
		return session.Event{Kind: session.EventToggle}, nil
	case CmdEnable:
		return session.Event{Kind: session.EventEnable}, nil
	case CmdDisable:
		return session.Event{Kind: session.EventDisable}, nil
	case CmdSecondary:
		if msg.ID == "" {
			return session.Event{}, fmt.Errorf("secondary command needs an id")
		}
		return session.Event{Kind: session.EventToggleSecondary, ID: msg.ID}, nil
	case CmdState:
		return session.Event{Kind: session.EventState}, nil
	default:
		return session.Event{}, fmt.Errorf("unknown command %q", msg.T)
	}
}

// StateMessage converts a snapshot into a state reply.
func StateMessage(snap session.Snapshot) Message {
	return Message{
		T:          CmdState,
		State:      snap.State.String(),
		Secondary:  snap.Secondaries,
		Outputs:    Outputs(snap),
		Autostart:  snap.Autostart,
		SaveFailed: snap.SaveFailed,
	}
}

// Outputs converts the snapshot outputs into their wire form.
func Outputs(snap session.Snapshot) []Output {
	out := make([]Output, 0, len(snap.Outputs))
	for _, o := range snap.Outputs {
		out = append(out, Output{
			ID:        o.ID,
			Name:      o.Name,
			Primary:   o.Primary,
			Secondary: snap.IsSecondary(o.ID),
			Mode:      o.Mode.String(),
		})
	}
	return out
}
