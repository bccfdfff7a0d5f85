// Package stream publishes live turn records over a nanomsg pub/sub socket so
// that viewers can follow a run while it is in progress.
package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/pipeswarm/pkg/logging"
	"github.com/dd0wney/pipeswarm/pkg/simulation"
)

// Topics prefix every message
var (
	TopicTurn = []byte("turn ")
	TopicDone = []byte("done ")
)

// ErrTimeout is returned by Subscriber.Next when nothing arrived in time
var ErrTimeout = errors.New("stream: receive timed out")

// Event is one message on the stream. Record is set for turn events and
// Result for the final event.
type Event struct {
	Kind   string                 `json:"kind"`
	RunID  string                 `json:"run_id"`
	State  string                 `json:"state"`
	Record *simulation.TurnRecord `json:"record,omitempty"`
	Result *simulation.Result     `json:"result,omitempty"`
}

// Publisher is a simulation.Observer that broadcasts every turn
type Publisher struct {
	sock   mangos.Socket
	logger logging.Logger
}

// NewPublisher listens on addr, e.g. "tcp://127.0.0.1:7400" or "inproc://run"
func NewPublisher(addr string, logger logging.Logger) (*Publisher, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create pub socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Publisher{sock: sock, logger: logger.With(logging.Component("stream"))}, nil
}

// OnTurn implements simulation.Observer
func (p *Publisher) OnTurn(runID string, rec simulation.TurnRecord, state simulation.State) {
	p.publish(TopicTurn, Event{Kind: "turn", RunID: runID, State: state.String(), Record: &rec})
}

// OnFinish implements simulation.Observer
func (p *Publisher) OnFinish(res *simulation.Result) {
	p.publish(TopicDone, Event{Kind: "done", RunID: res.RunID, State: res.State.String(), Result: res})
}

// Publish sends ev under the topic matching its kind
func (p *Publisher) Publish(ev Event) error {
	topic := TopicTurn
	if ev.Kind == "done" {
		topic = TopicDone
	}
	return p.send(topic, ev)
}

func (p *Publisher) publish(topic []byte, ev Event) {
	if err := p.send(topic, ev); err != nil {
		p.logger.Warn("publish failed", logging.String("kind", ev.Kind), logging.Error(err))
	}
}

func (p *Publisher) send(topic []byte, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	msg := make([]byte, 0, len(topic)+len(data))
	msg = append(msg, topic...)
	return p.sock.Send(append(msg, data...))
}

// Close closes the socket
func (p *Publisher) Close() error {
	return p.sock.Close()
}

// Subscriber follows a Publisher
type Subscriber struct {
	sock mangos.Socket
}

// Dial connects to a publisher at addr and subscribes to every topic
func Dial(addr string) (*Subscriber, error) {
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create sub socket: %w", err)
	}
	for _, topic := range [][]byte{TopicTurn, TopicDone} {
		if err := sock.SetOption(mangos.OptionSubscribe, topic); err != nil {
			sock.Close()
			return nil, err
		}
	}
	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Subscriber{sock: sock}, nil
}

// Next waits up to timeout for the next event
func (s *Subscriber) Next(timeout time.Duration) (*Event, error) {
	if err := s.sock.SetOption(mangos.OptionRecvDeadline, timeout); err != nil {
		return nil, err
	}
	msg, err := s.sock.Recv()
	if errors.Is(err, mangos.ErrRecvTimeout) {
		return nil, ErrTimeout
	}
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch {
	case bytes.HasPrefix(msg, TopicTurn):
		payload = msg[len(TopicTurn):]
	case bytes.HasPrefix(msg, TopicDone):
		payload = msg[len(TopicDone):]
	default:
		return nil, fmt.Errorf("unknown topic in message %q", truncate(msg, 16))
	}
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return &ev, nil
}

// Close closes the socket
func (s *Subscriber) Close() error {
	return s.sock.Close()
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
