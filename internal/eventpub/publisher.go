package eventpub

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/knxcore/knxcore/internal/knx/signal"
)

// mqttClient is the subset of *mqtt.Client Publisher depends on,
// narrowed so tests can supply a recording double instead of a live
// broker connection.
type mqttClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// kindTopic maps the span kinds worth publishing to their topic
// segment. busy_nack is folded into the "busy" topic: the spec names
// telegram_label/ack/nack/busy and a BUSY_NAK short frame is, at the
// protocol level, a busy condition with no subsequent NAK rather than
// a distinct event class.
var kindTopic = map[signal.Kind]string{
	signal.KindTelegramLabel: "telegram_label",
	signal.KindACK:           "ack",
	signal.KindNACK:          "nack",
	signal.KindBusy:          "busy",
	signal.KindBusyNack:      "busy",
}

// warningKinds are published to the single warning topic instead of a
// per-kind one.
var warningKinds = map[signal.Kind]bool{
	signal.KindParityError:   true,
	signal.KindChecksumError: true,
	signal.KindTimingError:   true,
}

// message is the JSON envelope published for every span.
type message struct {
	SessionID string `json:"session_id"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
	Kind      string `json:"kind"`
	Text      string `json:"text"`
}

// Publisher publishes decoder spans to MQTT, throttled so a noisy bus
// cannot overwhelm a slow subscriber.
type Publisher struct {
	client    mqttClient
	qos       byte
	sessionID string
	limiter   *rate.Limiter
}

// New returns a Publisher that stamps every message with a fresh
// decode-session id and throttles publishing to at most ratePerSecond
// messages per second, with a burst allowance of int(ratePerSecond)+1.
func New(client mqttClient, qos byte, ratePerSecond float64) *Publisher {
	return &Publisher{
		client:    client,
		qos:       qos,
		sessionID: uuid.NewString(),
		limiter:   rate.NewLimiter(rate.Limit(ratePerSecond), int(ratePerSecond)+1),
	}
}

// Publish inspects span.Kind and publishes it to the appropriate topic
// if it's one of the published kinds; spans that aren't (plain
// databyte, a clean checksum) are silently ignored. Returns
// ErrRateLimited if the limiter has no tokens, without blocking.
func (p *Publisher) Publish(span signal.Span) error {
	var topic string
	switch {
	case warningKinds[span.Kind]:
		topic = Topics{}.Warning()
	default:
		kind, ok := kindTopic[span.Kind]
		if !ok {
			return nil
		}
		topic = Topics{}.Span(kind)
	}

	if !p.limiter.Allow() {
		return ErrRateLimited
	}

	payload, err := json.Marshal(message{
		SessionID: p.sessionID,
		Start:     span.Start,
		End:       span.End,
		Kind:      span.Kind.String(),
		Text:      span.Text,
	})
	if err != nil {
		return fmt.Errorf("eventpub: marshal span: %w", err)
	}

	return p.client.Publish(topic, payload, p.qos, false)
}

// PublishAll publishes every span in spans in order, collecting but not
// stopping on ErrRateLimited (the caller's own metrics/logging decide
// whether dropped spans matter); any other publish error stops early.
func (p *Publisher) PublishAll(spans []signal.Span) (dropped int, err error) {
	for _, s := range spans {
		if pubErr := p.Publish(s); pubErr != nil {
			if errors.Is(pubErr, ErrRateLimited) {
				dropped++
				continue
			}
			return dropped, pubErr
		}
	}
	return dropped, nil
}
