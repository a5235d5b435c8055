package eventpub

import "fmt"

// TopicPrefix is the base for all bus-event topics this package
// publishes, mirroring the flat graylogic/{category}/{protocol}/...
// scheme the MQTT infrastructure package already uses, adapted to this
// domain's single protocol.
const TopicPrefix = "knx/bus"

// TopicWarning is the single topic parity/checksum/timing warnings
// publish to, regardless of which specific warning fired.
const TopicWarning = TopicPrefix + "/warning"

// Topics builds the bus-event topic names this package publishes to.
type Topics struct{}

// Span returns the topic a given span kind (e.g. "telegram_label",
// "ack", "nack", "busy") publishes to.
func (Topics) Span(kind string) string {
	return fmt.Sprintf("%s/%s", TopicPrefix, kind)
}

// Warning returns the single warning topic.
func (Topics) Warning() string {
	return TopicWarning
}
