// Package eventpub subscribes to the signal decoder's output spans and
// publishes the ones worth telling a subscriber about to MQTT: telegram
// labels and short-frame classifications on knx/bus/<kind>, and
// parity/checksum/timing warnings on knx/bus/warning. Plain databyte
// spans and successful checksum spans are not published — they exist to
// assemble the telegram, not to be events in their own right.
package eventpub
