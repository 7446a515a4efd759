// Package transport carries the single-letter command protocol between the
// alarm engine and a remote client. Two links are provided: a TCP server
// speaking newline-delimited frames to one client at a time, and an MQTT
// link bridging a command topic and a response topic. Both clamp outbound
// frames to the protocol's byte ceiling. FakeLink backs the tests.
package transport
