// Package protocol implements the compact single-letter command grammar
// that remote clients speak to the alarm engine: add, remove, toggle,
// list, status and ping, each answered with OK- or ERROR-prefixed frames
// sized for a small transport MTU. Commands arriving from the transport
// are buffered in a bounded Queue and executed by the Interpreter from the
// tick loop, which keeps all registry writes on one goroutine.
package protocol
