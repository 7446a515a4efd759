// Package client implements the alarm-client command line tool.
//
// It connects to the daemon's TCP command link, sends one compact protocol
// command and prints the response frames, handling multi-frame list
// answers and heartbeat noise.
package client
