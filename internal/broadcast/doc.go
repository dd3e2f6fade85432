// Package broadcast implements the WebSocket fan-out using the actor pattern.
//
// The Hub pushes queue state-change events to every connected viewer and
// sends a full snapshot to each newcomer on connect. Uses single goroutine +
// command channel (no mutexes). Per-connection write goroutines handle slow
// clients gracefully.
package broadcast
