// Package server implements the HTTP server using Echo framework.
//
// Routes: REST API under /api (products, queue, audio), the viewer
// WebSocket at /ws, health probes and /metrics. Handlers split by domain:
// handlers_products.go, handlers_queue.go, handlers_audio.go,
// handlers_ws.go, handlers_health.go. Handlers translate requests into
// queue.Service calls and serialize results; all policy lives below.
package server
