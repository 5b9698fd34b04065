// Package server exposes the decoded event stream over HTTP.
//
// Clients connect to /ws and receive one JSON object per decoded device
// message; /healthz reports liveness. The server is read-only: nothing a
// client sends is forwarded to the device.
package server
