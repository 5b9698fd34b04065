// Package discovery finds serial-over-TCP bridges on the local network
// via mDNS. Bridges exposing a device serial port (ser2net and
// compatible) advertise the RFC 2217 service type.
package discovery
