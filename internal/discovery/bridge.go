package discovery

import (
	"fmt"
	"time"
)

// Bridge represents a discovered serial-over-TCP bridge on the network.
type Bridge struct {
	// Name is the mDNS instance name (e.g., "ser2net-imu")
	Name string

	// Hostname is the mDNS hostname (e.g., "bench-pi.local.")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.4.16")
	IP string

	// Port is the TCP port the serial stream is exposed on
	Port int

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the bridge was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the bridge
func (b *Bridge) String() string {
	return fmt.Sprintf("Serial bridge %s (%s) at %s:%d", b.Name, b.Hostname, b.IP, b.Port)
}

// Addr returns the host:port dial address for the bridge
func (b *Bridge) Addr() string {
	return fmt.Sprintf("%s:%d", b.IP, b.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
