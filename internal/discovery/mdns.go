package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type serial bridges advertise.
	// ser2net and RFC 2217 compatible bridges use "_rfc2217._tcp".
	ServiceType = "_rfc2217._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for bridge discovery
	DefaultScanTimeout = 10 * time.Second
)

// Scanner handles mDNS bridge discovery
type Scanner struct {
	// Timeout is the maximum time to wait for discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForBridges discovers all serial bridges on the local network
func (s *Scanner) ScanForBridges() ([]*Bridge, error) {
	return s.ScanForBridgesWithContext(context.Background())
}

// ScanForBridgesWithContext discovers bridges with a custom context
func (s *Scanner) ScanForBridgesWithContext(ctx context.Context) ([]*Bridge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	bridges := make([]*Bridge, 0)
	collected := make(chan struct{})

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		defer close(collected)
		for entry := range entries {
			bridge := parseServiceEntry(entry)
			if bridge != nil {
				bridges = append(bridges, bridge)
			}
		}
	}()

	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for the timeout, then for the collector to drain the channel.
	<-ctx.Done()
	<-collected

	return bridges, nil
}

// WaitForBridge waits for a bridge whose instance name matches name.
// Returns the bridge or an error if not found within the timeout.
func (s *Scanner) WaitForBridge(ctx context.Context, name string) (*Bridge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	bridgeChan := make(chan *Bridge, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			bridge := parseServiceEntry(entry)
			if bridge != nil && bridge.Name == name {
				bridgeChan <- bridge
				cancel()
				return
			}
		}
	}()

	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case bridge := <-bridgeChan:
		return bridge, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("bridge %q not found within timeout", name)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Bridge.
// Returns nil for entries without a usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Bridge {
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" || entry.Port == 0 {
		return nil
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Bridge{
		Name:         entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForBridges is a convenience function to scan with a custom timeout
func ScanForBridges(timeout time.Duration) ([]*Bridge, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForBridges()
}

// QuickScan performs a fast scan with a 3-second timeout
func QuickScan() ([]*Bridge, error) {
	scanner := NewScanner()
	scanner.Timeout = 3 * time.Second
	return scanner.ScanForBridges()
}
