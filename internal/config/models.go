package config

import "time"

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                `yaml:"version"`
	Connection  *ConnectionPrefs   `yaml:"connection,omitempty"`
	Decoder     *DecoderPrefs      `yaml:"decoder,omitempty"`
	Server      *ServerPrefs       `yaml:"server,omitempty"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by device id (8 hex digits)
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// ConnectionPrefs holds defaults for reaching the serial bridge.
type ConnectionPrefs struct {
	Address        string `yaml:"address"`                   // host:port of the serial-over-TCP bridge
	ReconnectDelay int    `yaml:"reconnect_delay,omitempty"` // seconds between reconnect attempts
}

// DecoderPrefs holds byte-stream decoder limits.
type DecoderPrefs struct {
	MaxFrameSize int `yaml:"max_frame_size,omitempty"` // sanity ceiling on frame lengths
}

// ServerPrefs holds the local WebSocket server settings.
type ServerPrefs struct {
	ListenAddr string `yaml:"listen_addr,omitempty"` // host:port for the sample stream server
}

// Device represents metadata for a single device the tool has seen.
type Device struct {
	Nickname    string    `yaml:"nickname,omitempty"`     // User-friendly name
	LastAddress string    `yaml:"last_address,omitempty"` // Last known bridge address
	LastSeen    time.Time `yaml:"last_seen,omitempty"`    // Last connection time
	Firmware    string    `yaml:"firmware,omitempty"`     // Last reported firmware revision
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoMeasure     bool `yaml:"auto_measure"`     // Switch the device to measurement mode on connect
	AutoDiscover    bool `yaml:"auto_discover"`    // Enable automatic mDNS discovery on startup
	DiscoverTimeout int  `yaml:"discover_timeout"` // mDNS discovery timeout in seconds
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Connection: &ConnectionPrefs{
			Address:        "localhost:4001",
			ReconnectDelay: 2,
		},
		Decoder: &DecoderPrefs{
			MaxFrameSize: 1000,
		},
		Server: &ServerPrefs{
			ListenAddr: "localhost:8080",
		},
		Devices: make(map[string]*Device),
		Preferences: &Preferences{
			AutoMeasure:     true,
			AutoDiscover:    true,
			DiscoverTimeout: 10,
		},
	}
}

// GetDevice retrieves device metadata by device id.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(deviceID string) *Device {
	return r.Devices[deviceID]
}

// EnsureDevice ensures a device entry exists in the registry.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(deviceID string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[deviceID]; exists {
		return device
	}

	device := &Device{}
	r.Devices[deviceID] = device
	return device
}

// UpdateDeviceLastSeen updates the last seen timestamp and address for a device.
func (r *Registry) UpdateDeviceLastSeen(deviceID, address string) {
	device := r.EnsureDevice(deviceID)
	device.LastSeen = time.Now()
	device.LastAddress = address
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(deviceID, nickname string) {
	device := r.EnsureDevice(deviceID)
	device.Nickname = nickname
}

// SetDeviceFirmware records the firmware revision a device reported.
func (r *Registry) SetDeviceFirmware(deviceID, firmware string) {
	device := r.EnsureDevice(deviceID)
	device.Firmware = firmware
}
