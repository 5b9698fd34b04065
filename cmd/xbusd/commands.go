package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/xbusd/internal/config"
	"github.com/muurk/xbusd/internal/discovery"
	"github.com/muurk/xbusd/internal/engine"
	"github.com/muurk/xbusd/internal/logging"
	"github.com/muurk/xbusd/internal/mock"
	"github.com/muurk/xbusd/internal/server"
	"github.com/muurk/xbusd/internal/transport"
	"github.com/muurk/xbusd/internal/ui"
	"github.com/muurk/xbusd/internal/xbus"
)

// Command flags
var (
	bridgeAddr  string
	listenAddr  string
	useMock     bool
	noMeasure   bool
	scanTimeout int
	watchURL    string
	sendTimeout int
)

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(sendCmd)
}

// runCmd is the daemon: bridge in, WebSocket out.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Decode the device stream and serve it over WebSocket",
	Long: `Connect to a serial bridge, decode the Xbus stream, and serve
decoded telemetry to WebSocket clients on /ws.

With --mock, a simulated device is used instead of a bridge connection;
everything downstream behaves identically.`,
	Example: `  # Use the configured bridge address
  xbusd run

  # Explicit bridge and listen addresses
  xbusd run --bridge 192.168.4.16:4001 --listen :8080

  # Develop without hardware
  xbusd run --mock`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&bridgeAddr, "bridge", "", "Serial bridge address (host:port), overrides config")
	runCmd.Flags().StringVar(&listenAddr, "listen", "", "WebSocket listen address, overrides config")
	runCmd.Flags().BoolVar(&useMock, "mock", false, "Use a simulated device instead of a bridge")
	runCmd.Flags().BoolVar(&noMeasure, "no-measure", false, "Do not switch the device to measurement mode on connect")
}

func runRun(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	bridge := bridgeAddr
	if bridge == "" {
		bridge = reg.Connection.Address
	}
	listen := listenAddr
	if listen == "" {
		listen = reg.Server.ListenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := engine.NewHub()
	go hub.Run(ctx)

	pipeline := engine.NewPipeline(hub, reg.Decoder.MaxFrameSize)
	chunks := make(chan []byte, 64)

	if useMock {
		fmt.Println("Using simulated device")
		go mock.NewDevice(50).Run(ctx, chunks)
	} else {
		fmt.Printf("Connecting to bridge %s\n", bridge)
		conn := transport.Dial(ctx, bridge, chunks,
			transport.WithReconnectInterval(time.Duration(reg.Connection.ReconnectDelay)*time.Second))

		if !noMeasure && reg.Preferences.AutoMeasure {
			// Nudge the device into measurement mode once the
			// connection is up. Harmless if it already is.
			go func() {
				frame := xbus.BuildOutbound(xbus.MidGotoMeasurement, nil)
				for i := 0; i < 30; i++ {
					select {
					case <-ctx.Done():
						return
					case <-time.After(time.Second):
					}
					if err := conn.Write(frame); err == nil {
						logging.Info("Sent GotoMeasurement")
						return
					}
				}
			}()
		}
	}

	go pipeline.Run(ctx, chunks)

	fmt.Printf("Serving telemetry on ws://%s/ws\n", listen)
	err = server.New(hub, listen).Run(ctx)

	frames, checksumDrops, decodeDrops, resyncs := pipeline.Stats()
	logging.Info("Pipeline stats",
		zap.Uint64("frames", frames),
		zap.Uint64("checksum_drops", checksumDrops),
		zap.Uint64("decode_drops", decodeDrops),
		zap.Uint64("resyncs", resyncs))
	return err
}

// scanCmd discovers serial bridges on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for serial bridges on the network",
	Long: `Scan for serial-over-TCP bridges using mDNS/DNS-SD discovery.

ser2net and other RFC 2217 compatible bridges advertise themselves as
"_rfc2217._tcp" services.`,
	Example: `  # Scan for 10 seconds (default)
  xbusd scan

  # Quick 3-second scan
  xbusd scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for serial bridges (timeout: %ds)...\n\n", scanTimeout)

	bridges, err := discovery.ScanForBridges(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(bridges) == 0 {
		fmt.Println("No bridges found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the bridge host is powered on and reachable")
		fmt.Println("  - Check that ser2net advertises mDNS (mdns option in ser2net.yaml)")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use 'xbusd run --bridge <host:port>' to connect manually")
		return nil
	}

	fmt.Printf("Found %d bridge(s):\n\n", len(bridges))

	for i, bridge := range bridges {
		fmt.Printf("%d. %s\n", i+1, bridge.Name)
		fmt.Printf("   Host:    %s\n", bridge.Hostname)
		fmt.Printf("   Address: %s\n", bridge.Addr())
		if len(bridge.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", bridge.Metadata)
		}
		fmt.Println()
	}

	fmt.Println("Use 'xbusd run --bridge <address>' to connect")

	return nil
}

// watchCmd shows the live stream in the terminal
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show live telemetry in the terminal",
	Long: `Connect to a running xbusd instance and display decoded telemetry
in an interactive terminal view.`,
	Example: `  # Watch the local daemon
  xbusd watch

  # Watch a remote daemon
  xbusd watch --url ws://bench-pi:8080/ws`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchURL, "url", "", "Stream URL (default derives from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal() {
		return fmt.Errorf("watch needs an interactive terminal")
	}

	url := watchURL
	if url == "" {
		reg, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		addr := reg.Server.ListenAddr
		if strings.HasPrefix(addr, ":") {
			addr = "localhost" + addr
		}
		url = "ws://" + addr + "/ws"
	}

	return ui.RunWatch(url)
}

// decodeCmd decodes frames from hex input
var decodeCmd = &cobra.Command{
	Use:   "decode <hex>...",
	Short: "Decode Xbus frames from hex bytes",
	Long: `Decode one or more Xbus frames given as hex bytes and print a
human-readable summary of each.

Input may contain junk before, between, or after frames; the stream
decoder resynchronizes exactly as it would on a live connection. Frames
with bad checksums are reported, not silently dropped.`,
	Example: `  # A wakeup frame
  xbusd decode fa ff 3e 00 c3

  # Telemetry with a packet counter record
  xbusd decode "FA FF 36 05 10 20 02 0B 0A 7F"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

func runDecode(cmd *cobra.Command, args []string) error {
	cleaned := strings.NewReplacer(" ", "", "\t", "", "\n", "", ",", "", "0x", "", "0X", "").
		Replace(strings.Join(args, ""))
	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return fmt.Errorf("invalid hex input: %w", err)
	}

	framer := xbus.NewFramer()
	found := 0
	framer.Push(data, func(frame []byte) {
		found++
		status := ""
		if !xbus.VerifyChecksum(frame) {
			status = "  [CHECKSUM MISMATCH]"
		}
		fmt.Printf("%d. %s%s\n", found, xbus.MessageToString(frame), status)
		fmt.Printf("   raw: % X\n", frame)
	})

	if found == 0 {
		return fmt.Errorf("no complete frames in %d byte(s) of input", len(data))
	}
	if resyncs := framer.Resyncs(); resyncs > 0 {
		fmt.Printf("\n(%d resync(s) while scanning input)\n", resyncs)
	}
	return nil
}

// sendCmd sends a command frame to the device
var sendCmd = &cobra.Command{
	Use:   "send <message-id> [payload-hex]",
	Short: "Send a command frame to the device",
	Long: `Build a checksummed command frame and send it to the device via the
bridge, printing any replies received within the timeout.

The message id is given in hex (e.g. 0x30 or 30); the optional payload
is hex bytes. The frame is always sent with the master bus id.`,
	Example: `  # Switch to config mode
  xbusd send 0x30

  # Request the device id
  xbusd send 0x00

  # Reset
  xbusd send 0x40`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&bridgeAddr, "bridge", "", "Serial bridge address (host:port), overrides config")
	sendCmd.Flags().IntVar(&sendTimeout, "timeout", 2, "Seconds to wait for replies")
}

func runSend(cmd *cobra.Command, args []string) error {
	idVal, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(args[0]), "0x"), 16, 8)
	if err != nil {
		return fmt.Errorf("invalid message id %q: %w", args[0], err)
	}
	id := xbus.MessageID(idVal)

	var payload []byte
	if len(args) == 2 {
		cleaned := strings.ReplaceAll(args[1], " ", "")
		payload, err = hex.DecodeString(cleaned)
		if err != nil {
			return fmt.Errorf("invalid payload hex: %w", err)
		}
	}

	bridge := bridgeAddr
	if bridge == "" {
		reg, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		bridge = reg.Connection.Address
	}

	frame := xbus.BuildOutbound(id, payload)
	fmt.Printf("Sending %s to %s\n", id, bridge)
	fmt.Printf("  raw: % X\n\n", frame)

	conn, err := net.DialTimeout("tcp", bridge, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to bridge: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	// Collect replies until the timeout; telemetry keeps flowing on a
	// live link, so only non-telemetry frames are printed.
	deadline := time.Now().Add(time.Duration(sendTimeout) * time.Second)
	framer := xbus.NewFramer()
	buf := make([]byte, 4096)
	replies := 0
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		n, err := conn.Read(buf)
		if n > 0 {
			framer.Push(buf[:n], func(reply []byte) {
				env, derr := xbus.DecodeEnvelope(reply)
				if derr != nil || env.ID == xbus.MidMTData2 {
					return
				}
				replies++
				fmt.Printf("Reply: %s\n", xbus.MessageToString(reply))
				fmt.Printf("  raw: % X\n", reply)
			})
		}
		if err != nil {
			break
		}
	}

	if replies == 0 {
		fmt.Println("No reply within timeout")
	}
	return nil
}
