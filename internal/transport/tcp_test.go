package transport

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"
)

func TestConn_DeliversChunks(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	sent := []byte{0xFA, 0xFF, 0x3E, 0x00, 0xC3}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = conn.Write(sent)
		// Hold the connection open until the test is done reading.
		time.Sleep(500 * time.Millisecond)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan []byte, 16)
	Dial(ctx, ln.Addr().String(), out,
		WithDialTimeout(2*time.Second),
		WithReconnectInterval(100*time.Millisecond))

	var got []byte
	deadline := time.After(3 * time.Second)
	for len(got) < len(sent) {
		select {
		case chunk := <-out:
			got = append(got, chunk...)
		case <-deadline:
			t.Fatalf("timed out, received % X", got)
		}
	}

	if !bytes.Equal(got, sent) {
		t.Errorf("received % X, want % X", got, sent)
	}
}

func TestConn_WriteReachesPeer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 64)
		n, _ := conn.Read(buf)
		received <- buf[:n]
		time.Sleep(500 * time.Millisecond)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan []byte, 16)
	c := Dial(ctx, ln.Addr().String(), out, WithDialTimeout(2*time.Second))

	// Wait until the connection is up before writing.
	msg := []byte{0xFA, 0xFF, 0x30, 0x00, 0xD1}
	var writeErr error
	for i := 0; i < 50; i++ {
		if writeErr = c.Write(msg); writeErr == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if writeErr != nil {
		t.Fatalf("Write never succeeded: %v", writeErr)
	}

	select {
	case got := <-received:
		if !bytes.Equal(got, msg) {
			t.Errorf("peer received % X, want % X", got, msg)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("peer never received the write")
	}
}

func TestConn_WriteWithoutConnection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan []byte, 1)
	c := Dial(ctx, "127.0.0.1:1", out)
	if err := c.Write([]byte{0x00}); err == nil {
		t.Error("Write succeeded with no connection up")
	}
}
