package singleinstance

// This file defines the API for single-instance ownership and remote control
// of the resident dimmer over the loopback bridge.

import (
	"context"
	"errors"
)

// ErrNoResident is returned by Client when no resident answers in the port range.
var ErrNoResident = errors.New("no resident dimmer running")

// Server owns the TCP endpoint and hands control requests to the event loop.
type Server interface {
	// Start begins listening on the first port of the configured range.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// InstanceID identifies this resident in PING replies.
	InstanceID() string
	// Next returns the next accepted request as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	// Request returns the parsed client request.
	Request() Request
	// RespondValue sends OK with the brightness now in effect.
	RespondValue(percent float64) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Client sends control requests to a resident server.
type Client interface {
	// Ping scans the port range and returns the resident's port and instance id.
	Ping(ctx context.Context) (port int, instanceID string, err error)
	// Do delivers req to the resident and returns the brightness it reports.
	// Returns ErrNoResident when nothing answers.
	Do(ctx context.Context, req Request) (float64, error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
