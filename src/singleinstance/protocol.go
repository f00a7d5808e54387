package singleinstance

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Command names as they appear on the wire.
const (
	CmdPing = "PING"
	CmdGet  = "GET"
	CmdSet  = "SET"
	CmdOff  = "OFF"

	statusPong  = "PONG"
	statusOK    = "OK"
	statusError = "ERROR"
)

// Request is one client command.
type Request struct {
	Command string
	// Percent is only meaningful for SET.
	Percent float64
}

func (r Request) String() string {
	if r.Command == CmdSet {
		return fmt.Sprintf("%s %s", CmdSet, formatPercent(r.Percent))
	}
	return r.Command
}

// encode returns the request line including the trailing newline.
func (r Request) encode() string { return r.String() + "\n" }

// ParseRequest parses a single request line.
func ParseRequest(line string) (Request, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return Request{}, fmt.Errorf("empty request")
	}
	cmd := strings.ToUpper(fields[0])
	switch cmd {
	case CmdPing, CmdGet, CmdOff:
		if len(fields) != 1 {
			return Request{}, fmt.Errorf("%s takes no arguments", cmd)
		}
		return Request{Command: cmd}, nil
	case CmdSet:
		if len(fields) != 2 {
			return Request{}, fmt.Errorf("usage: SET <percent>")
		}
		v, err := ParsePercent(fields[1])
		if err != nil {
			return Request{}, err
		}
		return Request{Command: CmdSet, Percent: v}, nil
	default:
		return Request{}, fmt.Errorf("unknown command %q", fields[0])
	}
}

// ParsePercent accepts "42", "42.5" or "42%". Range checking is left to the
// controller, which clamps.
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("invalid brightness %q", s)
	}
	return v, nil
}

// parseResponse parses "OK <percent>" or "ERROR <msg>".
func parseResponse(line string) (float64, error) {
	line = strings.TrimRight(line, "\r\n")
	status, rest, _ := strings.Cut(line, " ")
	switch status {
	case statusOK:
		v, err := ParsePercent(rest)
		if err != nil {
			return 0, fmt.Errorf("malformed response %q", line)
		}
		return v, nil
	case statusError:
		return 0, &RemoteError{Msg: rest}
	default:
		return 0, fmt.Errorf("malformed response %q", line)
	}
}

// RemoteError is an error reported by the resident.
type RemoteError struct{ Msg string }

func (e *RemoteError) Error() string { return "resident: " + e.Msg }

func formatPercent(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
