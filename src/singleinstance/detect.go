package singleinstance

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"time"
)

// DetectResidentPort scans the port range and returns (port, true) if a resident responds to PING.
func DetectResidentPort(ctx context.Context) (int, bool) {
	port, _, ok := scan(ctx, 300*time.Millisecond)
	return port, ok
}

func scan(ctx context.Context, deadline time.Duration) (int, string, bool) {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			deadline = d
		}
	}
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		if ctx.Err() != nil {
			return 0, "", false
		}
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if id, ok := ping(addr, deadline); ok {
			return port, id, true
		}
	}
	return 0, "", false
}

// ping returns the instance id of the resident at addr.
func ping(addr string, timeout time.Duration) (string, bool) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(Request{Command: CmdPing}.encode()); err != nil {
		return "", false
	}
	if err := w.Flush(); err != nil {
		return "", false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", false
	}
	status, id, _ := strings.Cut(strings.TrimRight(resp, "\r\n"), " ")
	if status != statusPong {
		return "", false
	}
	return id, true
}
