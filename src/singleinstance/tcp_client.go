package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

type tcpClient struct {
	timeout time.Duration
}

func newTcpClient() Client { return &tcpClient{timeout: 2 * time.Second} }

func (c *tcpClient) Ping(ctx context.Context) (int, string, error) {
	port, id, ok := scan(ctx, c.timeout)
	if !ok {
		return 0, "", ErrNoResident
	}
	return port, id, nil
}

func (c *tcpClient) Do(ctx context.Context, req Request) (float64, error) {
	port, _, err := c.Ping(ctx)
	if err != nil {
		return 0, err
	}
	deadline := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			deadline = d
		}
	}

	addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, deadline)
	if err != nil {
		return 0, fmt.Errorf("connect to resident on %s: %w", addr, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(deadline))

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(req.encode()); err != nil {
		return 0, fmt.Errorf("send %s: %w", req, err)
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("send %s: %w", req, err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return 0, fmt.Errorf("read response to %s: %w", req, err)
	}
	return parseResponse(line)
}
