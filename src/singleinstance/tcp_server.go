package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"screen-dimmer/src/logutil"
)

const (
	residentHost     = "127.0.0.1"
	handshakeTimeout = 3 * time.Second
)

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	mu       sync.Mutex
	lis      net.Listener
	incoming chan *tcpConn
	port     int
	id       string
	closed   bool
}

func newTcpServer() Server {
	return &tcpServer{incoming: make(chan *tcpConn, 8), id: uuid.NewString()}
}

// Start binds ONLY the start port of the configured range. If occupied, fail.
func (s *tcpServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		return nil
	}
	start, _ := getPortRange()
	addr := fmt.Sprintf("%s:%d", residentHost, start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("singleinstance: failed to bind %s: %v", addr, err)
		return err
	}
	s.lis = lis
	s.port = start
	log.Printf("singleinstance: listening on %s (instance %s)", addr, s.id)
	go s.acceptLoop(ctx, lis)
	return nil
}

// Port returns the bound port (0 if not started).
func (s *tcpServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *tcpServer) InstanceID() string { return s.id }

func (s *tcpServer) acceptLoop(ctx context.Context, lis net.Listener) {
	for {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		tc, ok := s.handshake(c)
		if !ok {
			continue
		}
		select {
		case s.incoming <- tc:
		case <-ctx.Done():
			_ = c.Close()
			return
		}
	}
}

// handshake reads the request line. PING and malformed requests are answered
// here; everything else is returned for the event loop.
func (s *tcpServer) handshake(c net.Conn) (*tcpConn, bool) {
	remote := c.RemoteAddr().String()
	_ = c.SetDeadline(time.Now().Add(handshakeTimeout))
	br := bufio.NewReader(c)
	bw := bufio.NewWriter(c)
	line, err := br.ReadString('\n')
	if err != nil {
		log.Printf("singleinstance: read from %s: %v", remote, err)
		_ = c.Close()
		return nil, false
	}
	req, err := ParseRequest(line)
	if err != nil {
		log.Printf("singleinstance: bad request from %s: %q: %v", remote, logutil.SanitizeForLog(line), err)
		_, _ = bw.WriteString(statusError + " " + err.Error() + "\n")
		_ = bw.Flush()
		_ = c.Close()
		return nil, false
	}
	if req.Command == CmdPing {
		_, _ = bw.WriteString(statusPong + " " + s.id + "\n")
		_ = bw.Flush()
		_ = c.Close()
		return nil, false
	}
	log.Printf("singleinstance: request from %s: %s", remote, req)
	return &tcpConn{c: c, r: req, w: bw}, true
}

func (s *tcpServer) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case tc, ok := <-s.incoming:
		if !ok {
			return nil, net.ErrClosed
		}
		return tc, nil
	}
}

func (s *tcpServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.lis != nil {
		_ = s.lis.Close()
		s.lis = nil
	}
	return nil
}

type tcpConn struct {
	c net.Conn
	r Request
	w *bufio.Writer
}

func (tc *tcpConn) Request() Request { return tc.r }

func (tc *tcpConn) RespondValue(percent float64) error {
	if _, err := tc.w.WriteString(statusOK + " " + formatPercent(percent) + "\n"); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) RespondError(msg string) error {
	if _, err := tc.w.WriteString(statusError + " " + msg + "\n"); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) Close() error { return tc.c.Close() }
