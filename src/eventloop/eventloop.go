package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"

	"screen-dimmer/src/dimmer"
	"screen-dimmer/src/singleinstance"
)

// Controller is the overlay surface the loop drives.
type Controller interface {
	SetOverlayBrightness(percent float64) error
	GetOverlayBrightness() float64
	DestroyOverlay() error
	AdjustBrightness(delta float64) error
}

// ActionKind identifies a local user action.
type ActionKind int

const (
	ActionSet ActionKind = iota
	ActionDimmer
	ActionBrighter
	ActionOff
)

func (k ActionKind) String() string {
	switch k {
	case ActionSet:
		return "set"
	case ActionDimmer:
		return "dimmer"
	case ActionBrighter:
		return "brighter"
	case ActionOff:
		return "off"
	default:
		return "unknown"
	}
}

// Action is posted by hotkeys and the tray.
type Action struct {
	Kind    ActionKind
	Percent float64
}

type Options struct {
	// Server defaults to singleinstance.NewServer().
	Server singleinstance.Server
	// StepPercent is the brightness change for ActionDimmer/ActionBrighter.
	StepPercent float64
}

// Loop is the single-threaded coordinator for IPC requests, hotkeys and tray
// actions. Every overlay operation flows through Run's goroutine.
type Loop struct {
	ctrl    Controller
	srv     singleinstance.Server
	step    float64
	actions chan Action
}

// New creates a loop. A StepPercent <= 0 defaults to 10.
func New(ctrl Controller, opts Options) *Loop {
	step := opts.StepPercent
	if step <= 0 {
		step = 10
	}
	srv := opts.Server
	if srv == nil {
		srv = singleinstance.NewServer()
	}
	return &Loop{
		ctrl:    ctrl,
		srv:     srv,
		step:    step,
		actions: make(chan Action, 8),
	}
}

// Post queues a local action. It never blocks; when the queue is full the
// action is dropped and false is returned.
func (l *Loop) Post(a Action) bool {
	select {
	case l.actions <- a:
		return true
	default:
		log.Printf("eventloop: queue full, dropping %s", a.Kind)
		return false
	}
}

// Port returns the control port, 0 before Run has started the server.
func (l *Loop) Port() int { return l.srv.Port() }

// Run starts the singleinstance server and processes requests and actions.
// It blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	defer l.srv.Close()
	log.Printf("Resident listening on 127.0.0.1:%d", l.srv.Port())

	// Accept loop in background to avoid blocking action handling
	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		defer close(reqCh)
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				return
			}
			select {
			case reqCh <- conn:
			case <-ctx.Done():
				_ = conn.Close()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case a := <-l.actions:
			if err := l.apply(a); err != nil {
				log.Printf("eventloop: %s action failed: %v", a.Kind, err)
			}
		case conn, ok := <-reqCh:
			if !ok {
				return nil
			}
			l.handleConn(conn)
		}
	}
}

func (l *Loop) apply(a Action) error {
	switch a.Kind {
	case ActionSet:
		return l.ctrl.SetOverlayBrightness(a.Percent)
	case ActionDimmer:
		return l.ctrl.AdjustBrightness(-l.step)
	case ActionBrighter:
		return l.ctrl.AdjustBrightness(l.step)
	case ActionOff:
		return l.ctrl.DestroyOverlay()
	default:
		return fmt.Errorf("unknown action %d", a.Kind)
	}
}

func (l *Loop) handleConn(conn singleinstance.Conn) {
	defer conn.Close()
	req := conn.Request()

	var err error
	switch req.Command {
	case singleinstance.CmdGet:
	case singleinstance.CmdSet:
		err = l.ctrl.SetOverlayBrightness(req.Percent)
	case singleinstance.CmdOff:
		err = l.ctrl.DestroyOverlay()
	default:
		err = fmt.Errorf("unsupported command %q", req.Command)
	}
	if err != nil {
		log.Printf("eventloop: %s failed: %v", req, err)
		if rerr := conn.RespondError(errorMessage(err)); rerr != nil {
			log.Printf("eventloop: respond: %v", rerr)
		}
		return
	}
	if rerr := conn.RespondValue(l.ctrl.GetOverlayBrightness()); rerr != nil {
		log.Printf("eventloop: respond: %v", rerr)
	}
}

// errorMessage keeps the reply on one line.
func errorMessage(err error) string {
	if errors.Is(err, dimmer.ErrInvalidBrightness) {
		return "invalid brightness"
	}
	return oneLine(err.Error())
}

func oneLine(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r == '\n' || r == '\r' {
			out[i] = ' '
		}
	}
	return string(out)
}
