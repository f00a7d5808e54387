//go:build windows

package overlay

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const (
	overlayClassName    = "ScreenDimmerOverlay"
	lwaAlpha            = 0x00000002
	wmSetAlpha          = win.WM_USER + 1
	topmostTimerID      = 1
	topmostTimerMs      = 2000
	closeWaitTimeout    = 3 * time.Second
	overlayExStyleFlags = win.WS_EX_LAYERED | win.WS_EX_TRANSPARENT | win.WS_EX_TOPMOST |
		win.WS_EX_TOOLWINDOW | win.WS_EX_NOACTIVATE
)

var (
	user32DLL                      = windows.NewLazySystemDLL("user32.dll")
	procSetLayeredWindowAttributes = user32DLL.NewProc("SetLayeredWindowAttributes")

	classOnce sync.Once
	classErr  error
)

type windowsOpener struct{}

func newPlatformOpener() Opener { return windowsOpener{} }

// windowsWindow owns one layered window. The HWND is created, modified and
// destroyed only on the goroutine started by Open, which stays locked to its
// OS thread for the window's lifetime.
type windowsWindow struct {
	hwnd   win.HWND
	ready  chan error
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

func (windowsOpener) Open(bounds Bounds, alpha uint8) (Window, error) {
	if bounds.Empty() {
		return nil, fmt.Errorf("invalid overlay bounds %s", bounds)
	}
	if err := registerOverlayClass(); err != nil {
		return nil, err
	}
	w := &windowsWindow{
		ready: make(chan error, 1),
		done:  make(chan struct{}),
	}
	go w.run(bounds, alpha)
	if err := <-w.ready; err != nil {
		return nil, err
	}
	return w, nil
}

func registerOverlayClass() error {
	classOnce.Do(func() {
		className := syscall.StringToUTF16Ptr(overlayClassName)
		wc := win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			LpfnWndProc:   syscall.NewCallback(overlayWndProc),
			HInstance:     win.GetModuleHandle(nil),
			HCursor:       win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_ARROW)),
			HbrBackground: win.HBRUSH(win.GetStockObject(win.BLACK_BRUSH)),
			LpszClassName: className,
		}
		if atom := win.RegisterClassEx(&wc); atom == 0 {
			classErr = fmt.Errorf("failed to register overlay window class")
			return
		}
		log.Printf("OVERLAY: window class %s registered", overlayClassName)
	})
	return classErr
}

func (w *windowsWindow) run(bounds Bounds, alpha uint8) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.done)
	defer w.markClosed()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("OVERLAY: panic on window thread: %v", r)
			signalReady(w.ready, fmt.Errorf("overlay window thread panicked: %v", r))
		}
	}()

	hwnd := win.CreateWindowEx(
		overlayExStyleFlags,
		syscall.StringToUTF16Ptr(overlayClassName),
		syscall.StringToUTF16Ptr("Screen Dimmer"),
		win.WS_POPUP,
		int32(bounds.X), int32(bounds.Y), int32(bounds.Width), int32(bounds.Height),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		w.ready <- fmt.Errorf("CreateWindowEx failed: %v", windows.GetLastError())
		return
	}
	if err := setLayeredAlpha(hwnd, alpha); err != nil {
		win.DestroyWindow(hwnd)
		w.ready <- err
		return
	}
	w.hwnd = hwnd

	win.ShowWindow(hwnd, win.SW_SHOWNOACTIVATE)
	win.SetWindowPos(hwnd, win.HWND_TOPMOST, 0, 0, 0, 0,
		win.SWP_NOMOVE|win.SWP_NOSIZE|win.SWP_NOACTIVATE)
	if win.SetTimer(hwnd, topmostTimerID, topmostTimerMs, 0) == 0 {
		log.Printf("OVERLAY: failed to start topmost timer")
	}
	log.Printf("OVERLAY: window %v shown over %s, alpha=%d", hwnd, bounds, alpha)
	w.ready <- nil

	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 {
			break
		}
		if ret == -1 {
			log.Printf("OVERLAY: GetMessage error: %v", windows.GetLastError())
			win.DestroyWindow(hwnd)
			break
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
	log.Printf("OVERLAY: window %v message loop exited", hwnd)
}

// markClosed runs when the message loop exits, whoever destroyed the window.
func (w *windowsWindow) markClosed() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

func (w *windowsWindow) SetAlpha(alpha uint8) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if win.PostMessage(w.hwnd, wmSetAlpha, uintptr(alpha), 0) == 0 {
		if !win.IsWindow(w.hwnd) {
			return ErrClosed
		}
		return fmt.Errorf("PostMessage(set alpha) failed: %v", windows.GetLastError())
	}
	return nil
}

func (w *windowsWindow) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	if win.PostMessage(w.hwnd, win.WM_CLOSE, 0, 0) == 0 {
		if !win.IsWindow(w.hwnd) {
			return nil
		}
		return fmt.Errorf("PostMessage(close) failed: %v", windows.GetLastError())
	}
	select {
	case <-w.done:
		return nil
	case <-time.After(closeWaitTimeout):
		return fmt.Errorf("overlay window %v did not exit within %s", w.hwnd, closeWaitTimeout)
	}
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_NCHITTEST:
		hit := int32(win.HTTRANSPARENT)
		return uintptr(hit)
	case wmSetAlpha:
		if err := setLayeredAlpha(hwnd, uint8(wParam)); err != nil {
			log.Printf("OVERLAY: %v", err)
		}
		return 0
	case win.WM_TIMER:
		if wParam == topmostTimerID {
			win.SetWindowPos(hwnd, win.HWND_TOPMOST, 0, 0, 0, 0,
				win.SWP_NOMOVE|win.SWP_NOSIZE|win.SWP_NOACTIVATE)
			return 0
		}
	case win.WM_CLOSE:
		win.KillTimer(hwnd, topmostTimerID)
		win.DestroyWindow(hwnd)
		return 0
	case win.WM_DESTROY:
		win.PostQuitMessage(0)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func setLayeredAlpha(hwnd win.HWND, alpha uint8) error {
	ret, _, err := procSetLayeredWindowAttributes.Call(uintptr(hwnd), 0, uintptr(alpha), lwaAlpha)
	if ret == 0 {
		return fmt.Errorf("SetLayeredWindowAttributes(alpha=%d) failed: %v", alpha, err)
	}
	return nil
}
