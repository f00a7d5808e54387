//go:build windows

package main

import (
	"log"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	shcoreDLL                  = windows.NewLazySystemDLL("Shcore.dll")
	procSetProcessDpiAwareness = shcoreDLL.NewProc("SetProcessDpiAwareness")
	user32DLL                  = windows.NewLazySystemDLL("user32.dll")
	procSetProcessDPIAware     = user32DLL.NewProc("SetProcessDPIAware")
)

// enableDPIAwareness sets per-monitor DPI awareness so the overlay covers
// physical pixels on scaled displays.
func enableDPIAwareness() {
	const processPerMonitorDPIAware = 2
	if err := procSetProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := procSetProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Printf("DPI: per-monitor DPI awareness set")
		} else {
			log.Printf("DPI: SetProcessDpiAwareness failed, HRESULT 0x%x", ret)
		}
		return
	}

	log.Printf("DPI: Shcore.SetProcessDpiAwareness not available, trying fallback")
	if err := procSetProcessDPIAware.Find(); err != nil {
		log.Printf("DPI: SetProcessDPIAware not available, no DPI awareness set")
		return
	}
	if ret, _, _ := procSetProcessDPIAware.Call(); ret != 0 {
		log.Printf("DPI: system DPI awareness set (fallback)")
	} else {
		log.Printf("DPI: SetProcessDPIAware failed")
	}
}

func logMonitorConfiguration() {
	log.Printf("MONITOR: Detected %d monitors", win.GetSystemMetrics(win.SM_CMONITORS))
	log.Printf("MONITOR: Virtual screen - x:%d y:%d w:%d h:%d",
		win.GetSystemMetrics(win.SM_XVIRTUALSCREEN),
		win.GetSystemMetrics(win.SM_YVIRTUALSCREEN),
		win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN),
		win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN))
	log.Printf("MONITOR: Primary screen - w:%d h:%d",
		win.GetSystemMetrics(win.SM_CXSCREEN),
		win.GetSystemMetrics(win.SM_CYSCREEN))
}
