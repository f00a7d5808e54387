//go:build windows

package notification

import (
	"log"

	"golang.org/x/sys/windows"
)

// ShowBlockingError displays a modal, blocking error dialog and returns after user dismisses it.
func ShowBlockingError(title, message string) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		log.Printf("%s: %s", title, message)
		return
	}
	msgPtr, err := windows.UTF16PtrFromString(message)
	if err != nil {
		log.Printf("%s: %s", title, message)
		return
	}
	if _, err := windows.MessageBox(0, msgPtr, titlePtr, windows.MB_OK|windows.MB_ICONERROR|windows.MB_SYSTEMMODAL); err != nil {
		log.Printf("MessageBox failed (%v); %s: %s", err, title, message)
	}
}
