//go:build windows

package tray

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"github.com/frudas24/screenoff/internal/logx"
	"github.com/frudas24/screenoff/internal/session"
)

const (
	wmTrayCallback  = win.WM_USER + 1
	wmStateChanged  = win.WM_USER + 2
	wmShowMenu      = win.WM_USER + 3
	wmNull          = 0x0000
	wmDisplayChange = 0x007E

	trayIconID = 1

	idiApplication = 32512
	idiWarning     = 32515

	tpmRightButton = 0x0002
	tpmNoNotify    = 0x0080
	tpmReturnCmd   = 0x0100

	errorClassAlreadyExists = 1410

	windowClass = "ScreenOffTray"
)

// dpiAwarenessPerMonitorV2 is DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2 ((HANDLE)-4).
const dpiAwarenessPerMonitorV2 = ^uintptr(3)

var (
	user32                            = windows.NewLazySystemDLL("user32.dll")
	procSetProcessDpiAwarenessContext = user32.NewProc("SetProcessDpiAwarenessContext")
)

// Tray owns the hidden window and the notification icon.
type Tray struct {
	ctx    context.Context
	events chan<- session.Event
	cell   snapshotCell

	hwnd           win.HWND
	taskbarCreated uint32
	iconAdded      bool
	menu           []Item

	iconEnabled  win.HICON
	iconDisabled win.HICON
}

// New returns a tray that is shown by Run.
func New() *Tray {
	return &Tray{}
}

// Run shows the icon and pumps window messages until Exit is chosen or ctx is done.
func (t *Tray) Run(ctx context.Context, events chan<- session.Event, snap session.Snapshot) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	t.ctx = ctx
	t.events = events
	t.cell.store(snap)

	setDPIAware()
	t.iconEnabled = win.LoadIcon(0, win.MAKEINTRESOURCE(idiApplication))
	t.iconDisabled = win.LoadIcon(0, win.MAKEINTRESOURCE(idiWarning))

	if err := t.createWindow(); err != nil {
		return err
	}
	if err := t.addIcon(); err != nil {
		win.DestroyWindow(t.hwnd)
		return err
	}
	stop := context.AfterFunc(ctx, func() {
		win.PostMessage(t.hwnd, win.WM_CLOSE, 0, 0)
	})
	defer stop()

	var msg win.MSG
	for {
		switch win.GetMessage(&msg, 0, 0, 0) {
		case 0:
			return nil
		case -1:
			return fmt.Errorf("tray: GetMessage failed: %w", syscall.GetLastError())
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}

// createWindow registers the window class and creates the hidden owner window.
func (t *Tray) createWindow() error {
	className, err := windows.UTF16PtrFromString(windowClass)
	if err != nil {
		return err
	}
	instance := win.GetModuleHandle(nil)

	var wc win.WNDCLASSEX
	wc.CbSize = uint32(unsafe.Sizeof(wc))
	wc.LpfnWndProc = syscall.NewCallback(t.wndProc)
	wc.HInstance = instance
	wc.LpszClassName = className
	if win.RegisterClassEx(&wc) == 0 {
		if err := syscall.GetLastError(); err != syscall.Errno(errorClassAlreadyExists) {
			return fmt.Errorf("tray: RegisterClassEx failed: %w", err)
		}
	}

	t.hwnd = win.CreateWindowEx(0, className, className, 0, 0, 0, 0, 0, 0, 0, instance, nil)
	if t.hwnd == 0 {
		return fmt.Errorf("tray: CreateWindowEx failed: %w", syscall.GetLastError())
	}

	if name, err := windows.UTF16PtrFromString("TaskbarCreated"); err == nil {
		t.taskbarCreated = win.RegisterWindowMessage(name)
	}
	return nil
}

// wndProc handles messages for the hidden window.
func (t *Tray) wndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case wmTrayCallback:
		switch uint32(lParam) {
		case win.WM_LBUTTONUP:
			t.send(session.Event{Kind: session.EventToggle})
		case win.WM_RBUTTONUP:
			post(t.ctx, t.events, session.Event{Kind: session.EventRefresh}, func(res session.Result) {
				t.cell.store(res.Snapshot)
				win.PostMessage(t.hwnd, wmShowMenu, 0, 0)
			})
		}
		return 0
	case wmShowMenu:
		t.showMenu()
		return 0
	case wmStateChanged:
		t.updateIcon()
		return 0
	case wmDisplayChange:
		logx.Debugf("tray: display configuration changed")
		t.send(session.Event{Kind: session.EventRefresh})
		return 0
	case win.WM_CLOSE:
		win.DestroyWindow(hwnd)
		return 0
	case win.WM_DESTROY:
		t.removeIcon()
		win.PostQuitMessage(0)
		return 0
	}
	if t.taskbarCreated != 0 && msg == t.taskbarCreated {
		// Explorer restarted and dropped every icon.
		t.iconAdded = false
		if err := t.addIcon(); err != nil {
			log.Printf("%v", err)
		}
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// send posts ev and refreshes the icon once the session replies.
func (t *Tray) send(ev session.Event) {
	post(t.ctx, t.events, ev, func(res session.Result) {
		t.cell.store(res.Snapshot)
		win.PostMessage(t.hwnd, wmStateChanged, 0, 0)
	})
}

// showMenu pops up the menu at the cursor and acts on the selection.
func (t *Tray) showMenu() {
	menu := win.CreatePopupMenu()
	if menu == 0 {
		log.Printf("tray: CreatePopupMenu failed: %v", syscall.GetLastError())
		return
	}
	defer win.DestroyMenu(menu)

	t.menu = BuildMenu(t.cell.load())
	for i, it := range t.menu {
		mii, err := menuItemInfo(it)
		if err != nil {
			logx.Debugf("tray: skipping menu item %q: %v", it.Label, err)
			continue
		}
		if !win.InsertMenuItem(menu, uint32(i), true, &mii) {
			logx.Debugf("tray: InsertMenuItem %q failed: %v", it.Label, syscall.GetLastError())
		}
	}

	var pt win.POINT
	win.GetCursorPos(&pt)
	win.SetForegroundWindow(t.hwnd)
	cmd := win.TrackPopupMenuEx(menu, tpmReturnCmd|tpmNoNotify|tpmRightButton, pt.X, pt.Y, t.hwnd, nil)
	win.PostMessage(t.hwnd, wmNull, 0, 0)

	action, ok := ActionFor(t.menu, uint32(cmd))
	if !ok {
		return
	}
	if action.Quit {
		log.Printf("tray: exit requested")
		win.PostMessage(t.hwnd, win.WM_CLOSE, 0, 0)
		return
	}
	t.send(action.Event)
}

// menuItemInfo converts an item into the Win32 descriptor. The label pointer
// stays valid while the returned value is reachable.
func menuItemInfo(it Item) (win.MENUITEMINFO, error) {
	var mii win.MENUITEMINFO
	mii.CbSize = uint32(unsafe.Sizeof(mii))
	if it.Kind == ItemSeparator {
		mii.FMask = win.MIIM_FTYPE
		mii.FType = win.MFT_SEPARATOR
		return mii, nil
	}
	label, err := windows.UTF16PtrFromString(it.Label)
	if err != nil {
		return mii, err
	}
	mii.FMask = win.MIIM_ID | win.MIIM_STRING | win.MIIM_STATE | win.MIIM_FTYPE
	mii.FType = win.MFT_STRING
	mii.WID = it.Cmd
	mii.DwTypeData = label
	if it.Checked {
		mii.FState |= win.MFS_CHECKED
	}
	if it.Disabled {
		mii.FState |= win.MFS_DISABLED
	}
	return mii, nil
}

// notifyData builds the icon descriptor for the current snapshot.
func (t *Tray) notifyData() win.NOTIFYICONDATA {
	snap := t.cell.load()

	var nid win.NOTIFYICONDATA
	nid.CbSize = uint32(unsafe.Sizeof(nid))
	nid.HWnd = t.hwnd
	nid.UID = trayIconID
	nid.UFlags = win.NIF_MESSAGE | win.NIF_ICON | win.NIF_TIP
	nid.UCallbackMessage = wmTrayCallback
	nid.HIcon = t.iconEnabled
	if snap.Disabled() {
		nid.HIcon = t.iconDisabled
	}
	copyUTF16(nid.SzTip[:], TooltipFor(snap))
	return nid
}

// addIcon adds the notification icon.
func (t *Tray) addIcon() error {
	nid := t.notifyData()
	if !win.Shell_NotifyIcon(win.NIM_ADD, &nid) {
		return fmt.Errorf("tray: Shell_NotifyIcon add failed")
	}
	t.iconAdded = true
	return nil
}

// updateIcon swaps the icon and tooltip to match the snapshot.
func (t *Tray) updateIcon() {
	if !t.iconAdded {
		return
	}
	nid := t.notifyData()
	if !win.Shell_NotifyIcon(win.NIM_MODIFY, &nid) {
		log.Printf("tray: Shell_NotifyIcon modify failed")
	}
}

// removeIcon deletes the notification icon.
func (t *Tray) removeIcon() {
	if !t.iconAdded {
		return
	}
	var nid win.NOTIFYICONDATA
	nid.CbSize = uint32(unsafe.Sizeof(nid))
	nid.HWnd = t.hwnd
	nid.UID = trayIconID
	win.Shell_NotifyIcon(win.NIM_DELETE, &nid)
	t.iconAdded = false
}

// copyUTF16 writes s into a fixed buffer, truncating and terminating it.
func copyUTF16(dst []uint16, s string) {
	src, err := windows.UTF16FromString(s)
	if err != nil {
		return
	}
	if len(src) > len(dst) {
		src = src[:len(dst)]
		src[len(src)-1] = 0
	}
	copy(dst, src)
}

// setDPIAware opts into per-monitor DPI awareness when the OS supports it.
func setDPIAware() {
	if err := procSetProcessDpiAwarenessContext.Find(); err != nil {
		logx.Debugf("tray: per-monitor DPI awareness unavailable: %v", err)
		return
	}
	if r, _, err := procSetProcessDpiAwarenessContext.Call(dpiAwarenessPerMonitorV2); r == 0 {
		logx.Debugf("tray: SetProcessDpiAwarenessContext: %v", err)
	}
}
