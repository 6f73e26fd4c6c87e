//go:build windows

// Package display enumerates display outputs and reconfigures their modes.
package display

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procEnumDisplayDevicesW      = user32.NewProc("EnumDisplayDevicesW")
	procEnumDisplaySettingsW     = user32.NewProc("EnumDisplaySettingsW")
	procChangeDisplaySettingsExW = user32.NewProc("ChangeDisplaySettingsExW")
)

const (
	enumCurrentSettings        = 0xFFFFFFFF
	displayDevicePrimaryDevice = 0x00000004
	dispChangeSuccessful       = 0

	dmPosition   = 0x00000020
	dmPelsWidth  = 0x00080000
	dmPelsHeight = 0x00100000
)

// displayDevice mirrors DISPLAY_DEVICEW.
type displayDevice struct {
	Cb           uint32
	DeviceName   [32]uint16
	DeviceString [128]uint16
	StateFlags   uint32
	DeviceID     [128]uint16
	DeviceKey    [128]uint16
}

type pointL struct {
	X int32
	Y int32
}

// devMode mirrors DEVMODEW using the display variant of its first union.
type devMode struct {
	DeviceName         [32]uint16
	SpecVersion        uint16
	DriverVersion      uint16
	Size               uint16
	DriverExtra        uint16
	Fields             uint32
	Position           pointL
	DisplayOrientation uint32
	DisplayFixedOutput uint32
	Color              int16
	Duplex             int16
	YResolution        int16
	TTOption           int16
	Collate            int16
	FormName           [32]uint16
	LogPixels          uint16
	BitsPerPel         uint32
	PelsWidth          uint32
	PelsHeight         uint32
	DisplayFlags       uint32
	DisplayFrequency   uint32
	ICMMethod          uint32
	ICMIntent          uint32
	MediaType          uint32
	DitherType         uint32
	Reserved1          uint32
	Reserved2          uint32
	PanningWidth       uint32
	PanningHeight      uint32
}

// WinSystem talks to the GDI display configuration API.
type WinSystem struct{}

// NewSystem returns the Windows display system.
func NewSystem() System {
	return WinSystem{}
}

// Devices enumerates display adapters and the first monitor attached to each.
func (WinSystem) Devices() ([]Device, error) {
	var out []Device
	for i := uint32(0); ; i++ {
		dd := displayDevice{}
		dd.Cb = uint32(unsafe.Sizeof(dd))
		if !enumDisplayDevices(nil, i, &dd) {
			break
		}
		dev := Device{
			Index:   int(i),
			Name:    windows.UTF16ToString(dd.DeviceName[:]),
			Primary: dd.StateFlags&displayDevicePrimaryDevice != 0,
		}
		if dev.Name != "" {
			fillMonitor(&dev)
		}
		out = append(out, dev)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("EnumDisplayDevices returned no adapters")
	}
	return out, nil
}

// fillMonitor reads the hardware id and description of the adapter's monitor.
func fillMonitor(dev *Device) {
	name, err := windows.UTF16PtrFromString(dev.Name)
	if err != nil {
		return
	}
	md := displayDevice{}
	md.Cb = uint32(unsafe.Sizeof(md))
	if !enumDisplayDevices(name, 0, &md) {
		return
	}
	dev.MonitorID = windows.UTF16ToString(md.DeviceID[:])
	dev.MonitorString = windows.UTF16ToString(md.DeviceString[:])
}

// CurrentMode reads the active resolution and position of a device.
func (WinSystem) CurrentMode(id string) (Mode, error) {
	dm, err := currentDevMode(id)
	if err != nil {
		return Mode{}, err
	}
	return Mode{
		Width:  dm.PelsWidth,
		Height: dm.PelsHeight,
		X:      dm.Position.X,
		Y:      dm.Position.Y,
	}, nil
}

// ApplyDisabled detaches a device by setting a 0x0 mode at its saved position.
// The change is dynamic only, so the registry still holds the enabled layout.
func (WinSystem) ApplyDisabled(id string, saved Mode) error {
	name, err := windows.UTF16PtrFromString(id)
	if err != nil {
		return err
	}
	dm := disabledDevMode(saved)
	return changeDisplaySettings(name, &dm)
}

// disabledDevMode builds a 0x0 mode that keeps the device at its saved origin.
// Position is flagged too so the driver does not move the output to (0,0).
func disabledDevMode(saved Mode) devMode {
	dm := devMode{}
	dm.Size = uint16(unsafe.Sizeof(dm))
	dm.Fields = dmPelsWidth | dmPelsHeight | dmPosition
	dm.Position = pointL{X: saved.X, Y: saved.Y}
	return dm
}

// ResetAll reapplies the registry display settings to every device.
func (WinSystem) ResetAll() error {
	return changeDisplaySettings(nil, nil)
}

// currentDevMode calls EnumDisplaySettingsW with ENUM_CURRENT_SETTINGS.
func currentDevMode(id string) (devMode, error) {
	name, err := windows.UTF16PtrFromString(id)
	if err != nil {
		return devMode{}, err
	}
	dm := devMode{}
	dm.Size = uint16(unsafe.Sizeof(dm))
	r, _, callErr := procEnumDisplaySettingsW.Call(
		uintptr(unsafe.Pointer(name)),
		uintptr(enumCurrentSettings),
		uintptr(unsafe.Pointer(&dm)),
	)
	if r == 0 {
		return devMode{}, fmt.Errorf("EnumDisplaySettings %s: %w", id, callErr)
	}
	return dm, nil
}

// enumDisplayDevices calls EnumDisplayDevicesW; device nil enumerates adapters.
func enumDisplayDevices(device *uint16, index uint32, dd *displayDevice) bool {
	r, _, _ := procEnumDisplayDevicesW.Call(
		uintptr(unsafe.Pointer(device)),
		uintptr(index),
		uintptr(unsafe.Pointer(dd)),
		0,
	)
	return r != 0
}

// changeDisplaySettings calls ChangeDisplaySettingsExW with no flags.
func changeDisplaySettings(device *uint16, dm *devMode) error {
	r, _, _ := procChangeDisplaySettingsExW.Call(
		uintptr(unsafe.Pointer(device)),
		uintptr(unsafe.Pointer(dm)),
		0,
		0,
		0,
	)
	if code := int32(r); code != dispChangeSuccessful {
		return fmt.Errorf("ChangeDisplaySettingsEx failed: %s", dispChangeText(code))
	}
	return nil
}

// dispChangeText names a DISP_CHANGE_* result.
func dispChangeText(code int32) string {
	switch code {
	case 1:
		return "restart required"
	case -1:
		return "DISP_CHANGE_FAILED"
	case -2:
		return "DISP_CHANGE_BADMODE"
	case -3:
		return "DISP_CHANGE_NOTUPDATED"
	case -4:
		return "DISP_CHANGE_BADFLAGS"
	case -5:
		return "DISP_CHANGE_BADPARAM"
	case -6:
		return "DISP_CHANGE_BADDUALVIEW"
	default:
		return fmt.Sprintf("code %d", code)
	}
}
