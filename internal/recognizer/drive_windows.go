//go:build windows

package recognizer

import (
	"golang.org/x/sys/windows"
)

// GetDriveType returns the type of the volume for a "X:" drive prefix.
func GetDriveType(drive string) DriveType {
	root, err := windows.UTF16PtrFromString(drive + `\`)
	if err != nil {
		return DriveInvalid
	}
	switch windows.GetDriveType(root) {
	case windows.DRIVE_NO_ROOT_DIR:
		return DriveInvalid
	case windows.DRIVE_REMOVABLE:
		return DriveRemovable
	case windows.DRIVE_FIXED:
		return DriveFixed
	case windows.DRIVE_REMOTE:
		return DriveRemote
	case windows.DRIVE_CDROM:
		return DriveCDROM
	case windows.DRIVE_RAMDISK:
		return DriveRAMDisk
	default:
		return DriveUnknown
	}
}
