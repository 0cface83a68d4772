package recognizer

import "strings"

// DriveType classifies the volume a path lives on. The ordering matters:
// anything at or below DriveInvalid is unusable.
type DriveType int

const (
	DriveUnknown DriveType = iota
	DriveInvalid
	DriveRemovable
	DriveFixed
	DriveRemote
	DriveCDROM
	DriveRAMDisk
)

// String returns the string representation of the drive type.
func (d DriveType) String() string {
	switch d {
	case DriveUnknown:
		return "unknown"
	case DriveInvalid:
		return "invalid"
	case DriveRemovable:
		return "removable"
	case DriveFixed:
		return "fixed"
	case DriveRemote:
		return "remote"
	case DriveCDROM:
		return "cdrom"
	case DriveRAMDisk:
		return "ramdisk"
	default:
		return "unknown"
	}
}

// IsUNC reports whether path names a network share such as
// \\server\share or //server/share.
func IsUNC(path string) bool {
	if len(path) < 3 || !isSep(path[0]) || !isSep(path[1]) {
		return false
	}
	rest := path[2:]
	return rest != "" && !isSep(rest[0])
}

// DrivePrefix returns the "X:" prefix of path, if it has one.
func DrivePrefix(path string) (string, bool) {
	if len(path) < 2 || path[1] != ':' {
		return "", false
	}
	c := path[0] | 0x20
	if c < 'a' || c > 'z' {
		return "", false
	}
	return strings.ToUpper(path[:2]), true
}

// IsSlowPath reports whether touching path might block on a network or on
// a missing volume.
func IsSlowPath(path string) bool {
	if IsUNC(path) {
		return true
	}
	drive, ok := DrivePrefix(path)
	if !ok {
		return false
	}
	t := GetDriveType(drive)
	return t <= DriveInvalid || t == DriveRemote
}

func isSep(c byte) bool {
	return c == '/' || c == '\\'
}
