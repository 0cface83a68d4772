//go:build !windows

package recognizer

// GetDriveType returns DriveInvalid: drive letters do not name volumes here.
func GetDriveType(string) DriveType {
	return DriveInvalid
}
