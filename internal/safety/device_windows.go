//go:build windows

package safety

import "os"

// deviceID is unavailable on Windows; the cross-device check is skipped.
func deviceID(info os.FileInfo) (uint64, bool) {
	return 0, false
}
