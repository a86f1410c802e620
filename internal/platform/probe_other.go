//go:build !linux

package platform

// Probe returns the zero table: neither statx nor copy_file_range exist
// outside Linux.
func Probe() Capabilities {
	return Capabilities{}
}
