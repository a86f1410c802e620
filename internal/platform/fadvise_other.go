//go:build !linux

package platform

import "errors"

const AdviceSequential = 2

// Fadvise is unsupported outside Linux.
func Fadvise(_ int, _, _ int64, _ int) error {
	return errors.ErrUnsupported
}
