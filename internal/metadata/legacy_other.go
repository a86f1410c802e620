//go:build !linux

package metadata

import "errors"

func legacyStat(_ string, _ bool) (Record, error) {
	return Record{}, errors.ErrUnsupported
}

func legacyFstat(_ int) (Record, error) {
	return Record{}, errors.ErrUnsupported
}
