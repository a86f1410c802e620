package platform

import "syscall"

// IgnoringEINTR calls fn until it returns something other than EINTR. The
// same arguments are reused on every attempt.
func IgnoringEINTR(fn func() error) error {
	for {
		err := fn()
		if err != syscall.EINTR {
			return err
		}
	}
}

// IgnoringEINTRIO is IgnoringEINTR for calls that also report a byte count.
func IgnoringEINTRIO(fn func() (int, error)) (int, error) {
	for {
		n, err := fn()
		if err != syscall.EINTR {
			return n, err
		}
	}
}
