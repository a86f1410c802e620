//go:build !linux

package transfer

import "syscall"

func enosys(_, _, _ int) (int, error) {
	return -1, syscall.ENOSYS
}

var kernel = kernelOps{
	copyFileRange: enosys,
	sendfile:      enosys,
}
