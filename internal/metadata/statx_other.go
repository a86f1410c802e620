//go:build !linux

package metadata

import "syscall"

func rawStatx(_ int, _ string, _ int, _ uint32, _ *statxBuf) error {
	return syscall.ENOSYS
}
