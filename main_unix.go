//go:build unix

package main

import "golang.org/x/sys/unix"

func setSockopt(fd uintptr) error {
	return unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
}
