//go:build !unix

package main

import "errors"

func setSockopt(fd uintptr) error {
	return errors.New("SO_REUSEPORT is not supported on this platform")
}
