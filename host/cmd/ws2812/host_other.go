//go:build !linux

package main

import (
	"errors"

	"rkws2812/host/linemap"
)

var errNotLinux = errors.New("register access needs linux")

func openDevMem(string) (mapper, error) {
	return nil, errNotLinux
}

func lookupLine(string) (linemap.Line, error) {
	return linemap.Line{}, errNotLinux
}
