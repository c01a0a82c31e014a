//go:build linux

package main

import (
	"rkws2812/host/linemap"
	"rkws2812/host/regmap"
)

func openDevMem(path string) (mapper, error) {
	return regmap.OpenDevMem(path)
}

func lookupLine(name string) (linemap.Line, error) {
	return linemap.Lookup(name)
}
