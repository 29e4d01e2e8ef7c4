//go:build purego || js

package main

import (
	fx "depthfx/pkg/depthfx"
)

func loadDepth(path string) (*fx.DepthBuffer, error) {
	return fx.ReadDepthFile(path)
}
