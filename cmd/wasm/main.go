//go:build js && wasm

package main

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"syscall/js"

	fx "depthfx/pkg/depthfx"
)

var (
	ctx      = fx.NewContext()
	lastMask *fx.Mask
)

func main() {
	js.Global().Set("applyDepthFilter", js.FuncOf(applyDepthFilter))
	js.Global().Set("setBackground", js.FuncOf(setBackground))
	js.Global().Set("renderMask", js.FuncOf(renderMask))
	select {} // block forever
}

// applyDepthFilter(colorBytes, depthBytes, {mode, filter, focus, orientation})
// returns {image: Uint8Array (JPEG), orientation, fallback?}.
func applyDepthFilter(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("usage: applyDepthFilter(colorBytes, depthBytes, options)")
	}

	img, _, err := image.Decode(bytes.NewReader(bytesFromJS(args[0])))
	if err != nil {
		return errorResult("color decode error: " + err.Error())
	}
	pair := fx.Pair{Seq: 1, Color: fx.ColorFrame{Image: img, Orientation: fx.OrientationUp}}
	if args[1].Truthy() {
		buf, err := fx.ReadDepthBytes(bytesFromJS(args[1]))
		if err != nil {
			return errorResult("depth decode error: " + err.Error())
		}
		pair.Depth = fx.DepthFrame{Buffer: buf}
	}

	sel := fx.Selection{Mode: fx.PreviewFiltered, Filter: fx.Spotlight, Focus: 0.5}
	if len(args) >= 3 && args[2].Type() == js.TypeObject {
		opts := args[2]
		if v := opts.Get("mode"); v.Type() == js.TypeString {
			mode, err := fx.ParsePreviewMode(v.String())
			if err != nil {
				return errorResult(err.Error())
			}
			sel.Mode = mode
		}
		if v := opts.Get("filter"); v.Type() == js.TypeString {
			filter, err := fx.ParseFilterType(v.String())
			if err != nil {
				return errorResult(err.Error())
			}
			sel.Filter = filter
		}
		if v := opts.Get("focus"); v.Type() == js.TypeNumber {
			sel.Focus = v.Float()
		}
		if v := opts.Get("orientation"); v.Type() == js.TypeNumber {
			pair.Color.Orientation = fx.Orientation(v.Int())
		}
	}

	proc := fx.NewProcessor(ctx)
	res := proc.Process(pair, sel)
	if m := proc.CurrentMask(); m != nil {
		lastMask = m
	}

	jpegBytes, err := fx.EncodeJPEG(res.Output.Image, 90)
	if err != nil {
		return errorResult("encode error: " + err.Error())
	}
	jsResult := map[string]interface{}{
		"image":       bytesToJS(jpegBytes),
		"orientation": int(res.Output.Orientation),
	}
	if res.Fallback != nil {
		jsResult["fallback"] = res.Fallback.Error()
	}
	return js.ValueOf(jsResult)
}

// setBackground(imageBytes) sets the greenscreen replacement image.
func setBackground(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || !args[0].Truthy() {
		ctx.Background = nil
		return js.Null()
	}
	img, _, err := image.Decode(bytes.NewReader(bytesFromJS(args[0])))
	if err != nil {
		return errorResult("background decode error: " + err.Error())
	}
	ctx.Background = img
	return js.Null()
}

// renderMask returns the mask of the last filtered frame as PNG bytes.
func renderMask(this js.Value, args []js.Value) interface{} {
	if lastMask == nil {
		return js.Null()
	}
	pngBytes, err := fx.EncodePNG(fx.MaskImage(lastMask))
	if err != nil {
		return js.Null()
	}
	return bytesToJS(pngBytes)
}

func bytesFromJS(v js.Value) []byte {
	b := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(b, v)
	return b
}

func bytesToJS(b []byte) js.Value {
	uint8Array := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(uint8Array, b)
	return uint8Array
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{
		"error": msg,
	})
}
