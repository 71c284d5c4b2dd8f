//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/annotate/internal/canvas"
	"github.com/inamate/annotate/internal/clipboard"
	"github.com/inamate/annotate/internal/config"
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/graphic"
	"github.com/inamate/annotate/internal/scene"
	"github.com/inamate/annotate/internal/tool"
)

var cv *canvas.Canvas

func main() {
	cv = canvas.New(canvas.Options{
		Settings:  canvas.DefaultSettings(),
		Width:     1280,
		Height:    720,
		Clipboard: &clipboard.Memory{},
	})

	// Create the canvas API object
	api := js.Global().Get("Object").New()

	// --- Commands (frontend → canvas) ---
	api.Set("load", js.FuncOf(load))
	api.Set("loadSample", js.FuncOf(loadSample))
	api.Set("resize", js.FuncOf(resize))
	api.Set("mouseDown", js.FuncOf(mouseDown))
	api.Set("mouseMove", js.FuncOf(mouseMove))
	api.Set("mouseUp", js.FuncOf(mouseUp))
	api.Set("mouseWheel", js.FuncOf(mouseWheel))
	api.Set("lostMouseCapture", js.FuncOf(lostMouseCapture))
	api.Set("keyDown", js.FuncOf(keyDown))
	api.Set("keyUp", js.FuncOf(keyUp))
	api.Set("setTool", js.FuncOf(setTool))
	api.Set("execute", js.FuncOf(execute))
	api.Set("endTextEdit", js.FuncOf(endTextEdit))
	api.Set("setColor", js.FuncOf(setColor))
	api.Set("setBackground", js.FuncOf(setBackground))
	api.Set("setLineWidth", js.FuncOf(setLineWidth))
	api.Set("setZoom", js.FuncOf(setZoom))
	api.Set("subscribe", js.FuncOf(subscribe))

	// --- Queries (frontend ← canvas) ---
	api.Set("render", js.FuncOf(render))
	api.Set("getState", js.FuncOf(getState))
	api.Set("getCommands", js.FuncOf(getCommands))
	api.Set("getBytes", js.FuncOf(getBytes))
	api.Set("exportPNG", js.FuncOf(exportPNG))

	// Register on global scope
	js.Global().Set("annotateCanvas", api)

	// Signal that WASM is ready
	js.Global().Set("annotateWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func result(err error) any {
	if err != nil {
		return js.ValueOf(map[string]any{"error": err.Error()})
	}
	return js.ValueOf(map[string]any{"ok": true})
}

func missing(what string) any {
	return js.ValueOf(map[string]any{"error": "missing " + what})
}

func toJSON(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return result(err)
	}
	return js.ValueOf(string(data))
}

func bytesArg(v js.Value) []byte {
	data := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(data, v)
	return data
}

func bytesValue(data []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(arr, data)
	return arr
}

// point reads args[0], args[1] as viewport coordinates.
func point(args []js.Value) geom.Point {
	return geom.Pt(args[0].Float(), args[1].Float())
}

// mods reads a {shift, ctrl, alt} object.
func mods(v js.Value) canvas.Modifiers {
	var m canvas.Modifiers
	if v.Type() != js.TypeObject {
		return m
	}
	if v.Get("shift").Truthy() {
		m |= canvas.ModShift
	}
	if v.Get("ctrl").Truthy() || v.Get("meta").Truthy() {
		m |= canvas.ModCtrl
	}
	if v.Get("alt").Truthy() {
		m |= canvas.ModAlt
	}
	return m
}

func arg(args []js.Value, i int) js.Value {
	if i < len(args) {
		return args[i]
	}
	return js.Undefined()
}

// button maps MouseEvent.button.
func button(v js.Value) canvas.Button {
	if v.Type() != js.TypeNumber {
		return canvas.ButtonLeft
	}
	switch v.Int() {
	case 1:
		return canvas.ButtonMiddle
	case 2:
		return canvas.ButtonRight
	}
	return canvas.ButtonLeft
}

// --- Command Handlers ---

func load(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("drawing bytes")
	}
	return result(cv.LoadBytes(bytesArg(args[0])))
}

func loadSample(this js.Value, args []js.Value) any {
	return result(cv.LoadBytes(scene.Sample()))
}

func resize(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("width and height")
	}
	if dpi := arg(args, 2); dpi.Type() == js.TypeNumber && dpi.Float() > 0 {
		cv.SetDPI(dpi.Float())
	}
	cv.Resize(args[0].Float(), args[1].Float())
	return nil
}

func mouseDown(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("position")
	}
	clicks := 1
	if c := arg(args, 4); c.Type() == js.TypeNumber && c.Int() > 1 {
		clicks = c.Int()
	}
	cv.MouseDown(point(args), button(arg(args, 2)), mods(arg(args, 3)), clicks)
	return nil
}

func mouseMove(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("position")
	}
	cv.MouseMove(point(args), mods(arg(args, 2)))
	return nil
}

func mouseUp(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("position")
	}
	cv.MouseUp(point(args), button(arg(args, 2)), mods(arg(args, 3)))
	return nil
}

func mouseWheel(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return missing("delta and position")
	}
	cv.MouseWheel(args[0].Float(), geom.Pt(args[1].Float(), args[2].Float()))
	return nil
}

func lostMouseCapture(this js.Value, args []js.Value) any {
	cv.LostMouseCapture()
	return nil
}

func keyDown(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("key")
	}
	return js.ValueOf(cv.KeyDown(canvas.ParseKey(args[0].String()), mods(arg(args, 1))))
}

func keyUp(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("key")
	}
	return js.ValueOf(cv.KeyUp(canvas.ParseKey(args[0].String()), mods(arg(args, 1))))
}

func setTool(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("tool")
	}
	id, err := tool.ParseID(args[0].String())
	if err != nil {
		return result(err)
	}
	return result(cv.SetTool(id))
}

func execute(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("command")
	}
	return result(cv.Execute(args[0].String()))
}

func endTextEdit(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return missing("id, text and ok")
	}
	return result(cv.EndTextEdit(graphic.ID(args[0].Int()), args[1].String(), args[2].Truthy()))
}

func setColor(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("color")
	}
	c, err := config.ParseColor(args[0].String())
	if err != nil {
		return result(err)
	}
	cv.SetObjectColor(c)
	return result(nil)
}

func setBackground(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("background")
	}
	s := args[0].String()
	if s == config.Transparent {
		cv.SetBackground(scene.Background{Checkered: true})
		return result(nil)
	}
	c, err := config.ParseColor(s)
	if err != nil {
		return result(err)
	}
	cv.SetBackground(scene.Background{Color: c})
	return result(nil)
}

func setLineWidth(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("width")
	}
	return result(cv.SetLineWidth(args[0].Float()))
}

func setZoom(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("zoom")
	}
	return result(cv.SetZoom(args[0].Float()))
}

// subscribe calls fn with each canvas event as JSON and returns an
// unsubscribe function.
func subscribe(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return missing("callback")
	}
	fn := args[0]
	unsubscribe := cv.Subscribe(func(e canvas.Event) {
		data, err := json.Marshal(e)
		if err != nil {
			return
		}
		fn.Invoke(string(data))
	})
	var release js.Func
	release = js.FuncOf(func(js.Value, []js.Value) any {
		unsubscribe()
		release.Release()
		return nil
	})
	return release
}

// --- Query Handlers ---

// render returns the viewport as a JSON array of draw commands.
func render(this js.Value, args []js.Value) any {
	out, err := cv.RenderJSON()
	if err != nil {
		return result(err)
	}
	return js.ValueOf(out)
}

func getState(this js.Value, args []js.Value) any {
	return toJSON(cv.State())
}

func getCommands(this js.Value, args []js.Value) any {
	return toJSON(cv.Commands())
}

func getBytes(this js.Value, args []js.Value) any {
	return bytesValue(cv.Bytes())
}

func exportPNG(this js.Value, args []js.Value) any {
	dpi := 1.0
	if v := arg(args, 0); v.Type() == js.TypeNumber {
		dpi = v.Float()
	}
	data, err := cv.ExportPNG(dpi)
	if err != nil {
		return result(err)
	}
	return bytesValue(data)
}
