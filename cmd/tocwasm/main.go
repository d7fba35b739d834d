//go:build js && wasm

// Command tocwasm is the browser build of the sidebar widget. Build it with
// GOOS=js GOARCH=wasm and serve it as static/sidetoc.wasm next to the Go
// wasm_exec.js loader.
package main

import (
	"encoding/json"
	"log/slog"
	"syscall/js"

	"github.com/dgallion1/sidetoc/internal/dom"
	"github.com/dgallion1/sidetoc/internal/jsdom"
	"github.com/dgallion1/sidetoc/internal/widget"
)

func main() {
	log := slog.New(slog.NewTextHandler(jsdom.Console{}, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := pageConfig()
	if err != nil {
		log.Warn("ignoring page config", "error", err)
		cfg = widget.DefaultConfig()
	}

	doc := jsdom.New()
	w := widget.New(doc, cfg, log)

	start := func() {
		if err := w.Start(); err != nil {
			log.Error("sidebar failed to mount", "error", err)
		}
	}
	if doc.Loading() {
		var release dom.Release
		release = doc.Listen(nil, "DOMContentLoaded", func(dom.Event) {
			start()
			release()
		})
	} else {
		start()
	}

	doc.OnWindow("pagehide", func(dom.Event) {
		if err := w.Stop(); err != nil {
			log.Warn("sidebar teardown", "error", err)
		}
	})

	select {}
}

// pageConfig reads window.sidetoc, which the server sets from its own
// widget settings.
func pageConfig() (widget.Config, error) {
	cfg := widget.DefaultConfig()
	v := js.Global().Get("sidetoc")
	if !v.Truthy() {
		return cfg, nil
	}
	raw := js.Global().Get("JSON").Call("stringify", v).String()
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
