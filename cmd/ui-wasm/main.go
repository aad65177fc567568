//go:build js && wasm

package main

import "github.com/Its-donkey/signup-board/internal/ui/wasm"

func main() {
	wasm.RunApp()
}
