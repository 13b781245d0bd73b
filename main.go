package main

import (
	"log"

	"keymap-engine/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
