package discord

import (
	"log"
	"time"
)

// step mide cuánto tardó una acción del panel de turnos.
func step(action string) func() {
	start := time.Now()
	return func() { log.Printf("⏱️ panel/%s tomó %s", action, time.Since(start)) }
}
