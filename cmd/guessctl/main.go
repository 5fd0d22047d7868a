package main

import "github.com/oluwadara03/Two-Player-Guessing-Game/internal/cli"

func main() {
	cli.Execute()
}
