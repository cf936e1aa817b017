package main

import (
	"github.com/ColonelBlimp/blinkmorse/cmd"
	"github.com/ColonelBlimp/blinkmorse/internal/recovery"
)

func main() {
	defer recovery.HandlePanic()
	cmd.Execute()
}
