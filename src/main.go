package main

import (
	"github.com/rtvm/rtvm/src/cmd"

	// Import runtimes to register them
	_ "github.com/rtvm/rtvm/src/runtimes/node"
)

func main() {
	cmd.Execute()
}
