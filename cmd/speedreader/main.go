package main

import (
	"github.com/speedreader/speedreader/cmd/speedreader/cmd"
)

func main() {
	cmd.Execute()
}
