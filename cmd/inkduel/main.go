package main

import (
	"github.com/inkduel/inkduel-go/internal/cli"
)

func main() {
	cli.Execute()
}
