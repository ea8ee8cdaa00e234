package main

import (
	"os"

	"ovhapi/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
