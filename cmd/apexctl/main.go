package main

import (
	"os"

	"github.com/anonymeye/apex-platform/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
