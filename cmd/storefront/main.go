package main

import (
	"os"

	"github.com/you/storefront/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
