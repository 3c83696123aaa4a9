package main

import (
	"os"

	"github.com/guendazorz/log-detective/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
