// witsmlctl checks WITSML log indexes against local files.
package main

import (
	"os"

	"github.com/witsml-explorer/backend/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
