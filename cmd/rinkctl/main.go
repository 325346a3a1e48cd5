// Command rinkctl queries the data API and renders sequences offline.
package main

import (
	"github.com/DoyleJ11/rink-sequences/internal/cli"
)

func main() {
	cli.Execute()
}
