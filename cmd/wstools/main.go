// Command wstools serves and calls JSON tools over WebSocket.
package main

import (
	"context"

	"github.com/wagiedev/wstools-go/internal/cli"
)

func main() {
	cli.Execute(context.Background())
}
