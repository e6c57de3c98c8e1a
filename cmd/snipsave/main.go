// Command snipsave runs the snippet vault HTTP service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/snipsave/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		fmt.Fprintln(os.Stderr, "snipsave:", err)
		os.Exit(1)
	}
}
