// Command imagekit runs the image transforms from the command line.
//
//	imagekit resize photo.jpg --width 800 --keep-aspect
//	imagekit meme cat.png --top "one does not simply" --bottom "write a cli"
//	imagekit compress big.png --max-size-mb 0.5 --format jpeg
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
