// moreau is a minimal UCI chess engine: material evaluation under a fixed-depth
// alpha-beta search.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/herohde/moreau/pkg/engine"
	"github.com/herohde/moreau/pkg/engine/uci"
	"github.com/seekerror/logw"
)

func main() {
	flag.Parse()
	ctx := context.Background()

	in := readStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		// Use UCI protocol.

		e := engine.New(ctx, "moreau", "herohde")

		driver, out := uci.NewDriver(ctx, e, in)
		go writeStdoutLines(ctx, out)

		<-driver.Closed()
	}

	logw.Exitf(ctx, "Moreau exited")
}

func readStdinLines(ctx context.Context) <-chan string {
	ret := make(chan string, 1)
	go func() {
		defer close(ret)

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			logw.Debugf(ctx, "<< %v", scanner.Text())
			ret <- scanner.Text()
		}
	}()
	return ret
}

func writeStdoutLines(ctx context.Context, out <-chan string) {
	for line := range out {
		logw.Debugf(ctx, ">> %v", line)
		_, _ = fmt.Fprintln(os.Stdout, line)
	}
}
