// Command arcosphere finds, verifies and plans arcosphere recipe paths.
//
// Usage:
//
//	arcosphere solve EP LX --plan
//	arcosphere verify "EP -> LX + G => PG -> XO | EO -> LG"
//	arcosphere plan "EP -> LX + O => EO -> LG | PG -> XO"
//	arcosphere history --db ./arcosphere.db
//	arcosphere test ./scenarios
//	arcosphere family --family ./polar.cue
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/arcosphere/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Cancel long searches on interrupt.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCommand()
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}
	if !cli.IsReported(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return cli.GetExitCode(err)
}
