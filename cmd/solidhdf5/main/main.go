package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/arthur-debert/solidhdf5/cmd/solidhdf5"
	"github.com/arthur-debert/solidhdf5/pkg/ui/styles"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	rootCmd := solidhdf5.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	// Outcomes were already rendered by the command
	if !solidhdf5.IsOutcome(err) {
		errorStyle := styles.GetStyle("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
	}
	os.Exit(solidhdf5.ExitCode(err))
}
