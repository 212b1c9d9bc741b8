package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/solidhdf5/cmd/solidhdf5"
	"github.com/arthur-debert/solidhdf5/internal/version"
)

func main() {
	rootCmd := solidhdf5.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "SOLIDHDF5",
		Section: "1",
		Source:  "solidhdf5 " + version.Version,
		Manual:  "solidhdf5 manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
