package main

import (
	"os"

	"github.com/bluecarto/geoloader/internal/pkg/cli"
	"github.com/bluecarto/geoloader/internal/pkg/env"
)

func main() {
	// Load ENVs
	osEnvs, err := env.FromOs()
	if err != nil {
		panic(err)
	}

	// Run command
	cmd := cli.NewRootCommand(os.Stdin, os.Stdout, os.Stderr, osEnvs, cli.DefaultWarehouseFactory())
	os.Exit(cmd.Execute())
}
