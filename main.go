package main

import (
	"flag"
	"fmt"
	"os"

	infraconfig "github.com/jonesrussell/north-cloud/link-review/infrastructure/config"
	"github.com/jonesrussell/north-cloud/link-review/internal/bootstrap"
)

func main() {
	configPath := flag.String("config", infraconfig.GetConfigPath("config.yml"), "Path to configuration file")
	flag.Parse()

	if err := bootstrap.Start(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
