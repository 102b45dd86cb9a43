package main

import (
	"os"

	"surveyflow/internal/cmd"
)

// Seeds the configured database with a published survey. Equivalent to
// "surveyctl seed".
func main() {
	if err := cmd.NewSeedCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
