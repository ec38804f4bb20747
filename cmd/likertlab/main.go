package main

import (
	"fmt"
	"os"

	"likertlab/internal/errors"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "likertlab: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for usage and configuration problems, 1 for analysis failures.
// Errors that are not AppErrors come from cobra's flag and argument parsing.
func exitCode(err error) int {
	if !errors.IsAppError(err) {
		return 2
	}
	switch errors.GetCode(err) {
	case errors.CodeConfigInvalid, errors.CodeInvalidInput:
		return 2
	}
	return 1
}
