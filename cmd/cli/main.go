package main

import (
	"errors"
	"fmt"
	"os"
)

const (
	exitOk = iota
	exitFailure
	exitVerification
)

// exitError carries the process status of a failed command
type exitError struct {
	code int
	err  error
}

func (err exitError) Error() string {
	return err.err.Error()
}

func (err exitError) Unwrap() error {
	return err.err
}

func exitCode(err error) int {
	if err == nil {
		return exitOk
	}
	var exitErr exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return exitFailure
}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}
