package main

import (
	"io"
	"os"
	"time"

	md2docx "github.com/alnah/go-md2docx"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	// NewPool builds the converter pool for a convert run. Tests replace it.
	NewPool func(size int, opts []md2docx.Option) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		NewPool: newConverterPool,
	}
}
