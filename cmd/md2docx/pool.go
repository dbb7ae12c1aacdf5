package main

import (
	"context"
	"fmt"

	md2docx "github.com/alnah/go-md2docx"
)

// CLIConverter is the interface for the conversion service.
type CLIConverter interface {
	Convert(ctx context.Context, input md2docx.Input) (*md2docx.Result, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*md2docx.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (CLIConverter, error)
	Release(CLIConverter)
	Size() int
	Close() error
}

// poolAdapter exposes an md2docx.ConverterPool as a Pool.
type poolAdapter struct {
	pool *md2docx.ConverterPool
}

var _ Pool = (*poolAdapter)(nil)

func newConverterPool(size int, opts []md2docx.Option) Pool {
	return &poolAdapter{pool: md2docx.NewConverterPool(size, opts...)}
}

func (a *poolAdapter) Acquire() (CLIConverter, error) {
	conv, err := a.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Release panics when c did not come from this pool's Acquire.
func (a *poolAdapter) Release(c CLIConverter) {
	conv, ok := c.(*md2docx.Converter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", c))
	}
	a.pool.Release(conv)
}

func (a *poolAdapter) Size() int    { return a.pool.Size() }
func (a *poolAdapter) Close() error { return a.pool.Close() }
