/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing Turing machines.

It allows developers to define transition tables using a type-safe, fluent builder pattern
instead of relying on external YAML or JSON files. This is particularly useful for generated
machines, unit testing, and leveraging IDE autocompletion/type-checking.

Example usage:

	package main

	import (
		"github.com/aretw0/turing/pkg/dsl"
	)

	func main() {
		b := dsl.New("bit-flip").Initial("q0").Accept("accept")

		b.On("q0", "0").Write("1").Right().Go("q0")
		b.On("q0", "1").Write("0").Right().Go("q0")
		b.On("q0", "_").Right().Go("accept")

		table, err := b.Build()
		// ... pass table to turing.NewEngine(...)
	}

Multi-tape rules select a tape before writing or moving:

	b.OnTuple("copy", "0", "_").Tape(1).Write("0").Right().Tape(0).Right().Go("copy")
*/
package dsl
