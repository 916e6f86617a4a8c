/*
Package turing is an engine for abstract Turing machines: deterministic, multi-tape and nondeterministic.

A machine is a transition table over an unbounded tape. Tables are authored as YAML, JSON or Markdown
front matter, compiled into an immutable domain.Table, and executed by an engine that either steps one
transition at a time or explores every branch breadth-first.

# Concept

The engine follows a hexagonal layout. The domain (tables, statuses, verdicts) knows nothing about
storage or transport; adapters load machines (memory, Loam), persist runs (memory, file, Redis, SQLite)
and expose them (HTTP, MCP, CLI).

# Usage

	lib, err := turing.New("") // built-in machines; pass a directory to load your own
	if err != nil {
		log.Fatal(err)
	}

	engine, err := lib.Engine(ctx, "binary-increment", "1011")
	if err != nil {
		log.Fatal(err)
	}

	res, err := engine.Run(10_000)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Verdict, engine.TapeAt(0).Content()) // accept 1100

Runs are bounded: every Run takes an explicit limit and reports VerdictUndetermined when it is reached.
Nondeterministic machines are driven with Library.Search instead.
*/
package turing
