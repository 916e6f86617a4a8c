package main

import (
	"bytes"
	"testing"

	"github.com/aretw0/turing/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		_ = rootCmd.PersistentFlags().Set("dir", "")
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "turing version 0.1.0")
}

func TestList(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "binary-increment")
	assert.Contains(t, out, "nondeterministic")
}

func TestRun(t *testing.T) {
	out, err := execute(t, "run", "binary-increment", "1011", "--max-steps", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "accept after")
	assert.Contains(t, out, "tape 0: 1100")
}

func TestRun_UnknownMachine(t *testing.T) {
	_, err := execute(t, "run", "busy-beaver", "1")
	assert.ErrorContains(t, err, "busy-beaver")
}

func TestDescribe(t *testing.T) {
	out, err := execute(t, "describe", "bit-flip")
	require.NoError(t, err)
	assert.Contains(t, out, "bit-flip")

	out, err = execute(t, "describe", "bit-flip", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "initial:")
}

func TestSearch(t *testing.T) {
	out, err := execute(t, "search", "pattern-101", "0101", "--max-generations", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "accept after")
	assert.Contains(t, out, "accepting path")
}

func TestGraph(t *testing.T) {
	out, err := execute(t, "graph", "bit-flip")
	require.NoError(t, err)
	assert.Contains(t, out, "graph LR")
}

func TestValidate_Builtins(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "palindrome: ok")
}

func TestValidate_FailingExample(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteMachines(t, dir, map[string]string{"liar.yaml": `initial: q
accept: [q]
examples:
  - {input: "1", verdict: reject}
`})

	out, err := execute(t, "validate", "--dir", dir)
	assert.ErrorIs(t, err, errValidation)
	assert.Contains(t, out, `liar: example "1": want reject, got accept`)
}
