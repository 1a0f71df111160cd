package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncSkipsUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("not C code\n"), 0o644))

	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"sync", notes, "--workspace", dir, "--no-cache"})

	require.NoError(t, root.Execute())
	assert.NotContains(t, buf.String(), "notes.txt")
}

func TestSyncCommandWritesHeader(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "add.c")
	require.NoError(t, os.WriteFile(src, []byte("int add(int a, int b) {\n    return a + b;\n}\n"), 0o644))

	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"sync", src, "--workspace", dir, "--header", "--no-cache"})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "synchronized")

	hdr, err := os.ReadFile(filepath.Join(dir, "add.h"))
	require.NoError(t, err)
	assert.Contains(t, string(hdr), "int add(int a, int b);")
}
