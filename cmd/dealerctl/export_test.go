package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dealerdesk-backend/pkg/export"
)

func newExportTestCmd(t *testing.T, format, out string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().String("format", format, "")
	cmd.Flags().String("out", out, "")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	return cmd, &buf
}

func sampleTable() export.Table {
	return export.Table{
		Sheet:   "buyers",
		Headers: []string{"name", "phone"},
		Rows:    [][]any{{"Omar", "0122"}},
	}
}

func TestWriteTableToStdout(t *testing.T) {
	cmd, buf := newExportTestCmd(t, "csv", "-")

	require.NoError(t, writeTable(cmd, "buyers_list", sampleTable()))
	require.True(t, strings.HasPrefix(buf.String(), "\uFEFF"))
	require.Contains(t, buf.String(), "Omar,0122")
}

func TestWriteTableToDirectory(t *testing.T) {
	dir := t.TempDir()
	cmd, buf := newExportTestCmd(t, "xlsx", dir)

	require.NoError(t, writeTable(cmd, "buyers_list", sampleTable()))
	require.Contains(t, buf.String(), "wrote 1 rows")

	matches, err := filepath.Glob(filepath.Join(dir, "buyers_list_*.xlsx"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	info, err := os.Stat(matches[0])
	require.NoError(t, err)
	require.Positive(t, info.Size())
}

func TestWriteTableRejectsUnknownFormat(t *testing.T) {
	cmd, _ := newExportTestCmd(t, "pdf", "-")
	require.Error(t, writeTable(cmd, "buyers_list", sampleTable()))
}

func TestRootRegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"sweep", "export", "dashboard"} {
		require.True(t, names[want], "missing %s", want)
	}
}

func TestSweepSubcommandsBindTheirJob(t *testing.T) {
	jobs := map[string]string{}
	for _, c := range sweepCmd.Commands() {
		jobs[c.Name()] = c.Annotations[jobAnnotation]
		require.Nil(t, c.Flags().Lookup("job"), "%s should not take a job override", c.Name())
	}
	require.Equal(t, map[string]string{
		"overdue":          "installments_overdue",
		"outbox-retention": "outbox_retention",
	}, jobs)
}
