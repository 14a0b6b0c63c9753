package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodLine = "BIAL0128|TFS BLR Lounge-East Pier|9/13/24|0:08:28|00IDB-1000021978|POS2|0|0|910|1|0|1398249674|NULL|38:00.6|6883"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "export.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestIngest_DryRun(t *testing.T) {
	path := writeFile(t, goodLine+"\n"+strings.Replace(goodLine, "9/13/24", "someday", 1)+"\n")

	out, err := execute(t, "ingest", path)
	require.NoError(t, err)

	assert.Contains(t, out, "accepted: 1  rejected: 1")
	assert.Contains(t, out, "line 2: unparseable trans_date")
}

func TestIngest_Print(t *testing.T) {
	path := writeFile(t, goodLine+"\n")

	out, err := execute(t, "ingest", "--print", path)
	require.NoError(t, err)

	assert.Contains(t, out, "BIAL0128|TFS BLR Lounge-East Pier|2024-09-13|00:08:28|00IDB-1000021978")
}

func TestIngest_NothingAccepted(t *testing.T) {
	path := writeFile(t, strings.Replace(goodLine, "BIAL0128", "BIAL", 1)+"\n")

	out, err := execute(t, "ingest", path)
	require.Error(t, err)
	assert.Contains(t, out, "accepted: 0  rejected: 1")
}

func TestIngest_MissingFile(t *testing.T) {
	_, err := execute(t, "ingest", filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestVendors(t *testing.T) {
	mapping := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(mapping, []byte("vendors:\n  - prefix: DXBT\n    name: Dubai T3\n    date_order: DMY\n"), 0o600))

	out, err := execute(t, "vendors", "--mapping", mapping)
	require.NoError(t, err)

	assert.Contains(t, out, "BIAL")
	assert.Contains(t, out, "TFSB")
	assert.Contains(t, out, "Dubai T3")
	assert.Contains(t, out, "DMY")
}
