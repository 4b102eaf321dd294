package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/infrastructure/persistence/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const family = `
main: ann
people:
  - id: ann
    data: {first name: Ann, gender: F}
    rels: {spouses: [bob]}
  - id: bob
    data: {first name: Bob, gender: M}
    rels: {spouses: [ann]}
`

func runCLI(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEditCommand(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "family.yaml")
	require.NoError(t, os.WriteFile(data, []byte(family), 0o644))
	metrics := filepath.Join(dir, "famtree.prom")
	t.Setenv("FAMTREE_METRICS_ENABLED", "true")
	t.Setenv("FAMTREE_METRICS_TEXTFILE", metrics)

	script := strings.Join([]string{
		"open ann",
		"submit first name=Anna",
		"remove",
		"open bob",
		"yes",
		"state",
		"save",
		"quit",
	}, "\n")

	out, err := runCLI(t, script, "edit", data, "--config-dir", dir, "--env", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "state: form_open_plain")
	assert.Contains(t, out, "saved 2 people")

	doc, err := dataset.Load(data)
	require.NoError(t, err)
	require.Len(t, doc.People, 2)
	assert.Equal(t, "Anna", doc.People[0].Attr(entities.AttrFirstName))
	assert.False(t, doc.People[0].RelatedTo("bob"))

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "famtree_commands_total")
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "family.yaml")
	require.NoError(t, os.WriteFile(data, []byte(family), 0o644))

	out, err := runCLI(t, "", "check", data, "--config-dir", dir, "--env", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "2 people, valid")

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`[{"id": "a", "rels": {"parents": ["x"]}}]`), 0o644))
	_, err = runCLI(t, "", "check", broken, "--config-dir", dir, "--env", "test")
	assert.Error(t, err)
}
