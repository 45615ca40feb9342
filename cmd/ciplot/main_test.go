package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vdobler/ciplot/internal/config"
)

const teeth = `len,supp,dose
4.2,VC,0.5
11.5,VC,0.5
7.3,VC,0.5
16.5,VC,1
16.5,VC,1
15.2,VC,1
23.6,VC,2
18.5,VC,2
33.9,VC,2
15.2,OJ,0.5
21.5,OJ,0.5
17.6,OJ,0.5
19.7,OJ,1
23.3,OJ,1
23.6,OJ,1
25.5,OJ,2
26.4,OJ,2
22.4,OJ,2
`

// execute runs the command line on a fresh command tree.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRenderAndSummary(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "teeth.csv")
	require.NoError(t, os.WriteFile(data, []byte(teeth), 0644))

	image := filepath.Join(dir, "teeth.svg")
	_, err := execute(t, "render", "--csv", data, "--x", "dose", "--y", "len",
		"--color", "supp", "--geom", "ribbon,line,point", "--position", "dodge",
		"--output", image)
	require.NoError(t, err)
	svg, err := os.ReadFile(image)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")

	out, err := execute(t, "summary", "--csv", data, "--x", "dose", "--y", "len",
		"--color", "supp")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7, out)
	for _, col := range []string{"dose", "len", "supp", "ymin", "ymax", "n"} {
		assert.Contains(t, lines[0], col)
	}
	assert.Contains(t, out, "OJ")
	assert.Contains(t, out, "VC")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "teeth.csv")
	require.NoError(t, os.WriteFile(data, []byte(teeth), 0644))

	file := filepath.Join(dir, "ciplot.yaml")
	_, err := execute(t, "init-config", file, "--csv", data, "--x", "dose",
		"--y", "len", "--level", "0.8")
	require.NoError(t, err)
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "level: 0.8")

	_, err = execute(t, "summary", "--config", file)
	require.NoError(t, err)
}

func TestBadInput(t *testing.T) {
	_, err := execute(t, "summary", "--csv", "does-not-exist.csv", "--x", "a", "--y", "b")
	assert.Error(t, err)

	_, err = execute(t, "summary", "--csv", "x.csv", "--x", "a", "--y", "b", "--level", "95")
	assert.ErrorContains(t, err, "confidence level")

	_, err = execute(t, "summary", "--csv", "x.csv", "--x", "a", "--y", "b", "--dist", "cauchy")
	assert.ErrorContains(t, err, "unknown distribution")
}

func TestFlagsDoNotLeak(t *testing.T) {
	_, err := execute(t, "summary", "--csv", "x.csv", "--x", "a", "--y", "b",
		"--level", "0.8", "--geom", "ribbon", "--color", "supp")
	require.Error(t, err) // x.csv does not exist

	dir := t.TempDir()
	file := filepath.Join(dir, "ciplot.yaml")
	_, err = execute(t, "init-config", file, "--geom", "line")
	require.NoError(t, err)

	written, err := config.Load(file)
	require.NoError(t, err)
	assert.Equal(t, 0.95, written.MeanCI.Level)
	assert.Equal(t, []string{"line"}, written.MeanCI.Geoms)
	assert.Empty(t, written.Input.Color)
	assert.Empty(t, written.Input.CSV)
}
