package plotfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, input string) (*Config, error) {
	t.Helper()
	return Parse(strings.NewReader(input), Options{})
}

func TestParse_Scenario(t *testing.T) {
	input := `xlabel Time
ylabel Count
barwidth 0.5
--arguments--
--data--
A 1 2
B 3 4
`
	cfg, err := parseString(t, input)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.SeriesCount)
	assert.Equal(t, []string{"A", "B"}, cfg.Categories)
	assert.Equal(t, []int{0, 1}, cfg.Indices)
	assert.Equal(t, [][]float64{{1, 3}, {2, 4}}, cfg.Series)
	assert.InDelta(t, 1.0/3.0, cfg.BarWidth, 1e-12)
	assert.Equal(t, 0.5, cfg.Directives.BarWidth)
	assert.Equal(t, "Time", cfg.Directives.XLabel)
	assert.Equal(t, "Count", cfg.Directives.YLabel)

	rowA, ok := cfg.Table.Row("A")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, rowA)
	rowB, ok := cfg.Table.Row("B")
	require.True(t, ok)
	assert.Equal(t, []float64{3, 4}, rowB)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		assert func(t *testing.T, err error)
	}{
		{
			name:  "duplicate label",
			input: "--arguments--\n--data--\nA 1 2\nA 5 6\n",
			assert: func(t *testing.T, err error) {
				var dup *DuplicateLabelError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, "A", dup.Label)
				assert.Equal(t, 4, dup.Line)
			},
		},
		{
			name:  "duplicate label after other rows",
			input: "--arguments--\n--data--\nA 1\nB 2\nC 3\nB 4\n",
			assert: func(t *testing.T, err error) {
				var dup *DuplicateLabelError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, "B", dup.Label)
			},
		},
		{
			name:  "short row",
			input: "--arguments--\n--data--\nA 1 2\nB 3\n",
			assert: func(t *testing.T, err error) {
				var cc *InconsistentColumnCountError
				require.ErrorAs(t, err, &cc)
				assert.Equal(t, "B", cc.Label)
				assert.Equal(t, 2, cc.Expected)
				assert.Equal(t, 1, cc.Actual)
				assert.Equal(t, 4, cc.Line)
			},
		},
		{
			name:  "long row",
			input: "--arguments--\n--data--\nA 1 2\nB 3 4 5\n",
			assert: func(t *testing.T, err error) {
				var cc *InconsistentColumnCountError
				require.ErrorAs(t, err, &cc)
				assert.Equal(t, 3, cc.Actual)
			},
		},
		{
			name:  "malformed value",
			input: "--arguments--\n--data--\nA 1 x2\n",
			assert: func(t *testing.T, err error) {
				var mn *MalformedNumberError
				require.ErrorAs(t, err, &mn)
				assert.Equal(t, "A", mn.Label)
				assert.Equal(t, "x2", mn.Token)
				assert.Equal(t, 3, mn.Line)
			},
		},
		{
			name:  "malformed barwidth",
			input: "barwidth wide\n--arguments--\n--data--\nA 1\n",
			assert: func(t *testing.T, err error) {
				var mn *MalformedNumberError
				require.ErrorAs(t, err, &mn)
				assert.Equal(t, "barwidth", mn.Label)
				assert.Equal(t, "wide", mn.Token)
				assert.Equal(t, 1, mn.Line)
			},
		},
		{
			name:  "infinite value",
			input: "--arguments--\n--data--\nA 1 +Inf\n",
			assert: func(t *testing.T, err error) {
				var mn *MalformedNumberError
				require.ErrorAs(t, err, &mn)
				assert.Equal(t, "+Inf", mn.Token)
			},
		},
		{
			name:  "NaN barwidth",
			input: "barwidth NaN\n--arguments--\n--data--\nA 1\n",
			assert: func(t *testing.T, err error) {
				var mn *MalformedNumberError
				require.ErrorAs(t, err, &mn)
			},
		},
		{
			name:  "empty data block",
			input: "--arguments--\n--data--\n",
			assert: func(t *testing.T, err error) {
				var et *EmptyTableError
				require.ErrorAs(t, err, &et)
			},
		},
		{
			name:  "data block of blank lines",
			input: "--arguments--\n--data--\n\n   \n\t\n",
			assert: func(t *testing.T, err error) {
				var et *EmptyTableError
				require.ErrorAs(t, err, &et)
			},
		},
		{
			name:  "no sentinels at all",
			input: "xlabel x\ntitle t\n",
			assert: func(t *testing.T, err error) {
				var et *EmptyTableError
				require.ErrorAs(t, err, &et)
			},
		},
		{
			name:  "empty input",
			input: "",
			assert: func(t *testing.T, err error) {
				var et *EmptyTableError
				require.ErrorAs(t, err, &et)
			},
		},
		{
			name:  "labels without values",
			input: "--arguments--\n--data--\nA\nB\n",
			assert: func(t *testing.T, err error) {
				var et *EmptyTableError
				require.ErrorAs(t, err, &et)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := parseString(t, tc.input)
			assert.Nil(t, cfg)
			require.Error(t, err)
			tc.assert(t, err)
		})
	}
}

func TestParse_Directives(t *testing.T) {
	input := `
title   Throughput by workload
xlabel Workload
ylabel ops/s
position upper left
labels fast slow
labels baseline
colors r g
log true
some unrelated line
--arguments--
--data--
w1 1 2 3
`
	cfg, err := parseString(t, input)
	require.NoError(t, err)

	d := cfg.Directives
	assert.Equal(t, "Throughput by workload", d.Title)
	assert.Equal(t, "Workload", d.XLabel)
	assert.Equal(t, "ops/s", d.YLabel)
	assert.Equal(t, "upper left", d.Position)
	assert.Equal(t, []string{"fast", "slow", "baseline"}, d.Labels)
	assert.Equal(t, []string{"r", "g"}, d.Colors)
	assert.True(t, d.LogScale)
	assert.Equal(t, DefaultBarWidth, d.BarWidth)
	assert.Equal(t, []string{"r", "g", DefaultColor}, cfg.Colors)
}

func TestParse_DirectiveDefaults(t *testing.T) {
	cfg, err := parseString(t, "--arguments--\n--data--\nA 1\n")
	require.NoError(t, err)

	d := cfg.Directives
	assert.Equal(t, "", d.Title)
	assert.Equal(t, DefaultPosition, d.Position)
	assert.False(t, d.LogScale)
	assert.Empty(t, d.Labels)
	assert.Equal(t, DefaultBarWidth, d.BarWidth)
	assert.Equal(t, DefaultBarWidth, cfg.BarWidth)
}

func TestParse_LogFlag(t *testing.T) {
	testCases := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"  true  ", true},
		{"True", false},
		{"TRUE", false},
		{"false", false},
		{"yes", false},
		{"truely", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("log %q", tc.value), func(t *testing.T) {
			input := "log " + tc.value + "\n--arguments--\n--data--\nA 1\n"
			cfg, err := parseString(t, input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg.Directives.LogScale)
		})
	}
}

func TestParse_LastLogDirectiveWins(t *testing.T) {
	cfg, err := parseString(t, "log true\nlog off\n--arguments--\n--data--\nA 1\n")
	require.NoError(t, err)
	assert.False(t, cfg.Directives.LogScale)
}

func TestParse_Arguments(t *testing.T) {
	input := "--arguments--\n  first arg  \n\nsecond *arg*\n--data--\nA 1 2 3\n"
	cfg, err := parseString(t, input)
	require.NoError(t, err)
	assert.Equal(t, []string{"  first arg  ", "second *arg*", ""}, cfg.Arguments)
}

func TestParse_SentinelsMatchBySubstring(t *testing.T) {
	input := "xlabel X\n### --arguments-- ###\nnote\n== --data-- ==\nA 1\n"
	cfg, err := parseString(t, input)
	require.NoError(t, err)
	assert.Equal(t, []string{"note"}, cfg.Arguments)
	assert.Equal(t, []string{"A"}, cfg.Categories)
}

func TestParse_DirectiveLineIsNotASentinel(t *testing.T) {
	// A recognized directive wins over the sentinel it happens to contain.
	input := "title a --arguments-- b\n--arguments--\n--data--\nA 1\n"
	cfg, err := parseString(t, input)
	require.NoError(t, err)
	assert.Equal(t, "a --arguments-- b", cfg.Directives.Title)
}

func TestParse_CRLF(t *testing.T) {
	input := "title T\r\n--arguments--\r\nnote\r\n--data--\r\nA 1 2\r\nB 3 4\r\n"
	cfg, err := parseString(t, input)
	require.NoError(t, err)
	assert.Equal(t, "T", cfg.Directives.Title)
	assert.Equal(t, []string{"note", ""}, cfg.Arguments)
	assert.Equal(t, [][]float64{{1, 3}, {2, 4}}, cfg.Series)
}

func TestParse_Padding(t *testing.T) {
	const n = 4
	for supplied := 0; supplied <= n; supplied++ {
		t.Run(fmt.Sprintf("%d supplied", supplied), func(t *testing.T) {
			var b strings.Builder
			colors := make([]string, supplied)
			for i := range colors {
				colors[i] = fmt.Sprintf("c%d", i)
			}
			if supplied > 0 {
				fmt.Fprintf(&b, "colors %s\n", strings.Join(colors, " "))
			}
			b.WriteString("--arguments--\n")
			for i := 0; i < supplied; i++ {
				fmt.Fprintf(&b, "arg %d\n", i)
			}
			b.WriteString("--data--\nA 1 2 3 4\nB 5 6 7 8\n")

			cfg, err := Parse(strings.NewReader(b.String()), Options{DefaultColor: "grey"})
			require.NoError(t, err)
			assert.Len(t, cfg.Arguments, n)
			assert.Len(t, cfg.Colors, n)
			for i := supplied; i < n; i++ {
				assert.Equal(t, "", cfg.Arguments[i])
				assert.Equal(t, "grey", cfg.Colors[i])
			}
			assert.Equal(t, colors, cfg.Colors[:supplied])
		})
	}
}

func TestParse_BarWidthClamp(t *testing.T) {
	testCases := []struct {
		name      string
		directive string
		opts      Options
		columns   int
		expected  float64
	}{
		{"small width kept", "barwidth 0.1\n", Options{}, 2, 0.1},
		{"large width clamped", "barwidth 5\n", Options{}, 3, 0.25},
		{"default width clamped", "", Options{}, 2, 1.0 / 3.0},
		{"default width kept", "", Options{}, 1, 0.35},
		{"caller default", "", Options{DefaultBarWidth: 0.05}, 5, 0.05},
		{"directive beats caller default", "barwidth 0.2\n", Options{DefaultBarWidth: 0.05}, 1, 0.2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values := strings.TrimSpace(strings.Repeat(" 1", tc.columns))
			input := tc.directive + "--arguments--\n--data--\nA " + values + "\n"
			cfg, err := Parse(strings.NewReader(input), tc.opts)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, cfg.BarWidth, 1e-12)
			assert.LessOrEqual(t, cfg.BarWidth, 1/float64(cfg.SeriesCount+1))
		})
	}
}

func TestParse_TransposeProperty(t *testing.T) {
	const rows, cols = 7, 5
	var b strings.Builder
	b.WriteString("--arguments--\n--data--\n")
	for r := 0; r < rows; r++ {
		fmt.Fprintf(&b, "row%d", r)
		for c := 0; c < cols; c++ {
			fmt.Fprintf(&b, " %d.%d", r, c)
		}
		b.WriteString("\n")
	}

	cfg, err := parseString(t, b.String())
	require.NoError(t, err)
	require.Len(t, cfg.Series, cols)
	require.Len(t, cfg.Categories, rows)

	for c, series := range cfg.Series {
		require.Len(t, series, rows)
		for r, label := range cfg.Categories {
			row, ok := cfg.Table.Row(label)
			require.True(t, ok)
			require.Len(t, row, cols)
			assert.Equal(t, row[c], series[r])
		}
	}
}

func TestParse_CategoryOrderIsInputOrder(t *testing.T) {
	labels := []string{"zeta", "alpha", "mu", "beta", "omega", "gamma"}
	var b strings.Builder
	b.WriteString("--arguments--\n--data--\n")
	for i, l := range labels {
		fmt.Fprintf(&b, "%s %d\n", l, i)
	}
	for i := 0; i < 5; i++ {
		cfg, err := parseString(t, b.String())
		require.NoError(t, err)
		assert.Equal(t, labels, cfg.Categories)
		assert.Equal(t, labels, cfg.Table.Labels())
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plot.in")
	require.NoError(t, os.WriteFile(path, []byte("--arguments--\n--data--\nA 1 2\n"), 0o644))

	cfg, err := ParseFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.SeriesCount)

	bad := filepath.Join(dir, "bad.in")
	require.NoError(t, os.WriteFile(bad, []byte("--arguments--\n--data--\nA 1\nA 2\n"), 0o644))
	_, err = ParseFile(bad, Options{})
	var dup *DuplicateLabelError
	require.ErrorAs(t, err, &dup)
	assert.Contains(t, err.Error(), "bad.in")

	_, err = ParseFile(filepath.Join(dir, "missing.in"), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestParse_ReadError(t *testing.T) {
	_, err := Parse(failingReader{}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}
