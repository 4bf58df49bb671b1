package bench

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tinyCNF = `p cnf 2 1
w 3 5 0
1 -2 0
`

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSuite(t *testing.T) {
	dir := t.TempDir()
	cnfPath := filepath.Join(dir, "tiny.cnf")
	require.NoError(t, os.WriteFile(cnfPath, []byte(tinyCNF), 0o644))

	path := writeSuite(t, `
name: smoke
runs: 3
seed: 7
timeout: 250ms
instances:
  - name: tiny
    path: `+cnfPath+`
  - vars: 12
    clauses: 30
    seed: 1
engines:
  - name: exact
    kind: bnb
    params:
      order: weight
  - name: sa
    kind: anneal
    params:
      alpha: 0.9
      initialTemp: 25
`)
	suite, err := LoadSuite(path)
	require.NoError(t, err)

	assert.Equal(t, "smoke", suite.Name)
	assert.Equal(t, 3, suite.Runs)
	assert.Equal(t, int64(7), suite.Seed)
	timeout, err := suite.PerRunTimeout()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, timeout)

	require.Len(t, suite.Instances, 2)
	assert.Equal(t, "tiny", suite.Instances[0].Label())
	assert.Equal(t, "rand-v12-c30-s1", suite.Instances[1].Label())
	require.Len(t, suite.Engines, 2)
	assert.Equal(t, "exact", suite.Engines[0].Label())

	cases, err := suite.Cases()
	require.NoError(t, err)
	require.Len(t, cases, 4)
	assert.Equal(t, "tiny", cases[0].Instance)
	assert.Equal(t, "exact", cases[0].Algorithm.Name)
	assert.Equal(t, 2, cases[0].Formula.NbVars)
	assert.Equal(t, "sa", cases[1].Algorithm.Name)
	assert.Equal(t, 12, cases[2].Formula.NbVars)
}

func TestLoadSuiteDefaults(t *testing.T) {
	path := writeSuite(t, `
instances:
  - vars: 5
engines:
  - kind: bnb
`)
	suite, err := LoadSuite(path)
	require.NoError(t, err)
	assert.Equal(t, "suite.yaml", suite.Name)
	assert.Equal(t, 5, suite.Runs)
	timeout, err := suite.PerRunTimeout()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), timeout)
}

func TestLoadSuiteErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "no instance",
			content: "engines:\n  - kind: bnb\n",
			want:    "no instance",
		},
		{
			name:    "no engine",
			content: "instances:\n  - vars: 5\n",
			want:    "no engine",
		},
		{
			name: "bad timeout",
			content: `
timeout: soon
instances:
  - vars: 5
engines:
  - kind: bnb
`,
			want: "invalid timeout",
		},
		{
			name: "unknown kind",
			content: `
instances:
  - vars: 5
engines:
  - kind: tabu
`,
			want: "unknown engine kind",
		},
		{
			name: "unknown parameter",
			content: `
instances:
  - vars: 5
engines:
  - kind: bnb
    params:
      cooling: 2
`,
			want: "invalid engine parameters",
		},
		{
			name: "invalid parameter value",
			content: `
instances:
  - vars: 5
engines:
  - kind: anneal
    params:
      alpha: 1.5
`,
			want: "cooling rate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSuite(writeSuite(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInstanceSpecFormula(t *testing.T) {
	spec := InstanceSpec{Vars: 10, Seed: 3}
	f, err := spec.Formula()
	require.NoError(t, err)
	assert.Equal(t, 10, f.NbVars)
	assert.Len(t, f.Clauses, 40)
	for _, w := range f.Weights {
		assert.GreaterOrEqual(t, w, 1)
		assert.LessOrEqual(t, w, 100)
	}

	again, err := spec.Formula()
	require.NoError(t, err)
	assert.Equal(t, f.CNF(), again.CNF(), "same seed must give the same instance")

	_, err = (&InstanceSpec{Name: "void"}).Formula()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither a path nor a size")
}

func TestEngineSpecFactories(t *testing.T) {
	spec := InstanceSpec{Vars: 6, Seed: 2}
	f, err := spec.Formula()
	require.NoError(t, err)

	exact := EngineSpec{Kind: "bnb", Params: map[string]interface{}{
		"order":    "weight",
		"maxNodes": 1000,
	}}
	algo, err := exact.Algorithm()
	require.NoError(t, err)
	s, err := algo.Factory(f, 0)
	require.NoError(t, err)
	assert.NotNil(t, s)

	sa := EngineSpec{Name: "tuned", Kind: "anneal", Params: map[string]interface{}{
		"Alpha":       0.8,
		"initialtemp": 50,
	}}
	algo, err = sa.Algorithm()
	require.NoError(t, err)
	assert.Equal(t, "tuned", algo.Name)
	s, err = algo.Factory(f, 42)
	require.NoError(t, err)
	assert.NotNil(t, s)
}
