package tsfront

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/cxref/internal/unit"
)

func writeSource(t *testing.T, content string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.cpp")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAcquireParsesFunctionDefinition(t *testing.T) {
	path := writeSource(t, "int add(int a, int b) {\n  return a + b;\n}\n")

	c := New()
	acquired, ok := c.Acquire(path, nil, unit.FlagSource|unit.FlagAST)
	require.True(t, ok)
	require.Equal(t, unit.OriginSource, acquired.Origin)

	var sawDef bool
	unit.Walk(acquired.Unit.RootCursor(), func(cur unit.Cursor) unit.VisitResult {
		if cur.IsDefinition() && cur.DisplayName() != "" {
			sawDef = true
			require.NotEmpty(t, cur.USR())
		}
		return unit.VisitRecurse
	})
	require.True(t, sawDef)
}

func TestAcquireServesCacheWhenContentUnchanged(t *testing.T) {
	path := writeSource(t, "void f() {}\n")

	c := New()
	_, ok := c.Acquire(path, nil, unit.FlagSource|unit.FlagAST)
	require.True(t, ok)

	acquired, ok := c.Acquire(path, nil, unit.FlagSource|unit.FlagAST)
	require.True(t, ok)
	require.Equal(t, unit.OriginCached, acquired.Origin)
}

func TestAcquireForceReparsesEvenWhenUnchanged(t *testing.T) {
	path := writeSource(t, "void f() {}\n")

	c := New()
	_, ok := c.Acquire(path, nil, unit.FlagSource|unit.FlagAST)
	require.True(t, ok)

	acquired, ok := c.Acquire(path, nil, unit.FlagSource|unit.FlagAST|unit.FlagForce)
	require.True(t, ok)
	require.Equal(t, unit.OriginSource, acquired.Origin)
}

func TestAcquireResolvesCallToEarlierDefinition(t *testing.T) {
	path := writeSource(t, "int helper() { return 1; }\nint main() { return helper(); }\n")

	c := New()
	acquired, ok := c.Acquire(path, nil, unit.FlagSource|unit.FlagAST)
	require.True(t, ok)

	var defUSR, refUSR string
	unit.Walk(acquired.Unit.RootCursor(), func(cur unit.Cursor) unit.VisitResult {
		if cur.DisplayName() == "helper()" && cur.IsDefinition() {
			defUSR = cur.USR()
		}
		if !cur.IsDefinition() && cur.DisplayName() == "helper" {
			if ref, ok := cur.Referenced(); ok {
				refUSR = ref.USR()
			}
		}
		return unit.VisitRecurse
	})
	require.NotEmpty(t, defUSR)
	require.Equal(t, defUSR, refUSR)
}

func TestAcquireMissingFileFails(t *testing.T) {
	c := New()
	_, ok := c.Acquire("/no/such/file.cpp", nil, unit.FlagSource|unit.FlagAST)
	require.False(t, ok)
}
