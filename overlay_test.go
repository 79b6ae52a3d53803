// FILE: lixenwraith/cfgtree/overlay_test.go
package cfgtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"true", Bool(true)},
		{"false", Bool(false)},
		{"42", Int(42)},
		{"-7", Int(-7)},
		{"1.5", Float(1.5)},
		{"1e3", Float(1000)},
		{`"42"`, String("42")},
		{"hello", String("hello")},
		{"Inf", String("Inf")},
		{"", String("")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseValue(tt.in)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

// TestApplyArgs tests command-line overrides
func TestApplyArgs(t *testing.T) {
	t.Run("Forms", func(t *testing.T) {
		c := NewStamped()
		mustSet(t, c, "server.port", Int(8080))

		args := []string{
			"positional",
			"--server.port=9090",
			"--server.host", "example.com",
			"--debug",
			"--",
			"--tls.enabled",
		}
		require.NoError(t, ApplyArgs(c, args, ModeMerge))

		port, _ := c.Get(P("server.port"))
		assert.True(t, port.Equal(Int(9090)))
		host, _ := c.Get(P("server.host"))
		assert.True(t, host.Equal(String("example.com")))
		debug, _ := c.Get(P("debug"))
		assert.True(t, debug.Equal(Bool(true)))
		tls, _ := c.Get(P("tls.enabled"))
		assert.True(t, tls.Equal(Bool(true)))
		assert.False(t, c.Contains(P("positional")))
	})

	t.Run("InvalidKey", func(t *testing.T) {
		c := NewTree()
		err := ApplyArgs(c, []string{"--bad..key=1"}, ModeMerge)
		assert.Error(t, err)
		err = ApplyArgs(c, []string{"--sp ace=1"}, ModeMerge)
		assert.Error(t, err)
		assert.True(t, c.IsEmpty())
	})

	t.Run("SkipsEmptyKey", func(t *testing.T) {
		c := NewTree()
		require.NoError(t, ApplyArgs(c, []string{"--=value"}, ModeMerge))
		assert.True(t, c.IsEmpty())
	})

	t.Run("AddKeepsExisting", func(t *testing.T) {
		c := NewTree()
		mustSet(t, c, "level", String("info"))
		require.NoError(t, ApplyArgs(c, []string{"--level=debug", "--new=1"}, ModeAdd))
		v, _ := c.Get(P("level"))
		assert.True(t, v.Equal(String("info")))
		assert.True(t, c.Contains(P("new")))
	})

	t.Run("MergeReportsConflict", func(t *testing.T) {
		c := NewTree()
		mustSet(t, c, "level", String("info"))
		err := ApplyArgs(c, []string{"--level.sub=1", "--other=2"}, ModeMerge)
		assert.ErrorIs(t, err, ErrIncompatibleLevel)
		// Later overrides still apply
		assert.True(t, c.Contains(P("other")))
	})
}

// TestApplyEnv tests environment overrides through an injected lookup
func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"APP_SERVER_PORT":  "9999",
		"APP_SERVER_DEBUG": "true",
		"APP_UNKNOWN":      "ignored",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	c := NewSynchronized()
	mustSet(t, c, "server.port", Int(8080))
	mustSet(t, c, "server.debug", Bool(false))
	mustSet(t, c, "server.host", String("localhost"))

	changed, err := applyEnv(c, DefaultEnvTransform("APP_"), lookup)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"server.port", "server.debug"}, changed)

	port, _ := c.Get(P("server.port"))
	assert.True(t, port.Equal(Int(9999)))
	debug, _ := c.Get(P("server.debug"))
	assert.True(t, debug.Equal(Bool(true)))
	assert.False(t, c.Contains(P("unknown")))

	t.Run("ProcessEnv", func(t *testing.T) {
		t.Setenv("CFGTREE_TEST_NAME", "from-env")
		c := NewTree()
		mustSet(t, c, "name", String("default"))
		changed, err := ApplyEnv(c, DefaultEnvTransform("CFGTREE_TEST_"))
		require.NoError(t, err)
		assert.Equal(t, []string{"name"}, changed)
		v, _ := c.Get(P("name"))
		assert.True(t, v.Equal(String("from-env")))
	})
}

func TestDefaultEnvTransform(t *testing.T) {
	assert.Equal(t, "APP_SERVER_PORT", DefaultEnvTransform("APP_")("server.port"))
	assert.Equal(t, "LOG_LEVEL", DefaultEnvTransform("")("log.level"))
}

func TestLeafPaths(t *testing.T) {
	c := NewTree()
	mustSet(t, c, "a.b", Int(1))
	mustSet(t, c, "a.c.d", Int(2))
	mustSet(t, c, "e", List(Int(1)))
	mustSet(t, c, "f", Sub(NewTree()))

	var got []string
	for _, p := range LeafPaths(c) {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{"a.b", "a.c.d", "e"}, got)
}
