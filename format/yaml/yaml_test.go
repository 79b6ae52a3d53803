// FILE: lixenwraith/cfgtree/format/yaml/yaml_test.go
package yaml

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/cfgtree"
	"github.com/lixenwraith/cfgtree/textio"
)

func get(t *testing.T, c cfgtree.Config, path string) cfgtree.Value {
	t.Helper()
	v, ok := c.Get(cfgtree.P(path))
	require.True(t, ok, "missing %s", path)
	return v
}

func TestParse(t *testing.T) {
	src := `name: app
port: 8080
ratio: 0.25
huge: 92233720368547758070
enabled: true
nothing: null
tilde: ~
quoted: "123"
since: 2001-12-14
tags: [a, b]
list:
  - 1
  - x: 2
server:
  host: localhost
  tls:
    enabled: false
empty: {}
`
	c, err := cfgtree.ParseString(New(), src)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "port", "ratio", "huge", "enabled", "nothing", "tilde", "quoted", "since", "tags", "list", "server", "empty"}, cfgtree.Keys(c))
	assert.True(t, get(t, c, "name").Equal(cfgtree.String("app")))
	assert.True(t, get(t, c, "port").Equal(cfgtree.Int(8080)))
	assert.True(t, get(t, c, "ratio").Equal(cfgtree.Float(0.25)))
	assert.Equal(t, cfgtree.KindFloat, get(t, c, "huge").Kind())
	assert.True(t, get(t, c, "enabled").Equal(cfgtree.Bool(true)))
	assert.True(t, get(t, c, "nothing").IsNull())
	assert.True(t, get(t, c, "tilde").IsNull())
	assert.True(t, get(t, c, "quoted").Equal(cfgtree.String("123")))
	assert.True(t, get(t, c, "since").Equal(cfgtree.String("2001-12-14")))
	assert.True(t, get(t, c, "tags").Equal(cfgtree.List(cfgtree.String("a"), cfgtree.String("b"))))
	assert.True(t, get(t, c, "server.tls.enabled").Equal(cfgtree.Bool(false)))
	assert.Equal(t, cfgtree.KindConfig, get(t, c, "empty").Kind())

	list := get(t, c, "list")
	require.Equal(t, 2, list.Len())
	item, ok := list.Index(1).AsConfig()
	require.True(t, ok)
	x, _ := item.Get(cfgtree.P("x"))
	assert.True(t, x.Equal(cfgtree.Int(2)))
	assert.Equal(t, Info, item.Format())
}

func TestParseComments(t *testing.T) {
	src := `name: app
# Port to listen on
# on all interfaces
port: 8080
debug: true # enable debug
server:
  host: localhost
  # Seconds
  timeout: 30
`
	c, err := cfgtree.ParseString(New(), src)
	require.NoError(t, err)

	comment, ok := c.GetComment(cfgtree.P("port"))
	require.True(t, ok)
	assert.Equal(t, "Port to listen on\non all interfaces", comment)

	comment, ok = c.GetComment(cfgtree.P("debug"))
	require.True(t, ok)
	assert.Equal(t, "enable debug", comment)

	comment, ok = c.GetComment(cfgtree.P("server.timeout"))
	require.True(t, ok)
	assert.Equal(t, "Seconds", comment)

	assert.False(t, c.ContainsComment(cfgtree.P("name")))
}

func TestParseAliases(t *testing.T) {
	src := `base: &base
  a: 1
  b: 2
derived:
  <<: *base
  b: 3
value: &v 5
copy: *v
`
	c, err := cfgtree.ParseString(New(), src)
	require.NoError(t, err)

	assert.True(t, get(t, c, "derived.a").Equal(cfgtree.Int(1)))
	assert.True(t, get(t, c, "derived.b").Equal(cfgtree.Int(3)))
	assert.True(t, get(t, c, "copy").Equal(cfgtree.Int(5)))
	assert.True(t, get(t, c, "base.b").Equal(cfgtree.Int(2)))
}

func TestParseEmpty(t *testing.T) {
	for _, src := range []string{"", "# only a comment\n", "~\n"} {
		c, err := cfgtree.ParseString(New(), src)
		require.NoError(t, err, "source %q", src)
		assert.True(t, c.IsEmpty())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"RootSequence", "- a\n- b\n"},
		{"RootScalar", "just text\n"},
		{"BadIndent", "a:\n  b: 1\n c: 2\n"},
		{"Unclosed", "a: [1, 2\n"},
		{"Tab", "a:\n\tb: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cfgtree.ParseString(New(), tt.src)
			require.Error(t, err)
			var perr *textio.ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}

	_, err := cfgtree.ParseString(New(), "a: 1\nb: [1\nc: 2\n")
	var perr *textio.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Greater(t, perr.Line, 0)
}

func TestParseModes(t *testing.T) {
	seed := func() cfgtree.Config {
		c := cfgtree.NewStamped()
		c.Set(cfgtree.P("a"), cfgtree.Int(1))
		c.Set(cfgtree.P("keep"), cfgtree.Bool(true))
		return c
	}
	src := []byte("a: 2\nb:\n  c: 3\n")

	c := seed()
	require.NoError(t, cfgtree.ParseBytes(New(), src, c, cfgtree.ModeReplace))
	assert.Equal(t, []string{"a", "b"}, cfgtree.Keys(c))

	c = seed()
	require.NoError(t, cfgtree.ParseBytes(New(), src, c, cfgtree.ModeMerge))
	assert.True(t, c.Contains(cfgtree.P("keep")))
	assert.True(t, get(t, c, "a").Equal(cfgtree.Int(2)))

	c = seed()
	require.NoError(t, cfgtree.ParseBytes(New(), src, c, cfgtree.ModeAdd))
	assert.True(t, get(t, c, "a").Equal(cfgtree.Int(1)))
	assert.True(t, get(t, c, "b.c").Equal(cfgtree.Int(3)))
}

func TestWrite(t *testing.T) {
	c := cfgtree.NewTree()
	c.Set(cfgtree.P("name"), cfgtree.String("app"))
	c.Set(cfgtree.P("port"), cfgtree.Int(8080))
	c.Set(cfgtree.P("server.host"), cfgtree.String("h"))
	c.Set(cfgtree.P("server.debug"), cfgtree.Bool(false))

	out, err := cfgtree.WriteString(New(), c)
	require.NoError(t, err)
	assert.Equal(t, "name: app\nport: 8080\nserver:\n  host: h\n  debug: false\n", out)
}

func TestWriteQuoting(t *testing.T) {
	c := cfgtree.NewTree()
	c.Set(cfgtree.P("b"), cfgtree.String("true"))
	c.Set(cfgtree.P("n"), cfgtree.String("42"))
	c.Set(cfgtree.P("z"), cfgtree.String("null"))

	out, err := cfgtree.WriteString(New(), c)
	require.NoError(t, err)
	assert.Contains(t, out, `b: "true"`)
	assert.Contains(t, out, `n: "42"`)
	assert.Contains(t, out, `z: "null"`)

	back, err := cfgtree.ParseString(New(), out)
	require.NoError(t, err)
	assert.True(t, cfgtree.Equal(c, back))
}

func TestWriteComments(t *testing.T) {
	c := cfgtree.NewTree()
	c.Set(cfgtree.P("a"), cfgtree.Int(1))
	c.Set(cfgtree.P("port"), cfgtree.Int(8080))
	c.SetComment(cfgtree.P("port"), "Port to listen on")

	out, err := cfgtree.WriteString(New(), c)
	require.NoError(t, err)
	assert.Contains(t, out, "# Port to listen on\nport: 8080\n")

	back, err := cfgtree.ParseString(New(), out)
	require.NoError(t, err)
	comment, ok := back.GetComment(cfgtree.P("port"))
	require.True(t, ok)
	assert.Equal(t, "Port to listen on", comment)
}

func TestRoundTrip(t *testing.T) {
	src := cfgtree.NewTree()
	src.Set(cfgtree.P("s"), cfgtree.String("multi\nline"))
	src.Set(cfgtree.P("f"), cfgtree.Float(3))
	src.Set(cfgtree.P("nan"), cfgtree.Float(math.NaN()))
	src.Set(cfgtree.P("inf"), cfgtree.Float(math.Inf(-1)))
	src.Set(cfgtree.P("null"), cfgtree.Null())
	src.Set(cfgtree.P("empty.list"), cfgtree.List())
	src.Set(cfgtree.P("empty.map"), cfgtree.Sub(cfgtree.NewTree()))
	inner := cfgtree.NewTree()
	inner.Set(cfgtree.P("k"), cfgtree.String("v"))
	src.Set(cfgtree.P("items"), cfgtree.List(cfgtree.Int(1), cfgtree.Sub(inner), cfgtree.List(cfgtree.Bool(true))))

	data, err := cfgtree.WriteBytes(New(), src)
	require.NoError(t, err)

	dst := cfgtree.NewSynchronized()
	require.NoError(t, cfgtree.ParseBytes(New(), data, dst, cfgtree.ModeReplace))
	assert.True(t, cfgtree.Equal(src, dst), "written:\n%s", data)
	assert.Equal(t, cfgtree.Keys(src), cfgtree.Keys(dst))
}

func TestParseIntoMalformed(t *testing.T) {
	for _, mode := range []cfgtree.ParsingMode{cfgtree.ModeReplace, cfgtree.ModeMerge} {
		t.Run(mode.String(), func(t *testing.T) {
			c := cfgtree.NewSynchronized()
			c.Set(cfgtree.P("keep"), cfgtree.Int(7))

			// The root is a sequence, known only after the document is read
			err := cfgtree.ParseBytes(New(), []byte("- a\n- b\n"), c, mode)
			require.Error(t, err)
			assert.Equal(t, []string{"keep"}, cfgtree.Keys(c))

			err = cfgtree.ParseBytes(New(), []byte("a: 1\nb: [1\nc: 2\n"), c, mode)
			require.Error(t, err)
			assert.Equal(t, []string{"keep"}, cfgtree.Keys(c))
		})
	}
}

func TestParseIntoKeepsComments(t *testing.T) {
	c := cfgtree.NewStamped()
	c.Set(cfgtree.P("old"), cfgtree.Int(1))
	src := []byte("a: 1\n# port to bind\nport: 80\n")
	require.NoError(t, cfgtree.ParseBytes(New(), src, c, cfgtree.ModeReplace))

	assert.Equal(t, []string{"a", "port"}, cfgtree.Keys(c))
	cm, ok := c.GetComment(cfgtree.P("port"))
	require.True(t, ok)
	assert.Equal(t, "port to bind", cm)
}
