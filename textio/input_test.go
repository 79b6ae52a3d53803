// FILE: lixenwraith/cfgtree/textio/input_test.go
package textio

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inputKinds builds every Input implementation over the same text
var inputKinds = []struct {
	name string
	open func(s string) Input
}{
	{"Array", func(s string) Input { return NewStringInput(s) }},
	{"Charray", func(s string) Input { return NewCharrayInput(CharrayOf("##" + s + "##").Sub(2, len([]rune(s))+2)) }},
	{"Reader", func(s string) Input { return NewReaderInput(strings.NewReader(s)) }},
	{"OneByteReader", func(s string) Input { return NewReaderInput(iotest.OneByteReader(strings.NewReader(s))) }},
}

func forEachInput(t *testing.T, fn func(t *testing.T, open func(string) Input)) {
	for _, kind := range inputKinds {
		t.Run(kind.name, func(t *testing.T) {
			fn(t, kind.open)
		})
	}
}

type position struct{ line, col int }

func pos(in Input) position { return position{in.Line(), in.Column()} }

// TestInputPositionTracking tests line and column after every read
func TestInputPositionTracking(t *testing.T) {
	forEachInput(t, func(t *testing.T, open func(string) Input) {
		in := open("ab\ncd\nef")
		expected := []position{{1, 1}, {1, 2}, {2, 0}, {2, 1}, {2, 2}, {3, 0}, {3, 1}, {3, 2}}

		assert.Equal(t, position{1, 0}, pos(in))
		for i, want := range expected {
			r := in.Read()
			require.NotEqual(t, EOF, r, "read %d", i)
			assert.Equal(t, want, pos(in), "after read %d (%q)", i, r)
		}
		assert.Equal(t, EOF, in.Read())
		assert.Equal(t, position{3, 2}, pos(in))
		assert.Equal(t, EOF, in.Read())
		assert.NoError(t, in.Err())
	})
}

// TestInputPushBack tests that push back restores the previous position
func TestInputPushBack(t *testing.T) {
	forEachInput(t, func(t *testing.T, open func(string) Input) {
		t.Run("AcrossNewline", func(t *testing.T) {
			in := open("ab\ncd")
			in.Read()
			in.Read()
			nl := in.Read()
			require.Equal(t, '\n', nl)
			assert.Equal(t, position{2, 0}, pos(in))

			in.PushBack(nl)
			assert.Equal(t, position{1, 2}, pos(in))
			assert.Equal(t, '\n', in.Read())
			assert.Equal(t, position{2, 0}, pos(in))
			assert.Equal(t, 'c', in.Read())
		})

		t.Run("MultipleNewlines", func(t *testing.T) {
			in := open("abc\nd\n\nx")
			for in.Read() != 'x' {
			}
			assert.Equal(t, position{4, 1}, pos(in))
			in.PushBack('x')
			in.PushBack('\n')
			assert.Equal(t, position{3, 0}, pos(in))
			in.PushBack('\n')
			assert.Equal(t, position{2, 1}, pos(in))
			in.PushBack('d')
			in.PushBack('\n')
			assert.Equal(t, position{1, 3}, pos(in))
			assert.Equal(t, "\nd\n\nx", in.ReadAtMost(10).String())
		})

		t.Run("ForeignRune", func(t *testing.T) {
			in := open("bc")
			in.PushBack('a')
			assert.Equal(t, "abc", in.ReadAtMost(3).String())
		})

		t.Run("EOFIgnored", func(t *testing.T) {
			in := open("a")
			in.PushBack(EOF)
			assert.Equal(t, 'a', in.Read())
		})
	})
}

// TestInputPeek tests lookahead without consumption
func TestInputPeek(t *testing.T) {
	forEachInput(t, func(t *testing.T, open func(string) Input) {
		t.Run("PeekDoesNotMove", func(t *testing.T) {
			in := open("x\ny")
			assert.Equal(t, 'x', in.Peek())
			assert.Equal(t, 'x', in.Peek())
			assert.Equal(t, '\n', in.PeekAfter(1))
			assert.Equal(t, 'y', in.PeekAfter(2))
			assert.Equal(t, EOF, in.PeekAfter(3))
			assert.Equal(t, position{1, 0}, pos(in))
			assert.Equal(t, 'x', in.Read())
			assert.Equal(t, '\n', in.Peek())
		})

		t.Run("SkipPeeksCommitsPosition", func(t *testing.T) {
			in := open("ab\ncd")
			in.PeekAfter(3)
			in.SkipPeeks()
			assert.Equal(t, position{2, 1}, pos(in))
			assert.Equal(t, 'd', in.Read())
		})

		t.Run("ReadPeeks", func(t *testing.T) {
			in := open("true,")
			require.Equal(t, 'e', in.PeekAfter(3))
			assert.Equal(t, "true", in.ReadPeeks().String())
			assert.Equal(t, position{1, 4}, pos(in))
			assert.Equal(t, ',', in.Read())
		})

		t.Run("PeekAfterEOFThenReadAll", func(t *testing.T) {
			in := open("ab")
			assert.Equal(t, EOF, in.PeekAfter(5))
			assert.Equal(t, "ab", in.ReadAtMost(5).String())
			assert.Equal(t, EOF, in.Peek())
		})
	})
}

// TestInputScanners tests that bulk scanners stop before the stop rune
func TestInputScanners(t *testing.T) {
	forEachInput(t, func(t *testing.T, open func(string) Input) {
		t.Run("WhileRange", func(t *testing.T) {
			in := open("12345abc")
			assert.Equal(t, "12345", in.ReadWhileRange('0', '9').String())
			assert.Equal(t, 'a', in.Read())
			assert.Equal(t, "", in.ReadWhileRange('0', '9').String())
		})

		t.Run("UntilRange", func(t *testing.T) {
			in := open("abc123")
			assert.Equal(t, "abc", in.ReadUntilRange('0', '9').String())
			assert.Equal(t, '1', in.Peek())
		})

		t.Run("WhileAny", func(t *testing.T) {
			in := open("  \t\nkey")
			assert.Equal(t, "  \t\n", in.ReadWhileAny(" \t\n").String())
			assert.Equal(t, position{2, 0}, pos(in))
			assert.Equal(t, 'k', in.Peek())
		})

		t.Run("UntilAny", func(t *testing.T) {
			in := open("value, next")
			assert.Equal(t, "value", in.ReadUntilAny(",}]").String())
			assert.Equal(t, ',', in.Read())
			assert.Equal(t, " next", in.ReadUntilAny(",}]").String())
			assert.Equal(t, EOF, in.Peek())
		})

		t.Run("ScanAfterPeek", func(t *testing.T) {
			in := open("abc;")
			in.PeekAfter(1)
			assert.Equal(t, "abc", in.ReadUntilAny(";").String())
			assert.Equal(t, ';', in.Read())
		})

		t.Run("SkipWhitespace", func(t *testing.T) {
			in := open(" \r\n\t x")
			assert.Equal(t, 'x', in.SkipWhitespace())
			assert.Equal(t, 'x', in.Read())
			assert.Equal(t, EOF, in.SkipWhitespace())
		})
	})
}

// TestInputCounted tests read and skip with counts
func TestInputCounted(t *testing.T) {
	forEachInput(t, func(t *testing.T, open func(string) Input) {
		t.Run("ReadAtMost", func(t *testing.T) {
			in := open("abcdef")
			assert.Equal(t, "abc", in.ReadAtMost(3).String())
			assert.Equal(t, "def", in.ReadAtMost(30).String())
			assert.True(t, in.ReadAtMost(3).IsEmpty())
		})

		t.Run("SkipAtMost", func(t *testing.T) {
			in := open("abcdef")
			assert.Equal(t, 4, in.SkipAtMost(4))
			assert.Equal(t, position{1, 4}, pos(in))
			assert.Equal(t, 2, in.SkipAtMost(4))
		})

		t.Run("ReadExactly", func(t *testing.T) {
			in := open("abcd")
			got, err := in.ReadExactly(2)
			require.NoError(t, err)
			assert.Equal(t, "ab", got.String())

			_, err = in.ReadExactly(3)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotEnoughData))

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, 1, perr.Line)
		})
	})
}

// TestArrayInputReadExactlyKeepsInput tests that a failed exact read consumes nothing
func TestArrayInputReadExactlyKeepsInput(t *testing.T) {
	in := NewStringInput("abc")
	in.Read()
	_, err := in.ReadExactly(5)
	require.ErrorIs(t, err, ErrNotEnoughData)
	assert.Equal(t, "bc", in.ReadAtMost(5).String())
}

// TestArrayInputSharesSource tests the zero-copy scanner path
func TestArrayInputSharesSource(t *testing.T) {
	src := CharrayOf("name=value")
	in := NewCharrayInput(src)
	key := in.ReadUntilAny("=")
	key.Set(0, 'N')
	assert.Equal(t, "Name=value", src.String())
}

// TestReaderInputError tests that source errors end input and are reported
func TestReaderInputError(t *testing.T) {
	boom := errors.New("boom")
	in := NewReaderInput(iotest.TimeoutReader(bytes.NewReader([]byte("abcdef"))))
	got := in.ReadAtMost(100)
	assert.NotEmpty(t, got.String())
	assert.Equal(t, EOF, in.Read())
	assert.ErrorIs(t, in.Err(), iotest.ErrTimeout)

	in = NewReaderInput(iotest.ErrReader(boom))
	assert.Equal(t, EOF, in.Read())
	assert.ErrorIs(t, in.Err(), boom)
}

func TestReaderInputUnicode(t *testing.T) {
	in := NewReaderInput(strings.NewReader("héllo\nwörld"))
	assert.Equal(t, "héllo", in.ReadUntilAny("\n").String())
	assert.Equal(t, position{1, 5}, pos(in))
}

// TestOutput tests writer and builder outputs
func TestOutput(t *testing.T) {
	t.Run("Writer", func(t *testing.T) {
		var buf bytes.Buffer
		out := NewWriterOutput(&buf)
		out.WriteString("a=")
		out.WriteRune('é')
		out.WriteCharray(CharrayOf("xyz").Sub(1, 2))
		require.NoError(t, out.Flush())
		assert.Equal(t, "a=éy", buf.String())
	})

	t.Run("WriterStickyError", func(t *testing.T) {
		w := &failingWriter{}
		out := NewWriterOutput(w)
		out.WriteString(strings.Repeat("x", 8192))
		out.WriteString("more")
		assert.Error(t, out.Flush())
		assert.Error(t, out.Err())
		assert.Equal(t, 1, w.calls)
	})

	t.Run("Builder", func(t *testing.T) {
		b := NewBuilder(4)
		out := NewBuilderOutput(b)
		out.WriteString("ab")
		out.WriteRune('c')
		out.WriteCharray(CharrayOf("de"))
		assert.NoError(t, out.Flush())
		assert.Equal(t, "abcde", b.String())
	})
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("disk full")
}

func TestParseErrorFormat(t *testing.T) {
	in := NewStringInput("ab\nc")
	in.SkipAtMost(4)
	err := UnexpectedChar(in, 'c', "a digit")
	err.Source = "app.json"
	assert.Equal(t, "app.json:2:1: found 'c', expected a digit: unexpected character", err.Error())
	assert.ErrorIs(t, err, ErrUnexpectedChar)

	eof := UnexpectedChar(in, EOF, "'}'")
	assert.ErrorIs(t, eof, ErrUnexpectedEOF)
}
