package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileLiteralMatchesVerbatim(t *testing.T) {
	p, err := Compile("pattern", Literal, Options{})
	require.NoError(t, err)
	spans := p.Algo.Search([]byte("two pattern three"))
	require.Len(t, spans, 1)
	assert.Equal(t, 4, spans[0].Start)
}

func TestCompileEmptyLiteralMatchesNothing(t *testing.T) {
	p, err := Compile("", Literal, Options{})
	require.NoError(t, err)
	assert.Nil(t, p.Algo.Search([]byte("anything")))
}

func TestCompileWordWrapsBoundaries(t *testing.T) {
	p, err := Compile("cat", Word, Options{})
	require.NoError(t, err)

	assert.Len(t, p.Algo.Search([]byte("a cat sat")), 1)
	assert.Nil(t, p.Algo.Search([]byte("category")))
}

func TestCompileRegexInvalid(t *testing.T) {
	_, err := Compile("(unclosed", Regex, Options{})
	assert.Error(t, err)
}

func TestPrecompileUsesRegexMode(t *testing.T) {
	p, err := Precompile(`^fn \w+`)
	require.NoError(t, err)
	assert.Equal(t, Regex, p.Mode)
}

func TestCacheReturnsSameCompiledPattern(t *testing.T) {
	c := NewCache(4)
	p1, err := c.Compile("needle", Literal, Options{})
	require.NoError(t, err)
	p2, err := c.Compile("needle", Literal, Options{})
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Equal(t, 1, c.Len())
}

func TestCacheDistinguishesModeForSameText(t *testing.T) {
	c := NewCache(4)
	lit, err := c.Compile("foo", Literal, Options{})
	require.NoError(t, err)
	word, err := c.Compile("foo", Word, Options{})
	require.NoError(t, err)
	assert.NotSame(t, lit, word)
	assert.Equal(t, 2, c.Len())
}

func TestCacheConcurrentCompileSameKey(t *testing.T) {
	c := NewCache(4)
	done := make(chan *Pattern, 8)
	for i := 0; i < 8; i++ {
		go func() {
			p, err := c.Compile("concurrent", Literal, Options{})
			require.NoError(t, err)
			done <- p
		}()
	}
	first := <-done
	for i := 1; i < 8; i++ {
		assert.Same(t, first, <-done)
	}
}
