package http

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func allocs(str string) int {
	return int(testing.Benchmark(func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = Escape(str)
		}
	}).AllocsPerOp())
}

func TestEscape(t *testing.T) {
	t.Run("normal path", func(t *testing.T) {
		require.Equal(t, "/", Escape("/"))
		require.Equal(t, "/hello-world?a=b", Escape("/hello-world?a=b"))
		require.Zero(t, allocs("/hello-world"))
	})

	t.Run("with nonprintable", func(t *testing.T) {
		require.Equal(t, `/\x00\n\x7f`, Escape("/\x00\n\x7f"))
		require.Equal(t, `a\r\tb`, Escape("a\r\tb"))
	})

	t.Run("unicode", func(t *testing.T) {
		require.Equal(t, `/\xd0\xbf`, Escape("/п"))
	})
}
