package tape_test

import (
	"testing"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/tape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTape_ReadUnwrittenIsBlank(t *testing.T) {
	tp := tape.New("_", domain.Symbols("ab"))

	for _, i := range []int{-100, -1, 2, 3, 1000} {
		assert.Equal(t, domain.Symbol("_"), tp.Read(i), "index %d", i)
	}
	assert.Equal(t, domain.Symbol("a"), tp.Read(0))
	assert.Equal(t, domain.Symbol("b"), tp.Read(1))
}

func TestTape_WriteGrowsBothWays(t *testing.T) {
	tp := tape.New("_", domain.Symbols("ab"))

	tp.Write(4, "c")
	tp.Write(-3, "z")

	assert.Equal(t, domain.Symbol("c"), tp.Read(4))
	assert.Equal(t, domain.Symbol("z"), tp.Read(-3))
	assert.Equal(t, domain.Symbol("a"), tp.Read(0), "left growth must not shift logical indices")
	assert.Equal(t, domain.Symbol("_"), tp.Read(-2))
	assert.Equal(t, domain.Symbol("_"), tp.Read(3))

	lo, hi := tp.Bounds()
	assert.Equal(t, -3, lo)
	assert.Equal(t, 5, hi)
	assert.Equal(t, "z__ab__c", tp.Content())
}

func TestTape_DefaultBlank(t *testing.T) {
	tp := tape.New("", nil)
	assert.Equal(t, domain.DefaultBlank, tp.Blank())
	assert.Equal(t, domain.DefaultBlank, tp.Read(0))
	assert.Equal(t, "", tp.Content())
}

func TestTape_Window(t *testing.T) {
	tp := tape.New("_", domain.Symbols("abcdef"))

	tests := []struct {
		name      string
		center    int
		width     int
		wantStart int
		want      string
	}{
		{"centered", 3, 3, 2, "cde"},
		{"clipped at left bound", 0, 5, 0, "abcde"},
		{"right edge pads blanks", 5, 5, 3, "def__"},
		{"head left of storage", -2, 4, -2, "__ab"},
		{"zero width", 1, 0, 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tp.Window(tt.center, tt.width)
			assert.Equal(t, tt.wantStart, w.Start)
			assert.Equal(t, tt.want, w.String())
		})
	}
}

func TestTape_WindowIsSideEffectFree(t *testing.T) {
	tp := tape.New("_", domain.Symbols("ab"))
	_ = tp.Window(10, 7)
	_ = tp.Window(-10, 7)

	lo, hi := tp.Bounds()
	assert.Equal(t, 0, lo)
	assert.Equal(t, 2, hi)
}

func TestTape_CloneIsIndependent(t *testing.T) {
	tp := tape.New("_", domain.Symbols("ab"))
	cp := tp.Clone()
	cp.Write(0, "x")

	assert.Equal(t, domain.Symbol("a"), tp.Read(0))
	assert.Equal(t, domain.Symbol("x"), cp.Read(0))
}

func TestTape_FromCellsRoundTrip(t *testing.T) {
	tp := tape.New("_", domain.Symbols("ab"))
	tp.Write(-2, "z")

	restored := tape.FromCells(tp.Blank(), tp.Offset(), tp.Cells())
	require.True(t, tp.Equal(restored))
	assert.Equal(t, domain.Symbol("z"), restored.Read(-2))
}

func TestTape_FingerprintIgnoresBlankPadding(t *testing.T) {
	a := tape.New("_", domain.Symbols("ab"))
	b := tape.New("_", domain.Symbols("ab"))
	b.Write(5, "_")
	b.Write(-4, "_")

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Write(1, "c")
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, "", tape.New("_", nil).Fingerprint())
}
