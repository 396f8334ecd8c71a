package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLadder_DegradeStepsExactlyOneTier(t *testing.T) {
	ladder := GenericLadder()

	tier := ladder.Top()
	names := []string{"reduced", "fallback", "emergency", "failed"}
	for _, want := range names {
		tier = ladder.Degrade(tier)
		assert.Equal(t, want, ladder.Name(tier))
	}
}

func TestLadder_DegradeIdempotentAtBottom(t *testing.T) {
	ladder := GenericLadder()

	bottom := ladder.Bottom()
	assert.Equal(t, bottom, ladder.Degrade(bottom))
	assert.Equal(t, bottom, ladder.Degrade(ladder.Degrade(bottom)))
}

func TestLadder_PromoteIdempotentAtTop(t *testing.T) {
	ladder := GlassLadder()

	top := ladder.Top()
	assert.Equal(t, top, ladder.Promote(top))
	assert.Equal(t, top, ladder.Promote(ladder.Degrade(top)))
}

func TestLadder_Name(t *testing.T) {
	ladder := GlassLadder()

	assert.Equal(t, "full", ladder.Name(ladder.Top()))
	assert.Equal(t, "none", ladder.Name(ladder.Bottom()))
	assert.Equal(t, "unknown", ladder.Name(Tier(99)))
	assert.Equal(t, "unknown", ladder.Name(Tier(-1)))
}

func TestLadder_Len(t *testing.T) {
	assert.Equal(t, 5, GenericLadder().Len())
	assert.Equal(t, 4, GlassLadder().Len())
}
