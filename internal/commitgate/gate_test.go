package commitgate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/renderguard/renderguard/internal/commitgate"
	"github.com/renderguard/renderguard/internal/platform"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name  string
		state platform.EnvironmentState
		want  commitgate.Decision
	}{
		{
			name:  "idle environment is safe",
			state: platform.EnvironmentState{},
			want:  commitgate.Safe,
		},
		{
			name:  "saved state permits only lossy commits",
			state: platform.EnvironmentState{StateSaved: true},
			want:  commitgate.AllowLossyCommit,
		},
		{
			name:  "destroyed scope refuses mutation",
			state: platform.EnvironmentState{Destroyed: true},
			want:  commitgate.Unsafe,
		},
		{
			name:  "finishing scope refuses mutation",
			state: platform.EnvironmentState{Finishing: true},
			want:  commitgate.Unsafe,
		},
		{
			name:  "destroyed wins over saved state",
			state: platform.EnvironmentState{Destroyed: true, StateSaved: true},
			want:  commitgate.Unsafe,
		},
	}

	gate := commitgate.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Decide(tt.state))
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "safe", commitgate.Safe.String())
	assert.Equal(t, "allow_lossy_commit", commitgate.AllowLossyCommit.String())
	assert.Equal(t, "unsafe", commitgate.Unsafe.String())
}
