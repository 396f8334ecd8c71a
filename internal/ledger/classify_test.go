package ledger_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/renderguard/renderguard/internal/ledger"
	"github.com/renderguard/renderguard/internal/platform"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ledger.Classification
	}{
		{
			name: "nil error",
			err:  nil,
			want: ledger.ClassUnknown,
		},
		{
			name: "typed resource error",
			err:  &platform.ResourceError{Name: "visual.a", Err: errors.New("not found")},
			want: ledger.ClassResourceNotFound,
		},
		{
			name: "wrapped resource error",
			err:  fmt.Errorf("render pass: %w", &platform.ResourceError{Name: "visual.a", Err: errors.New("not found")}),
			want: ledger.ClassResourceNotFound,
		},
		{
			name: "scope destroyed",
			err:  fmt.Errorf("binding: %w", platform.ErrScopeDestroyed),
			want: ledger.ClassFragmentLifecycle,
		},
		{
			name: "not attached",
			err:  platform.ErrNotAttached,
			want: ledger.ClassFragmentLifecycle,
		},
		{
			name: "typed component error",
			err:  &platform.ComponentError{ComponentID: "card.summary", Err: errors.New("inflate failed")},
			want: ledger.ClassCustomComponent,
		},
		{
			name: "out of memory message",
			err:  errors.New("bitmap decode: out of memory"),
			want: ledger.ClassMemory,
		},
		{
			name: "allocation failed message",
			err:  errors.New("texture allocation failed"),
			want: ledger.ClassMemory,
		},
		{
			name: "drawable message heuristic",
			err:  errors.New("missing drawable asset"),
			want: ledger.ClassResourceNotFound,
		},
		{
			name: "detached message heuristic",
			err:  errors.New("view detached from window"),
			want: ledger.ClassFragmentLifecycle,
		},
		{
			name: "glass domain keyword",
			err:  errors.New("blur shader compile error"),
			want: ledger.ClassDomainSpecific,
		},
		{
			name: "translucency domain keyword",
			err:  errors.New("translucency pass unsupported"),
			want: ledger.ClassDomainSpecific,
		},
		{
			name: "anything else",
			err:  errors.New("boom"),
			want: ledger.ClassUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ledger.Classify(tt.err))
		})
	}
}
