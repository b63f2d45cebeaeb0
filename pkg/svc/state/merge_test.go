package state_test

import (
	"testing"

	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/stretchr/testify/assert"
)

func TestDeepMerge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    state.Document
		overlay state.Document
		want    state.Document
	}{
		{
			name:    "adds new keys and keeps absent ones",
			base:    state.Document{"vpc_id": "vpc-1"},
			overlay: state.Document{"nodes_sg_id": "sg-2"},
			want:    state.Document{"vpc_id": "vpc-1", "nodes_sg_id": "sg-2"},
		},
		{
			name:    "overwrites scalars",
			base:    state.Document{"vpc_id": "vpc-1"},
			overlay: state.Document{"vpc_id": "vpc-9"},
			want:    state.Document{"vpc_id": "vpc-9"},
		},
		{
			name:    "replaces arrays wholesale",
			base:    state.Document{"subnets": []any{"a", "b", "c"}},
			overlay: state.Document{"subnets": []any{"d"}},
			want:    state.Document{"subnets": []any{"d"}},
		},
		{
			name: "merges nested objects recursively",
			base: state.Document{"groups": state.Document{
				"Workers": state.Document{"min": 1.0, "max": 3.0},
			}},
			overlay: state.Document{"groups": state.Document{
				"Workers": state.Document{"max": 5.0},
				"GPU":     state.Document{"instance_type": "p3.2xlarge"},
			}},
			want: state.Document{"groups": state.Document{
				"Workers": state.Document{"min": 1.0, "max": 5.0},
				"GPU":     state.Document{"instance_type": "p3.2xlarge"},
			}},
		},
		{
			name:    "object replaces scalar",
			base:    state.Document{"users": "none"},
			overlay: state.Document{"users": state.Document{"arn": "x"}},
			want:    state.Document{"users": state.Document{"arn": "x"}},
		},
		{
			name:    "nil base",
			base:    nil,
			overlay: state.Document{"a": 1.0},
			want:    state.Document{"a": 1.0},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.want, state.DeepMerge(test.base, test.overlay))
		})
	}
}

func TestDeepMerge_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	base := state.Document{"groups": state.Document{"Workers": state.Document{"min": 1.0}}}
	overlay := state.Document{"groups": state.Document{"Workers": state.Document{"min": 2.0}}}

	merged := state.DeepMerge(base, overlay)
	merged["groups"].(state.Document)["Workers"].(state.Document)["max"] = 4.0

	assert.Equal(t, state.Document{"groups": state.Document{"Workers": state.Document{"min": 1.0}}}, base)
	assert.Equal(t, state.Document{"groups": state.Document{"Workers": state.Document{"min": 2.0}}}, overlay)
}
