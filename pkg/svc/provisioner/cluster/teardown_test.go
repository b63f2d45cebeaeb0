package clusterprovisioner_test

import (
	"testing"

	clusterprovisioner "github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ pflag.Value = (*clusterprovisioner.TeardownPolicy)(nil)

func TestParseTeardownPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  clusterprovisioner.TeardownPolicy
	}{
		{input: "", want: clusterprovisioner.TeardownContinue},
		{input: "continue", want: clusterprovisioner.TeardownContinue},
		{input: " STOP ", want: clusterprovisioner.TeardownStop},
	}

	for _, tc := range tests {
		t.Run("parse_"+tc.input, func(t *testing.T) {
			t.Parallel()

			got, err := clusterprovisioner.ParseTeardownPolicy(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := clusterprovisioner.ParseTeardownPolicy("rollback")
	require.ErrorIs(t, err, clusterprovisioner.ErrInvalidTeardownPolicy)
}

func TestTeardownPolicyFlag(t *testing.T) {
	t.Parallel()

	policy := clusterprovisioner.TeardownContinue

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Var(&policy, "teardown-policy", "")

	require.NoError(t, flags.Parse([]string{"--teardown-policy", "stop"}))
	assert.Equal(t, clusterprovisioner.TeardownStop, policy)
	assert.Equal(t, "stop", policy.String())

	require.Error(t, flags.Parse([]string{"--teardown-policy", "bogus"}))
	assert.Len(t, clusterprovisioner.ValidTeardownPolicies(), 2)
}
