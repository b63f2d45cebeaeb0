package eksprovisioner

import (
	"github.com/devantler-tech/ekscli/pkg/k8s"
	awsprovider "github.com/devantler-tech/ekscli/pkg/svc/provider/aws"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/sirupsen/logrus"
)

// CreateProvisioner creates a Provisioner backed by the AWS service clients of one region.
//
// Parameters:
//   - clients: AWS service clients of the cluster region
//   - store: layered configuration store
//   - nodeGroups: nodegroup orchestrator used during teardown
//   - kubeClients: Kubernetes client factory for post-create steps and teardown
//   - opts: remaining settings; AWS-backed collaborators already set in opts are kept
func CreateProvisioner(
	clients *awsprovider.Clients,
	store *state.Store,
	nodeGroups NodeGroups,
	kubeClients k8s.ClientFactory,
	opts Options,
) *Provisioner {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
		opts.Logger = logger
	}

	opts.Store = store
	opts.NodeGroups = nodeGroups
	opts.Clients = kubeClients

	if opts.Stacks == nil {
		opts.Stacks = clients.CloudFormation
	}

	if opts.Roles == nil {
		opts.Roles = awsprovider.NewIAM(clients.IAM, logger)
	}

	if opts.ControlPlane == nil {
		opts.ControlPlane = awsprovider.NewControlPlane(clients.EKS, opts.PollInterval, logger)
	}

	if opts.Network == nil {
		opts.Network = awsprovider.NewNetwork(clients.EC2, logger)
	}

	if opts.DNS == nil {
		opts.DNS = awsprovider.NewDNS(clients.Route53, logger)
	}

	if opts.Provider == nil {
		opts.Provider = awsprovider.NewProvider(clients.EKS, clients.EC2)
	}

	return NewProvisioner(opts)
}
