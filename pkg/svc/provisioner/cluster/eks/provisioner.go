package eksprovisioner

import (
	"context"
	"time"

	"github.com/devantler-tech/ekscli/pkg/k8s"
	"github.com/devantler-tech/ekscli/pkg/k8s/readiness"
	"github.com/devantler-tech/ekscli/pkg/svc/installer"
	"github.com/devantler-tech/ekscli/pkg/svc/provider"
	awsprovider "github.com/devantler-tech/ekscli/pkg/svc/provider/aws"
	clusterprovisioner "github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/sirupsen/logrus"
)

// ClusterRoles provisions the EKS service role of a cluster.
type ClusterRoles interface {
	EnsureClusterRole(ctx context.Context, cluster string) (string, error)
}

// ControlPlanes manages EKS control planes.
type ControlPlanes interface {
	Create(ctx context.Context, spec awsprovider.ClusterSpec) (bool, error)
	Describe(ctx context.Context, name string) (*awsprovider.ClusterInfo, error)
	AwaitActive(ctx context.Context, name string) (*awsprovider.ClusterInfo, error)
	Delete(ctx context.Context, name string) error
	AwaitDeleted(ctx context.Context, name string) error
}

// Network manages cluster security groups and VPC peering.
type Network interface {
	EnsureClusterSecurityGroup(ctx context.Context, cluster, vpcID string, openPorts []int) (string, error)
	DeleteSecurityGroup(ctx context.Context, groupID string) error
	PeerVPCs(ctx context.Context, req awsprovider.PeeringRequest) (string, error)
	DeletePeering(ctx context.Context, peeringID string) error
}

// AliasRecords upserts DNS alias records.
type AliasRecords interface {
	UpsertAlias(ctx context.Context, record awsprovider.AliasRecord) error
}

// NodeGroups lists and deletes the nodegroups of a cluster.
type NodeGroups interface {
	GroupNames(ctx context.Context, cluster string, names ...string) ([]string, error)
	Delete(ctx context.Context, cluster, group string) (*stack.Deletion, error)
}

// CreateOptions tunes cluster creation.
type CreateOptions struct {
	// Overrides are written into the config layer before provisioning. Zero fields are ignored.
	Overrides state.BootstrapLayer
	// AddOns selects the day-1 add-ons installed once the API answers.
	AddOns installer.Options
	// Wait blocks until the API server answers service listings.
	Wait      bool
	Readiness readiness.ServicesOptions
	// NetworkSG creates the cluster-wide network security group.
	NetworkSG bool
}

// Options holds the collaborators of a Provisioner.
type Options struct {
	Store        *state.Store
	Stacks       stack.API
	Roles        ClusterRoles
	ControlPlane ControlPlanes
	Network      Network
	DNS          AliasRecords
	NodeGroups   NodeGroups
	Clients      k8s.ClientFactory
	Provider     provider.Provider
	Waiter       *stack.Waiter

	Kubeconfig   string
	Profile      string
	Teardown     clusterprovisioner.TeardownPolicy
	PollInterval time.Duration
	Create       CreateOptions
	Logger       logrus.FieldLogger
}

// Provisioner implements clusterprovisioner.ClusterProvisioner for EKS.
type Provisioner struct {
	store        *state.Store
	stacks       stack.API
	roles        ClusterRoles
	controlPlane ControlPlanes
	network      Network
	dns          AliasRecords
	nodeGroups   NodeGroups
	clients      k8s.ClientFactory
	provider     provider.Provider
	waiter       *stack.Waiter

	kubeconfig   string
	profile      string
	teardown     clusterprovisioner.TeardownPolicy
	pollInterval time.Duration
	create       CreateOptions
	logger       logrus.FieldLogger
}

var (
	_ clusterprovisioner.ClusterProvisioner = (*Provisioner)(nil)
	_ clusterprovisioner.ProviderAware      = (*Provisioner)(nil)
)

// NewProvisioner constructs a Provisioner with explicit dependencies.
func NewProvisioner(opts Options) *Provisioner {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = stack.DefaultPollInterval
	}

	waiter := opts.Waiter
	if waiter == nil {
		waiter = stack.NewWaiter(pollInterval, logger)
	}

	teardown := opts.Teardown
	if teardown == "" {
		teardown = clusterprovisioner.TeardownContinue
	}

	kubeconfig := opts.Kubeconfig
	if kubeconfig == "" {
		kubeconfig = k8s.DefaultKubeconfigPath()
	}

	return &Provisioner{
		store:        opts.Store,
		stacks:       opts.Stacks,
		roles:        opts.Roles,
		controlPlane: opts.ControlPlane,
		network:      opts.Network,
		dns:          opts.DNS,
		nodeGroups:   opts.NodeGroups,
		clients:      opts.Clients,
		provider:     opts.Provider,
		waiter:       waiter,
		kubeconfig:   kubeconfig,
		profile:      opts.Profile,
		teardown:     teardown,
		pollInterval: pollInterval,
		create:       opts.Create,
		logger:       logger,
	}
}

// SetProvider sets the infrastructure provider used by List and Exists.
func (p *Provisioner) SetProvider(prov provider.Provider) {
	p.provider = prov
}

// SetCreateOptions replaces the options applied by Create.
func (p *Provisioner) SetCreateOptions(opts CreateOptions) {
	p.create = opts
}

func (p *Provisioner) clusterLogger(name string) logrus.FieldLogger {
	return p.logger.WithField("cluster", name)
}
