package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/devantler-tech/ekscli/assets"
	"github.com/devantler-tech/ekscli/pkg/io/configmanager"
	"github.com/devantler-tech/ekscli/pkg/k8s"
	"github.com/devantler-tech/ekscli/pkg/svc/auth"
	"github.com/devantler-tech/ekscli/pkg/svc/nodegroup"
	awsprovider "github.com/devantler-tech/ekscli/pkg/svc/provider/aws"
	"github.com/devantler-tech/ekscli/pkg/svc/provider/spotinst"
	eksprovisioner "github.com/devantler-tech/ekscli/pkg/svc/provisioner/cluster/eks"
	"github.com/devantler-tech/ekscli/pkg/svc/stack"
	"github.com/devantler-tech/ekscli/pkg/svc/state"
	"github.com/sirupsen/logrus"
)

// ErrNoClusterContext is returned when a Kubernetes client is requested for a cluster
// whose control plane ARN has not been recorded yet.
var ErrNoClusterContext = errors.New("cluster has no kubeconfig context: run eks update-kubeconfig first")

// Services bundles the collaborators of commands working on one cluster.
type Services struct {
	Cluster     string
	Settings    *configmanager.Settings
	Store       *state.Store
	Clients     *awsprovider.Clients
	KubeClients k8s.ClientFactory
	Auth        *auth.Syncer
	NodeGroups  *nodegroup.Orchestrator
	Provisioner *eksprovisioner.Provisioner
	Logger      logrus.FieldLogger
}

// ServicesRequest selects the cluster and region Services are built for.
type ServicesRequest struct {
	// Cluster may be empty for commands that are not cluster scoped.
	Cluster string
	// Region wins over the region override and the region recorded at bootstrap.
	Region string
	Logger logrus.FieldLogger
}

// ServicesFactory builds Services for a request.
type ServicesFactory func(ctx context.Context, req ServicesRequest) (*Services, error)

// Collaborators are the externally backed dependencies Services are assembled from.
type Collaborators struct {
	Store       *state.Store
	Clients     *awsprovider.Clients
	KubeClients k8s.ClientFactory
	Capacity    nodegroup.CapacityProvider
}

// NewServicesFactory returns a ServicesFactory backed by the configured state backend
// and the AWS SDK default credential chain.
func NewServicesFactory(settings *configmanager.Settings) ServicesFactory {
	return func(ctx context.Context, req ServicesRequest) (*Services, error) {
		logger := req.Logger
		if logger == nil {
			logger = logrus.StandardLogger()
		}

		backend, err := NewStateBackend(ctx, settings)
		if err != nil {
			return nil, err
		}

		store := state.NewStore(backend, logger)

		region, err := resolveRegion(ctx, store, settings, req)
		if err != nil {
			return nil, err
		}

		clients, err := awsprovider.NewClients(ctx, awsprovider.Options{
			Region:  region,
			Profile: settings.AWS.Profile,
		})
		if err != nil {
			return nil, err
		}

		return AssembleServices(req.Cluster, settings, Collaborators{
			Store:       store,
			Clients:     clients,
			KubeClients: k8s.NewClientFactory(settings.Kubeconfig, ClusterContext(store)),
			Capacity:    spotinst.New(logger),
		}, logger), nil
	}
}

// AssembleServices wires the orchestrators of cluster on top of deps.
func AssembleServices(
	cluster string,
	settings *configmanager.Settings,
	deps Collaborators,
	logger logrus.FieldLogger,
) *Services {
	waiter := stack.NewWaiter(settings.PollInterval, logger)
	syncer := auth.NewSyncer(deps.Store, deps.Clients.CloudFormation, deps.KubeClients, logger)

	nodeGroups := nodegroup.New(nodegroup.Options{
		Store:    deps.Store,
		Stacks:   deps.Clients.CloudFormation,
		Policies: awsprovider.NewIAM(deps.Clients.IAM, logger),
		Scaler:   awsprovider.NewAutoScaling(deps.Clients.AutoScaling, logger),
		Capacity: deps.Capacity,
		Auth:     syncer,
		Waiter:   waiter,
		Template: assets.NodeGroupTemplate(),
		Logger:   logger,
	})

	provisioner := eksprovisioner.CreateProvisioner(deps.Clients, deps.Store, nodeGroups, deps.KubeClients,
		eksprovisioner.Options{
			Waiter:       waiter,
			Kubeconfig:   settings.Kubeconfig,
			Profile:      settings.AWS.Profile,
			Teardown:     settings.TeardownPolicy,
			PollInterval: settings.PollInterval,
			Logger:       logger,
		})

	return &Services{
		Cluster:     cluster,
		Settings:    settings,
		Store:       deps.Store,
		Clients:     deps.Clients,
		KubeClients: deps.KubeClients,
		Auth:        syncer,
		NodeGroups:  nodeGroups,
		Provisioner: provisioner,
		Logger:      logger,
	}
}

// NewStateBackend creates the state backend selected by settings.
func NewStateBackend(ctx context.Context, settings *configmanager.Settings) (state.Backend, error) {
	switch settings.State.Backend {
	case configmanager.BackendS3:
		cfg, err := awsprovider.LoadConfig(ctx, awsprovider.Options{
			Region:  settings.AWS.RegionOverride,
			Profile: settings.AWS.Profile,
		})
		if err != nil {
			return nil, err
		}

		return state.NewS3Backend(awsprovider.NewClientsFromConfig(cfg).S3, settings.State.Bucket,
			settings.State.Prefix), nil
	case configmanager.BackendMinio:
		client, err := state.NewMinioClient(settings.State.Endpoint, settings.State.AccessKey,
			settings.State.SecretKey, settings.State.Insecure)
		if err != nil {
			return nil, err
		}

		return state.NewMinioBackend(client, settings.State.Bucket, settings.State.Prefix), nil
	case configmanager.BackendFS, "":
		return state.NewFSBackend(settings.State.Dir)
	default:
		return nil, fmt.Errorf("%w: %q", configmanager.ErrUnknownBackend, settings.State.Backend)
	}
}

// ClusterContext resolves the kubeconfig context of a cluster to its recorded control plane ARN.
func ClusterContext(store *state.Store) k8s.ContextResolver {
	return func(ctx context.Context, cluster string) (string, error) {
		cfg, err := store.Cluster(ctx, cluster)
		if err != nil {
			return "", err
		}

		if cfg.ClusterARN == "" {
			return "", ErrNoClusterContext
		}

		return cfg.ClusterARN, nil
	}
}

// resolveRegion picks the explicit region, then the override, then the bootstrapped
// region. An unbootstrapped cluster falls back to the SDK default region.
func resolveRegion(
	ctx context.Context,
	store *state.Store,
	settings *configmanager.Settings,
	req ServicesRequest,
) (string, error) {
	if req.Region != "" {
		return req.Region, nil
	}

	if settings.AWS.RegionOverride != "" {
		return settings.AWS.RegionOverride, nil
	}

	if req.Cluster == "" {
		return "", nil
	}

	cfg, err := store.Cluster(ctx, req.Cluster)
	if errors.Is(err, state.ErrNotBootstrapped) {
		return "", nil
	}

	if err != nil {
		return "", err
	}

	return cfg.Region, nil
}
