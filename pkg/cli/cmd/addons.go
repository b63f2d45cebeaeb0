package cmd

import (
	"errors"
	"time"

	"github.com/devantler-tech/ekscli/pkg/di"
	"github.com/devantler-tech/ekscli/pkg/svc/installer"
	"github.com/devantler-tech/ekscli/pkg/svc/installer/addons"
	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"github.com/devantler-tech/ekscli/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// ErrWarmIPTargetRequired is returned by update-cni when no warm IP target is known.
var ErrWarmIPTargetRequired = errors.New("warm IP target must be greater than zero")

// addonSelector picks the installers of an add-on command.
type addonSelector func(cmd *cobra.Command, args []string, services *di.Services, factory *installer.Factory) (
	[]installer.Installer, error,
)

// newAddonCmd builds a command that installs the add-ons chosen by selectInstallers.
func newAddonCmd(
	runtimeContainer *di.Runtime,
	cmd *cobra.Command,
	name string,
	selectInstallers addonSelector,
) *cobra.Command {
	var timeout time.Duration

	cmd.SilenceUsage = true
	cmd.RunE = runWithServices(runtimeContainer, serviceOptions{},
		func(cmd *cobra.Command, args []string, services *di.Services, tmr timer.Timer) error {
			ctx := cmd.Context()

			clientset, err := services.KubeClients(ctx, services.Cluster)
			if err != nil {
				return err
			}

			installers, err := selectInstallers(cmd, args, services, installer.NewFactory(clientset, services.Logger))
			if err != nil {
				return err
			}

			notify.Activityf(cmd.OutOrStdout(), "installing %s on %s", name, services.Cluster)

			err = installer.InstallAll(ctx, timeout, installers...)
			if err != nil {
				return err
			}

			notify.SuccessWithTimerf(cmd.OutOrStdout(), tmr, "%s installed on %s", name, services.Cluster)

			return nil
		})

	cmd.Flags().DurationVar(&timeout, "timeout", installer.DefaultInstallTimeout, "install timeout")

	return cmd
}

// NewEnableGPUCmd creates the enable-gpu command.
func NewEnableGPUCmd(runtimeContainer *di.Runtime) *cobra.Command {
	return newAddonCmd(runtimeContainer, &cobra.Command{
		Use:   "enable-gpu",
		Short: "Install the NVIDIA device plugin",
		Args:  cobra.NoArgs,
	}, "NVIDIA device plugin",
		func(_ *cobra.Command, _ []string, _ *di.Services, factory *installer.Factory) ([]installer.Installer, error) {
			return []installer.Installer{factory.GPU()}, nil
		})
}

// NewCreateDefaultStorageClassCmd creates the create-default-storage-class command.
func NewCreateDefaultStorageClassCmd(runtimeContainer *di.Runtime) *cobra.Command {
	return newAddonCmd(runtimeContainer, &cobra.Command{
		Use:   "create-default-storage-class",
		Short: "Install the default gp2 storage class",
		Args:  cobra.NoArgs,
	}, "default storage class",
		func(_ *cobra.Command, _ []string, _ *di.Services, factory *installer.Factory) ([]installer.Installer, error) {
			return []installer.Installer{factory.StorageClass()}, nil
		})
}

// NewCreateDNSAutoscalerCmd creates the create-dns-autoscaler command.
func NewCreateDNSAutoscalerCmd(runtimeContainer *di.Runtime) *cobra.Command {
	return newAddonCmd(runtimeContainer, &cobra.Command{
		Use:   "create-dns-autoscaler",
		Short: "Install the cluster-proportional autoscaler for kube-dns",
		Args:  cobra.NoArgs,
	}, "DNS autoscaler",
		func(_ *cobra.Command, _ []string, _ *di.Services, factory *installer.Factory) ([]installer.Installer, error) {
			return []installer.Installer{factory.DNSAutoscaler()}, nil
		})
}

// NewUpdateCNICmd creates the update-cni command.
func NewUpdateCNICmd(runtimeContainer *di.Runtime) *cobra.Command {
	var warmIPTarget int

	cmd := &cobra.Command{
		Use:   "update-cni",
		Short: "Tune the warm IP target of the VPC CNI",
		Long: `Set WARM_IP_TARGET on the aws-node daemonset. Without --warm-ip-target the value
recorded in the config layer is used.`,
		Args: cobra.NoArgs,
	}

	cmd.Flags().IntVar(&warmIPTarget, "warm-ip-target", 0, "number of free IPs kept per node")

	return newAddonCmd(runtimeContainer, cmd, "VPC CNI settings",
		func(cmd *cobra.Command, _ []string, services *di.Services, factory *installer.Factory) (
			[]installer.Installer, error,
		) {
			target := warmIPTarget
			if target <= 0 {
				cfg, err := services.Store.Cluster(cmd.Context(), services.Cluster)
				if err != nil {
					return nil, err
				}

				target = cfg.WarmIPTarget
			}

			if target <= 0 {
				return nil, ErrWarmIPTargetRequired
			}

			return []installer.Installer{factory.CNI(target)}, nil
		})
}

// NewSetDockerRegistryCredentialsCmd creates the set-docker-registry-credentials command.
func NewSetDockerRegistryCredentialsCmd(runtimeContainer *di.Runtime) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "set-docker-registry-credentials USER PASSWORD EMAIL",
		Short: "Install a registry pull secret used by the default service accounts",
		Args:  cobra.ExactArgs(3), //nolint:mnd
	}

	cmd.Flags().StringVar(&server, "server", addons.DefaultRegistryServer, "registry server")

	return newAddonCmd(runtimeContainer, cmd, "registry credentials",
		func(_ *cobra.Command, args []string, _ *di.Services, factory *installer.Factory) (
			[]installer.Installer, error,
		) {
			return []installer.Installer{factory.Registry(addons.RegistryAuth{
				Server:   server,
				Username: args[0],
				Password: args[1],
				Email:    args[2],
			})}, nil
		})
}
