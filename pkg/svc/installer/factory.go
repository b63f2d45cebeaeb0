package installer

import (
	"github.com/devantler-tech/ekscli/pkg/svc/installer/addons"
	"github.com/sirupsen/logrus"
	"k8s.io/client-go/kubernetes"
)

// Options selects the day-1 add-ons installed after cluster creation.
type Options struct {
	GPU           bool
	StorageClass  bool
	DNSAutoscaler bool
	// WarmIPTarget tunes the VPC CNI when greater than zero.
	WarmIPTarget int
}

// Empty reports whether no add-on is selected.
func (o Options) Empty() bool {
	return !o.GPU && !o.StorageClass && !o.DNSAutoscaler && o.WarmIPTarget <= 0
}

// Factory creates add-on installers bound to one cluster.
// It holds the shared dependencies required by installers.
type Factory struct {
	client kubernetes.Interface
	logger logrus.FieldLogger
}

// NewFactory creates a new installer factory with the required dependencies.
func NewFactory(client kubernetes.Interface, logger logrus.FieldLogger) *Factory {
	return &Factory{client: client, logger: logger}
}

// DayOne returns the installers selected by opts, in installation order.
func (f *Factory) DayOne(opts Options) []Installer {
	var installers []Installer

	if opts.GPU {
		installers = append(installers, addons.NewGPUPlugin(f.client, f.logger))
	}

	if opts.StorageClass {
		installers = append(installers, addons.NewStorageClass(f.client, f.logger))
	}

	if opts.DNSAutoscaler {
		installers = append(installers, addons.NewDNSAutoscaler(f.client, f.logger))
	}

	if opts.WarmIPTarget > 0 {
		installers = append(installers, addons.NewCNI(f.client, f.logger, opts.WarmIPTarget))
	}

	return installers
}

// GPU returns the NVIDIA device plugin installer.
func (f *Factory) GPU() Installer {
	return addons.NewGPUPlugin(f.client, f.logger)
}

// StorageClass returns the default storage class installer.
func (f *Factory) StorageClass() Installer {
	return addons.NewStorageClass(f.client, f.logger)
}

// DNSAutoscaler returns the DNS autoscaler installer.
func (f *Factory) DNSAutoscaler() Installer {
	return addons.NewDNSAutoscaler(f.client, f.logger)
}

// CNI returns the CNI tuner for warmIPTarget.
func (f *Factory) CNI(warmIPTarget int) Installer {
	return addons.NewCNI(f.client, f.logger, warmIPTarget)
}

// Registry returns the registry credentials installer.
func (f *Factory) Registry(auth addons.RegistryAuth) Installer {
	return addons.NewRegistryCredentials(f.client, f.logger, auth)
}
