package state

// Bootstrap defaults.
const (
	DefaultCIDR              = "192.168.0.0/16"
	DefaultKubernetesVersion = "1.13"
)

// regionAZs lists the availability zones used for the three cluster subnets.
//
//nolint:gochecknoglobals // static lookup table
var regionAZs = map[string][3]string{
	"us-east-1": {"us-east-1a", "us-east-1b", "us-east-1c"},
	"us-west-2": {"us-west-2a", "us-west-2b", "us-west-2c"},
	"us-east-2": {"us-east-2a", "us-east-2b", "us-east-2c"},
	"us-west-1": {"us-west-1b", "us-west-1b", "us-west-1c"},
}

// NewBootstrapLayer returns the bootstrap layer for region with default CIDR,
// Kubernetes version and subnet availability zones. Regions without a known zone
// table get the a, b and c zones of the region.
func NewBootstrapLayer(region string) BootstrapLayer {
	azs, ok := regionAZs[region]
	if !ok {
		azs = [3]string{region + "a", region + "b", region + "c"}
	}

	return BootstrapLayer{
		Region:            region,
		KubernetesVersion: DefaultKubernetesVersion,
		CIDR:              DefaultCIDR,
		Subnet1AZ:         azs[0],
		Subnet2AZ:         azs[1],
		Subnet3AZ:         azs[2],
	}
}
