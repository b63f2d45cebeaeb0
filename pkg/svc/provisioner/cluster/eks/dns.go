package eksprovisioner

import (
	"context"
	"fmt"

	awsprovider "github.com/devantler-tech/ekscli/pkg/svc/provider/aws"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DefaultServiceNamespace is the namespace searched for services when none is given.
const DefaultServiceNamespace = "default"

// DNSRecord points a hostname at the load balancer of a Kubernetes service.
type DNSRecord struct {
	Hostname        string
	Service         string
	Namespace       string
	HostedZoneID    string
	ELBHostedZoneID string
}

// UpdateDNS upserts an alias record from the hostname to the load balancer of the service.
func (p *Provisioner) UpdateDNS(ctx context.Context, name string, record DNSRecord) error {
	namespace := record.Namespace
	if namespace == "" {
		namespace = DefaultServiceNamespace
	}

	clientset, err := p.clients(ctx, name)
	if err != nil {
		return err
	}

	service, err := clientset.CoreV1().Services(namespace).Get(ctx, record.Service, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("get service %s/%s: %w", namespace, record.Service, err)
	}

	var target string

	for _, ingress := range service.Status.LoadBalancer.Ingress {
		if ingress.Hostname != "" {
			target = ingress.Hostname

			break
		}
	}

	if target == "" {
		return fmt.Errorf("%w: %s/%s", ErrServiceNotExposed, namespace, record.Service)
	}

	return p.dns.UpsertAlias(ctx, awsprovider.AliasRecord{
		HostedZoneID:       record.HostedZoneID,
		Name:               record.Hostname,
		TargetDNSName:      target,
		TargetHostedZoneID: record.ELBHostedZoneID,
	})
}
