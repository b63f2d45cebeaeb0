package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	route53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/sirupsen/logrus"
)

// AliasRecord is an A record aliasing another AWS hostname.
type AliasRecord struct {
	HostedZoneID       string
	Name               string
	TargetDNSName      string
	TargetHostedZoneID string
}

// DNS manages Route53 records.
type DNS struct {
	client Route53API
	logger logrus.FieldLogger
}

// NewDNS creates a DNS wrapper.
func NewDNS(client Route53API, logger logrus.FieldLogger) *DNS {
	return &DNS{client: client, logger: logger}
}

// UpsertAlias creates or replaces an alias A record.
func (d *DNS) UpsertAlias(ctx context.Context, record AliasRecord) error {
	d.logger.WithField("record", record.Name).Infof("setting Route53 record %s --> %s", record.Name, record.TargetDNSName)

	out, err := d.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: sdkaws.String(record.HostedZoneID),
		ChangeBatch: &route53types.ChangeBatch{
			Changes: []route53types.Change{{
				Action: route53types.ChangeActionUpsert,
				ResourceRecordSet: &route53types.ResourceRecordSet{
					Name: sdkaws.String(record.Name),
					Type: route53types.RRTypeA,
					AliasTarget: &route53types.AliasTarget{
						DNSName:              sdkaws.String(record.TargetDNSName),
						HostedZoneId:         sdkaws.String(record.TargetHostedZoneID),
						EvaluateTargetHealth: false,
					},
				},
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", record.Name, err)
	}

	if out.ChangeInfo != nil {
		d.logger.WithField("change", sdkaws.ToString(out.ChangeInfo.Id)).
			WithField("status", out.ChangeInfo.Status).
			Info("record change submitted")
	}

	return nil
}
