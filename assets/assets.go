// Package assets embeds the CloudFormation templates used to provision clusters and nodegroups.
package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
)

//go:embed cf/eks_cluster.yaml
var clusterTemplate string

//go:embed cf/nodegroup.yaml
var nodeGroupTemplate string

// ClusterTemplateData holds the values rendered into the cluster network template.
type ClusterTemplateData struct {
	// OpenPorts are TCP ports opened to 0.0.0.0/0 on the shared node security group.
	OpenPorts []int
}

// ClusterTemplate renders the cluster network template.
func ClusterTemplate(data ClusterTemplateData) (string, error) {
	tmpl, err := template.New("eks_cluster").Option("missingkey=error").Parse(clusterTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse cluster template: %w", err)
	}

	var buf bytes.Buffer

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to render cluster template: %w", err)
	}

	return buf.String(), nil
}

// NodeGroupTemplate returns the nodegroup template body.
func NodeGroupTemplate() string {
	return nodeGroupTemplate
}
