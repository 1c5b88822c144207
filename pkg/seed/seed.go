// Package seed loads a small demo catalog into an empty database so the API
// can be exercised without setting up a real service inventory first.
package seed

import (
	"github.com/go-logr/logr"

	"github.com/noticehub/noticehub/pkg/types"
)

// CatalogWriter is the subset of the store the seeder needs.
type CatalogWriter interface {
	ListServices() ([]types.Service, error)
	UpsertService(svc types.Service) error
	UpsertSystem(sys types.System) error
	InsertDependency(edge types.DependencyEdge) error
}

var demoServices = []types.Service{
	{ID: "aws-ec2-us-east-1", Name: "AWS EC2 us-east-1", Provider: "AWS"},
	{ID: "aws-s3-global", Name: "AWS S3 Global", Provider: "AWS"},
	{ID: "azure-vms-east-us", Name: "Microsoft Azure VMs (East US)", Provider: "Microsoft Azure"},
	{ID: "gcs-multi-region", Name: "Google Cloud Storage (multi-region)", Provider: "Google Cloud"},
	{ID: "github-actions", Name: "GitHub Actions", Provider: "GitHub"},
	{ID: "outlook-365", Name: "Outlook 365", Provider: "Microsoft"},
	{ID: "slack-api", Name: "Slack API", Provider: "Slack"},
	{ID: "twilio-sms-api", Name: "Twilio SMS API", Provider: "Twilio"},
}

var demoSystems = []types.System{
	{ID: "core-app-server", Name: "Core Application Server"},
	{ID: "user-auth-service", Name: "User Authentication Service"},
	{ID: "data-processing-pipeline", Name: "Data Processing Pipeline"},
	{ID: "customer-notification-gateway", Name: "Customer Notification Gateway"},
	{ID: "internal-wiki", Name: "Internal Wiki & Documentation"},
}

var demoDependencies = []types.DependencyEdge{
	{From: "core-app-server", To: "aws-ec2-us-east-1"},
	{From: "core-app-server", To: "aws-s3-global"},
	{From: "user-auth-service", To: "aws-ec2-us-east-1"},
	{From: "data-processing-pipeline", To: "aws-s3-global"},
	{From: "data-processing-pipeline", To: "azure-vms-east-us"},
	{From: "customer-notification-gateway", To: "outlook-365"},
	{From: "customer-notification-gateway", To: "twilio-sms-api"},
	{From: "internal-wiki", To: "gcs-multi-region"},
}

// Seed writes the demo catalog. A catalog that already has services is left
// untouched so a restart never clobbers real data.
func Seed(logger logr.Logger, st CatalogWriter) error {
	existing, err := st.ListServices()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("Catalog already populated, skipping demo seed", "services", len(existing))
		return nil
	}

	for _, svc := range demoServices {
		if err := st.UpsertService(svc); err != nil {
			return err
		}
	}
	for _, sys := range demoSystems {
		if err := st.UpsertSystem(sys); err != nil {
			return err
		}
	}
	for _, dep := range demoDependencies {
		if err := st.InsertDependency(dep); err != nil {
			return err
		}
	}

	logger.Info("Seeded demo catalog",
		"services", len(demoServices), "systems", len(demoSystems), "dependencies", len(demoDependencies))
	return nil
}
