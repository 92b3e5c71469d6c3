package uniprot

import (
	"context"
	"fmt"

	"github.com/honeycarbs/idmapping/internal/domain"
	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/pkg/uniprot"
)

// jobClient describes the subset of the UniProt client used by the provider.
type jobClient interface {
	Run(ctx context.Context, from, to string, ids []string) (uniprot.Job, error)
}

// Provider runs mapping jobs against the UniProt REST service
type Provider struct {
	client jobClient
}

// NewProvider builds a UniProt provider
func NewProvider(client jobClient) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("uniprot provider: client is required")
	}
	return &Provider{client: client}, nil
}

// Name returns provider identifier
func (p *Provider) Name() string {
	return "uniprot"
}

// RunJob submits ids as one job and drives it to a terminal status
func (p *Provider) RunJob(ctx context.Context, from, to endpoint.Endpoint, ids []string) (domain.Job, error) {
	if p == nil || p.client == nil {
		return domain.Job{}, fmt.Errorf("uniprot provider: client is nil")
	}

	job, err := p.client.Run(ctx, from.Name(), to.Name(), ids)
	if err != nil {
		return domain.Job{}, err
	}

	results := make(domain.Mapping, len(job.Results))
	for id, targets := range job.Results {
		results[id] = targets
	}

	return domain.Job{
		ID:      job.ID,
		Status:  domain.JobStatus(job.Status),
		Results: results,
	}, nil
}
