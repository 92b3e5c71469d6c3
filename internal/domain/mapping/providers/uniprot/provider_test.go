package uniprot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/idmapping/internal/domain"
	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/pkg/uniprot"
)

type stubClient struct {
	job      uniprot.Job
	err      error
	from, to string
	ids      []string
}

func (s *stubClient) Run(_ context.Context, from, to string, ids []string) (uniprot.Job, error) {
	s.from, s.to, s.ids = from, to, ids
	return s.job, s.err
}

func TestRunJobConvertsClientJob(t *testing.T) {
	client := &stubClient{job: uniprot.Job{
		ID:      "abc",
		Status:  uniprot.StatusFinished,
		Results: map[string][]string{"P1": {"1", "2"}},
	}}
	p, err := NewProvider(client)
	require.NoError(t, err)

	from, to, err := endpoint.Default().Pair("UniProtKB_AC-ID", "GeneID")
	require.NoError(t, err)

	job, err := p.RunJob(context.Background(), from, to, []string{"P1"})
	require.NoError(t, err)

	assert.Equal(t, "UniProtKB_AC-ID", client.from)
	assert.Equal(t, "GeneID", client.to)
	assert.Equal(t, domain.Job{
		ID:      "abc",
		Status:  domain.JobStatusFinished,
		Results: domain.Mapping{"P1": {"1", "2"}},
	}, job)
}

func TestRunJobPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	p, err := NewProvider(&stubClient{err: boom})
	require.NoError(t, err)

	_, err = p.RunJob(context.Background(), endpoint.Endpoint{}, endpoint.Endpoint{}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestNewProviderRequiresClient(t *testing.T) {
	_, err := NewProvider(nil)
	assert.Error(t, err)
}
