package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	vectors [][]float32
	err     error
	inputs  [][]string
}

func (f *fakeClient) CreateEmbedding(_ context.Context, inputTexts []string) ([][]float32, error) {
	f.inputs = append(f.inputs, inputTexts)
	return f.vectors, f.err
}

func TestGenerateBatchNormalises(t *testing.T) {
	client := &fakeClient{vectors: [][]float32{{3, 4}, {0, 2}}}
	p := NewProviderWithClient(client)

	vectors, err := p.GenerateBatch(context.Background(), []string{"a", "b"}, "")
	require.NoError(t, err)

	require.Len(t, client.inputs, 1)
	assert.Equal(t, []string{"a", "b"}, client.inputs[0])
	assert.InDelta(t, 0.6, vectors[0][0], 1e-6)
	assert.InDelta(t, 1.0, vectors[1][1], 1e-6)
}

func TestGenerateBatchCountMismatch(t *testing.T) {
	p := NewProviderWithClient(&fakeClient{vectors: [][]float32{{1}}})

	_, err := p.GenerateBatch(context.Background(), []string{"a", "b"}, "")
	assert.Error(t, err)
}

func TestGenerateWrapsClientError(t *testing.T) {
	boom := errors.New("quota exceeded")
	p := NewProviderWithClient(&fakeClient{err: boom})

	_, err := p.Generate(context.Background(), "a", "")
	assert.ErrorIs(t, err, boom)
}
