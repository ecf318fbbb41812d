package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConcurrentFirstUse(t *testing.T) {
	results := make([]*AppMetrics, 16)

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Get()
		}(i)
	}
	wg.Wait()

	require.NotNil(t, results[0])
	require.NotNil(t, results[0].GenerationRequestsTotal)
	for _, m := range results[1:] {
		assert.Same(t, results[0], m)
	}
}
