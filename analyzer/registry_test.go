package analyzer_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/BaSui01/docmeta/analyzer"
	"github.com/BaSui01/docmeta/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderRegistry_RegisterAndGet(t *testing.T) {
	reg := analyzer.NewProviderRegistry()
	reg.Register(mocks.NewMockProvider("openai"))
	reg.Register(mocks.NewMockProvider("deepseek"))

	p, ok := reg.Get("openai")
	require.True(t, ok)
	assert.Equal(t, "openai", p.ID())

	_, ok = reg.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"deepseek", "openai"}, reg.List())
	assert.Equal(t, 2, reg.Len())
}

func TestProviderRegistry_Default(t *testing.T) {
	reg := analyzer.NewProviderRegistry()

	_, err := reg.Default()
	assert.Error(t, err)

	assert.Error(t, reg.SetDefault("qwen"))

	reg.Register(mocks.NewMockProvider("qwen"))
	require.NoError(t, reg.SetDefault("qwen"))
	p, err := reg.Default()
	require.NoError(t, err)
	assert.Equal(t, "qwen", p.ID())

	reg.Unregister("qwen")
	_, err = reg.Default()
	assert.Error(t, err)
	assert.Zero(t, reg.Len())
}

func TestProviderRegistry_ReplaceSameID(t *testing.T) {
	reg := analyzer.NewProviderRegistry()
	first := mocks.NewMockProvider("gemini")
	second := mocks.NewMockProvider("gemini")
	reg.Register(first)
	reg.Register(second)

	p, _ := reg.Get("gemini")
	assert.Same(t, second, p)
	assert.Equal(t, 1, reg.Len())
}

func TestProviderRegistry_Concurrent(t *testing.T) {
	reg := analyzer.NewProviderRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("p%d", i%5)
			reg.Register(mocks.NewMockProvider(id))
			_, _ = reg.Get(id)
			_ = reg.List()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, reg.Len())
}
