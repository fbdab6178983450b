package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
}

func TestNewConfigStore_Seeded(t *testing.T) {
	store := NewConfigStore(map[string]any{"analysis.threshold": 0.3})
	assert.InDelta(t, 0.3, store.GetFloat("analysis.threshold"), 1e-9)
}

func TestConfigStore_Set_Update(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("corpus.backend", "document"))
	require.NoError(t, store.Set("corpus.backend", "sqlite"))

	val, ok := store.Get("corpus.backend")
	assert.True(t, ok)
	assert.Equal(t, "sqlite", val)
}

func TestConfigStore_Get_Missing(t *testing.T) {
	store := NewConfigStore()
	val, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_GetString(t *testing.T) {
	store := NewConfigStore(map[string]any{"s": "value", "n": 42})
	assert.Equal(t, "value", store.GetString("s"))
	assert.Equal(t, "", store.GetString("n"))
	assert.Equal(t, "", store.GetString("missing"))
}

func TestConfigStore_GetInt(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"int":    30,
		"int64":  int64(40),
		"float":  50.0,
		"string": "60",
	})
	assert.Equal(t, 30, store.GetInt("int"))
	assert.Equal(t, 40, store.GetInt("int64"))
	assert.Equal(t, 50, store.GetInt("float"))
	assert.Equal(t, 0, store.GetInt("string"))
	assert.Equal(t, 0, store.GetInt("missing"))
}

func TestConfigStore_GetFloat(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"float":   0.25,
		"float32": float32(0.5),
		"int":     60,
		"int64":   int64(70),
		"string":  "0.25",
	})
	assert.InDelta(t, 0.25, store.GetFloat("float"), 1e-9)
	assert.InDelta(t, 0.5, store.GetFloat("float32"), 1e-6)
	assert.InDelta(t, 60.0, store.GetFloat("int"), 1e-9)
	assert.InDelta(t, 70.0, store.GetFloat("int64"), 1e-9)
	assert.Zero(t, store.GetFloat("string"))
	assert.Zero(t, store.GetFloat("missing"))
}

func TestConfigStore_GetBool(t *testing.T) {
	store := NewConfigStore(map[string]any{"yes": true, "str": "true"})
	assert.True(t, store.GetBool("yes"))
	assert.False(t, store.GetBool("str"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"typed": []string{"emne", "kurs"},
		"any":   []any{"a", 1, "b"},
		"str":   "nope",
	})
	assert.Equal(t, []string{"emne", "kurs"}, store.GetStringSlice("typed"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("any"))
	assert.Nil(t, store.GetStringSlice("str"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_SaveLoadPath(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("analysis.explain_requests_per_minute", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("analysis.explain_requests_per_minute")
		}()
	}
	wg.Wait()
	_, ok := store.Get("analysis.explain_requests_per_minute")
	assert.True(t, ok)
}
