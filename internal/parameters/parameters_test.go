package parameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfigString(t *testing.T) {
	params := NewFromConfigString("workers=4,seed=99,exact,note=a=b")
	assert.Equal(t, Params{
		"workers": "4",
		"seed":    "99",
		"exact":   "",
		"note":    "a=b", // Only the first '=' splits.
	}, params)

	assert.Empty(t, NewFromConfigString(""))
}

func TestGetParamOr(t *testing.T) {
	params := NewFromConfigString("workers=4,ratio=0.5,exact,name=deep,off=false")

	workers, err := GetParamOr(params, "workers", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, workers)

	missing, err := GetParamOr(params, "missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, missing)

	ratio, err := GetParamOr(params, "ratio", 0.0)
	require.NoError(t, err)
	assert.Equal(t, 0.5, ratio)

	name, err := GetParamOr(params, "name", "")
	require.NoError(t, err)
	assert.Equal(t, "deep", name)

	// A bool key without a value means true.
	exact, err := GetParamOr(params, "exact", false)
	require.NoError(t, err)
	assert.True(t, exact)
	off, err := GetParamOr(params, "off", true)
	require.NoError(t, err)
	assert.False(t, off)

	seed, err := GetParamOr(NewFromConfigString("seed=18446744073709551615"), "seed", uint64(0))
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), seed)

	_, err = GetParamOr(params, "name", 0) // "deep" is not an int.
	assert.Error(t, err)
}

func TestPopParamOr(t *testing.T) {
	params := NewFromConfigString("workers=4,exact")
	workers, err := PopParamOr(params, "workers", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, workers)
	assert.NotContains(t, params, "workers")
	assert.Contains(t, params, "exact")
}
