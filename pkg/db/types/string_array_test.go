package dbtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArrayValue(t *testing.T) {
	v, err := StringArray{"01HZA", "01HZB"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"01HZA","01HZB"}`, v)

	empty, err := StringArray{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", empty)

	_, err = StringArray{"a,b"}.Value()
	assert.Error(t, err)
}

func TestStringArrayScan(t *testing.T) {
	var a StringArray
	require.NoError(t, a.Scan(`{"01HZA", 01HZB}`))
	assert.Equal(t, StringArray{"01HZA", "01HZB"}, a)

	require.NoError(t, a.Scan([]byte("{}")))
	assert.Empty(t, a)

	require.NoError(t, a.Scan(nil))
	assert.Empty(t, a)

	assert.Error(t, a.Scan(42))
}
