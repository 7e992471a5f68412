package sites

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abraham-mv/huon-test/internal/traverse"
)

func TestNew(t *testing.T) {
	for _, id := range []string{"fd", "ns", "sk"} {
		t.Run(id, func(t *testing.T) {
			site, err := New(id, traverse.Options{})
			require.NoError(t, err)
			assert.Equal(t, id, site.ID())
			assert.True(t, Known(id))
		})
	}
}

func TestNewUnknownSite(t *testing.T) {
	_, err := New("bc", traverse.Options{})
	assert.ErrorIs(t, err, ErrUnknownSite)
	assert.False(t, Known("bc"))
}

func TestIDs(t *testing.T) {
	assert.Equal(t, []string{"fd", "ns", "sk"}, IDs())
}

func TestEarliestDate(t *testing.T) {
	d, ok := EarliestDate("fd")
	require.True(t, ok)
	assert.Equal(t, "2008-07-02", d.Format(time.DateOnly))

	d, ok = EarliestDate("sk")
	require.True(t, ok)
	assert.Equal(t, "2011-04-01", d.Format(time.DateOnly))

	_, ok = EarliestDate("ns")
	assert.False(t, ok)
}
