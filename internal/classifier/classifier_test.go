package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyFixtures(t *testing.T) {
	tests := []struct {
		file  string
		site  string
		label string
	}{
		{"../sites/fd/testdata/regpage.html", "fd", "regpage"},
		{"../sites/ns/testdata/reg.html", "ns", "reg"},
		{"../sites/sk/testdata/main.html", "sk", "main"},
	}
	for _, tt := range tests {
		t.Run(tt.site, func(t *testing.T) {
			b, err := os.ReadFile(filepath.FromSlash(tt.file))
			require.NoError(t, err)

			g, ok := New().Classify(b)
			require.True(t, ok)
			assert.Equal(t, tt.site, g.Site)
			assert.Equal(t, tt.label, g.Label)
			assert.NotEmpty(t, g.Reason)
		})
	}
}

func TestClassifyUnknown(t *testing.T) {
	_, ok := New().Classify([]byte("<html><body><p>Add to cart</p></body></html>"))
	assert.False(t, ok)
}

func TestSites(t *testing.T) {
	assert.Equal(t, []string{"fd", "ns", "sk"}, New().Sites())
}
