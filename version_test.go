package archive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/archive"
)

func TestParseVersion(t *testing.T) {
	v, err := archive.ParseVersion("1.20.3")
	require.NoError(t, err)
	assert.Equal(t, archive.V(1, 20, 3), v)
	assert.Equal(t, "1.20.3", v.String())

	for _, bad := range []string{"", "1.2", "1.2.3.4", "1..3", "a.b.c", "01.2.3", "-1.2.3", "1.2.4294967296"} {
		_, err := archive.ParseVersion(bad)
		assert.ErrorIs(t, err, archive.ErrMalformed, bad)
	}
}

func TestVersionOrder(t *testing.T) {
	assert.Equal(t, 0, archive.V(1, 2, 3).Compare(archive.V(1, 2, 3)))
	assert.Equal(t, -1, archive.V(1, 2, 3).Compare(archive.V(1, 10, 0)))
	assert.Equal(t, 1, archive.V(2, 0, 0).Compare(archive.V(1, 99, 99)))
	assert.True(t, archive.V(0, 0, 1).Less(archive.V(0, 1, 0)))
	assert.True(t, archive.Version{}.IsZero())
	assert.False(t, archive.V(0, 0, 1).IsZero())
}
