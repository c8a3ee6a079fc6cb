package pg

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestListSQL_OrderAndSuffix(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_labels_up.sql": {Data: []byte("SELECT 1")},
		"0001_init_up.sql":   {Data: []byte("SELECT 1")},
		"0001_init_down.sql": {Data: []byte("SELECT 1")},
		"README.md":          {Data: []byte("x")},
	}
	ups, err := listSQL(fsys, "_up.sql")
	require.NoError(t, err)
	require.Equal(t, []string{"0001_init_up.sql", "0002_labels_up.sql"}, ups)

	downs, err := listSQL(fsys, "_down.sql")
	require.NoError(t, err)
	require.Equal(t, []string{"0001_init_down.sql"}, downs)
}

func TestVersion(t *testing.T) {
	require.Equal(t, "0001_init", version("0001_init_up.sql", "_up.sql"))
	require.Equal(t, "0001_init", version("0001_init_down.sql", "_down.sql"))
}
