package solver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/framemend/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultStoreGoverning(t *testing.T) {
	store, err := NewResultStore(t.TempDir(), "sess-1")
	require.NoError(t, err)
	defer store.Close()

	lineage := models.Lineage{
		MotherToChildren: models.MotherToChildren{1: {3, 4}, 2: {2}},
		ChildToMother:    models.ChildToMother{3: 1, 4: 1, 2: 2},
	}
	require.NoError(t, store.PutLineage(lineage))

	store.Add(models.MemberResult{LineID: 3, LoadCase: 1, Iteration: 0, MaxDisplacement: 0.012})
	store.Add(models.MemberResult{LineID: 4, LoadCase: 1, Iteration: 0, MaxDisplacement: -0.034})
	store.Add(models.MemberResult{LineID: 3, LoadCase: 1, Iteration: 1, MaxDisplacement: 0.040})
	store.Add(models.MemberResult{LineID: 2, LoadCase: 1, Iteration: 0, MaxDisplacement: 0.005})
	require.NoError(t, store.Finalize())
	require.NoError(t, store.LastError())
	assert.Equal(t, 4, store.Len())

	governing, err := store.Governing(context.Background())
	require.NoError(t, err)
	require.Len(t, governing, 2)

	g1 := governing[1]
	assert.Equal(t, 3, g1.GoverningChild)
	assert.InDelta(t, 0.040, g1.MaxDisplacement, 1e-12)
	assert.Equal(t, 2, g1.ChildCount)

	g2 := governing[2]
	assert.Equal(t, 2, g2.GoverningChild)
	assert.Equal(t, 1, g2.ChildCount)
}

func TestResultStoreBatchFlush(t *testing.T) {
	store, err := NewResultStore(t.TempDir(), "sess-2")
	require.NoError(t, err)
	defer store.Close()

	store.batchSize = 8
	require.NoError(t, store.PutLineage(models.Lineage{
		MotherToChildren: models.MotherToChildren{1: {3}},
		ChildToMother:    models.ChildToMother{3: 1},
	}))
	for i := 0; i < 25; i++ {
		store.Add(models.MemberResult{LineID: 3, LoadCase: 1, Iteration: i, MaxDisplacement: float64(i) * 0.001})
	}
	require.NoError(t, store.Finalize())
	assert.Equal(t, 25, store.Len())

	governing, err := store.Governing(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.024, governing[1].MaxDisplacement, 1e-12)
}

func TestResultStoreCloseRemovesFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewResultStore(dir, "sess-3")
	require.NoError(t, err)

	path := filepath.Join(dir, "results_sess-3.duckdb")
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, store.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
