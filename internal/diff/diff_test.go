package diff

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfdata/subjectwatch/internal/taxonomy"
)

func snapshot(categories ...taxonomy.Category) taxonomy.Snapshot {
	return taxonomy.Snapshot{
		GeneratedAt: time.Unix(1700000000, 0).UTC(),
		Categories:  categories,
	}
}

func TestDiff_IdenticalSnapshotsAreEmpty(t *testing.T) {
	t.Parallel()

	snap := snapshot(
		taxonomy.Category{
			Heading: "FICTION",
			Notes:   []string{"guidance"},
			Entries: []taxonomy.Entry{
				{Code: "FIC000000", Label: "General"},
				{Code: "FIC001000", Label: "Action & Adventure"},
			},
		},
		taxonomy.Category{
			Heading: "POETRY",
			Entries: []taxonomy.Entry{{Code: "POE000000", Label: "General"}},
		},
	)

	report, err := Diff(snap, snap)
	require.NoError(t, err)
	assert.True(t, report.Empty())
}

func TestDiff_ModifiedLabelIsRemovePlusAdd(t *testing.T) {
	t.Parallel()

	oldSnap := snapshot(taxonomy.Category{
		Heading: "FICTION",
		Entries: []taxonomy.Entry{{Code: "FIC001000", Label: "Action & Adventure"}},
	})
	newSnap := snapshot(taxonomy.Category{
		Heading: "FICTION",
		Entries: []taxonomy.Entry{{Code: "FIC001000", Label: "Adventure"}},
	})

	report, err := Diff(oldSnap, newSnap)
	require.NoError(t, err)

	require.Len(t, report.RemovedEntries, 1)
	assert.Equal(t, EntryChange{
		Heading: "FICTION",
		Entry:   taxonomy.Entry{Code: "FIC001000", Label: "Action & Adventure"},
	}, report.RemovedEntries[0])

	require.Len(t, report.AddedEntries, 1)
	assert.Equal(t, EntryChange{
		Heading: "FICTION",
		Entry:   taxonomy.Entry{Code: "FIC001000", Label: "Adventure"},
	}, report.AddedEntries[0])

	assert.Empty(t, report.AddedCategories)
	assert.Empty(t, report.RemovedCategories)
}

func TestDiff_MovedEntrySurfacesUnderBothHeadings(t *testing.T) {
	t.Parallel()

	oldSnap := snapshot(
		taxonomy.Category{
			Heading: "FICTION",
			Entries: []taxonomy.Entry{{Code: "FIC027000", Label: "Romance"}},
		},
		taxonomy.Category{
			Heading: "ROMANCE",
			Entries: []taxonomy.Entry{{Code: "ROM000000", Label: "General"}},
		},
	)
	newSnap := snapshot(
		taxonomy.Category{
			Heading: "FICTION",
			Entries: []taxonomy.Entry{{Code: "FIC000000", Label: "General"}},
		},
		taxonomy.Category{
			Heading: "ROMANCE",
			Entries: []taxonomy.Entry{
				{Code: "ROM000000", Label: "General"},
				{Code: "FIC027000", Label: "Romance"},
			},
		},
	)

	report, err := Diff(oldSnap, newSnap)
	require.NoError(t, err)

	assert.Contains(t, report.RemovedEntries, EntryChange{
		Heading: "FICTION",
		Entry:   taxonomy.Entry{Code: "FIC027000", Label: "Romance"},
	})
	assert.Contains(t, report.AddedEntries, EntryChange{
		Heading: "ROMANCE",
		Entry:   taxonomy.Entry{Code: "FIC027000", Label: "Romance"},
	})
}

func TestDiff_NewCategoryAndItsEntries(t *testing.T) {
	t.Parallel()

	fiction := taxonomy.Category{
		Heading: "FICTION",
		Entries: []taxonomy.Entry{{Code: "FIC000000", Label: "General"}},
	}
	nonfiction := taxonomy.Category{
		Heading: "NONFICTION",
		Entries: []taxonomy.Entry{{Code: "NON000000", Label: "General"}},
	}
	poetry := taxonomy.Category{
		Heading: "POETRY",
		Entries: []taxonomy.Entry{
			{Code: "POE000000", Label: "General"},
			{Code: "POE005010", Label: "American"},
		},
	}

	report, err := Diff(snapshot(fiction, nonfiction), snapshot(fiction, nonfiction, poetry))
	require.NoError(t, err)

	require.Len(t, report.AddedCategories, 1)
	assert.Equal(t, "POETRY", report.AddedCategories[0].Heading)
	assert.Empty(t, report.RemovedCategories)

	assert.Equal(t, []EntryChange{
		{Heading: "POETRY", Entry: taxonomy.Entry{Code: "POE000000", Label: "General"}},
		{Heading: "POETRY", Entry: taxonomy.Entry{Code: "POE005010", Label: "American"}},
	}, report.AddedEntries)
	assert.Empty(t, report.RemovedEntries)
}

func TestDiff_HeadingComparisonIsAmpersandInsensitive(t *testing.T) {
	t.Parallel()

	oldSnap := snapshot(taxonomy.Category{
		Heading: "ANTIQUES & COLLECTIBLES",
		Entries: []taxonomy.Entry{{Code: "ANT000000", Label: "General"}},
	})
	newSnap := snapshot(taxonomy.Category{
		Heading: "ANTIQUES AND COLLECTIBLES",
		Entries: []taxonomy.Entry{{Code: "ANT000000", Label: "General"}},
	})

	report, err := Diff(oldSnap, newSnap)
	require.NoError(t, err)
	assert.True(t, report.Empty())
}

func TestDiff_EmptySnapshotIsAnInputError(t *testing.T) {
	t.Parallel()

	populated := snapshot(taxonomy.Category{
		Heading: "FICTION",
		Entries: []taxonomy.Entry{{Code: "FIC000000", Label: "General"}},
	})

	_, err := Diff(taxonomy.Snapshot{}, populated)
	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "old", inputErr.Side)

	_, err = Diff(populated, taxonomy.Snapshot{})
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "new", inputErr.Side)
}

func TestDiff_OrderFollowsSnapshotOrder(t *testing.T) {
	t.Parallel()

	oldSnap := snapshot(taxonomy.Category{
		Heading: "FICTION",
		Entries: []taxonomy.Entry{{Code: "FIC000000", Label: "General"}},
	})
	newSnap := snapshot(
		taxonomy.Category{
			Heading: "FICTION",
			Entries: []taxonomy.Entry{
				{Code: "FIC000000", Label: "General"},
				{Code: "FIC002000", Label: "Westerns"},
			},
		},
		taxonomy.Category{
			Heading: "POETRY",
			Entries: []taxonomy.Entry{{Code: "POE000000", Label: "General"}},
		},
	)

	report, err := Diff(oldSnap, newSnap)
	require.NoError(t, err)

	require.Len(t, report.AddedEntries, 2)
	assert.Equal(t, "FIC002000", report.AddedEntries[0].Entry.Code)
	assert.Equal(t, "POE000000", report.AddedEntries[1].Entry.Code)
}
