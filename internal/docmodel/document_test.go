package docmodel_test

import (
	"testing"

	"github.com/joeycumines/collabmd/internal/docmodel"
	"github.com/joeycumines/collabmd/internal/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1: two inserts at the same position in one tick build the
// intended string, submitted in the order the FIFO law requires.
func TestScenario1TwoInsertsSamePosition(t *testing.T) {
	doc := docmodel.New()
	tx := doc.Begin()
	require.NoError(t, tx.Insert(0, "Hello "))
	require.NoError(t, tx.Insert(0, "World"))
	version := tx.Commit()

	content, v := doc.Snapshot()
	assert.Equal(t, uint64(1), version)
	assert.Equal(t, uint64(1), v)
	assert.Equal(t, "Hello World", string(content))
}

// Scenario 2: delete then insert at the freed position, in one tick.
func TestScenario2DeleteThenInsert(t *testing.T) {
	doc := docmodel.NewFromContent([]byte("Hello World"))
	tx := doc.Begin()
	require.NoError(t, tx.Delete(6, 5))
	require.NoError(t, tx.Insert(6, "Earth"))
	tx.Commit()

	content, _ := doc.Snapshot()
	assert.Equal(t, "Hello Earth", string(content))
}

// Scenario 3: heading then a follow-up insert in a later tick.
func TestScenario3HeadingThenInsert(t *testing.T) {
	doc := docmodel.New()
	tx := doc.Begin()
	require.NoError(t, tx.Heading(2, 0))
	v1 := tx.Commit()
	assert.Equal(t, uint64(1), v1)

	content, _ := doc.Snapshot()
	assert.Equal(t, "## ", string(content))

	tx2 := doc.Begin()
	require.NoError(t, tx2.Insert(3, "Title"))
	v2 := tx2.Commit()
	assert.Equal(t, uint64(2), v2)

	content, _ = doc.Snapshot()
	assert.Equal(t, "## Title", string(content))
}

// Scenario 4: three ordered_list calls at position 0 in one tick
// autonumber consecutively.
func TestScenario4OrderedListAutonumbers(t *testing.T) {
	doc := docmodel.New()
	tx := doc.Begin()
	require.NoError(t, tx.OrderedList(0))
	require.NoError(t, tx.OrderedList(0))
	require.NoError(t, tx.OrderedList(0))
	v := tx.Commit()

	content, _ := doc.Snapshot()
	assert.Equal(t, uint64(1), v)
	assert.Equal(t, "1. \n2. \n3. ", string(content))
}

// Scenario 6: two clients insert at the same position; arrival order
// wins.
func TestScenario6ArrivalOrderWins(t *testing.T) {
	doc := docmodel.New()
	tx := doc.Begin()
	require.NoError(t, tx.Insert(0, "Hi")) // client A
	require.NoError(t, tx.Insert(0, "Yo")) // client B
	v := tx.Commit()

	content, _ := doc.Snapshot()
	assert.Equal(t, uint64(1), v)
	assert.Equal(t, "HiYo", string(content))
}

func TestVersionGateRejectsStaleCommands(t *testing.T) {
	doc := docmodel.New()
	tx := doc.Begin()
	err := tx.CheckVersion(1)
	assert.ErrorIs(t, err, result.ErrOutdatedVersion)
	tx.Commit()
}

func TestEmptyTickStillAdvancesVersionIfBegun(t *testing.T) {
	doc := docmodel.New()
	tx := doc.Begin()
	v := tx.Commit()
	assert.Equal(t, uint64(1), v)
}

func TestBoldIdempotentReWrap(t *testing.T) {
	doc := docmodel.NewFromContent([]byte("hi"))
	tx := doc.Begin()
	require.NoError(t, tx.Bold(0, 2))
	tx.Commit()

	tx2 := doc.Begin()
	require.NoError(t, tx2.Bold(2, 4))
	tx2.Commit()

	content, _ := doc.Snapshot()
	assert.Equal(t, "****hi****", string(content))
}
