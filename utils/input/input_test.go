package input_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/odrmap/utils/input"
	"go.mongodb.org/mongo-driver/bson"
)

func TestLoadFile(t *testing.T) {
	doc, err := input.LoadFile("testdata/simple.yaml")
	require.NoError(t, err)
	assert.Equal(t, "t-junction", doc.Header.Name)
	require.Len(t, doc.Roads, 5)
	require.Len(t, doc.Junctions, 1)

	first := doc.Roads[0]
	assert.Equal(t, int32(-1), first.Junction)
	require.NotNil(t, first.Successor)
	assert.Equal(t, "junction", first.Successor.ElementType)
	require.Len(t, first.LaneSections, 1)
	right := first.LaneSections[0].Lanes[2]
	assert.Equal(t, int32(-1), right.ID)
	require.NotNil(t, right.Successor)
	assert.Equal(t, int32(-1), *right.Successor)
	assert.Nil(t, right.Predecessor)
	assert.InDelta(t, 3.5, right.Widths[0].A, 1e-12)
	assert.Equal(t, "white", right.RoadMarks[0].Color)
	require.Len(t, first.Signals, 1)
	assert.InDelta(t, 95, first.Signals[0].S, 1e-12)

	assert.InDelta(t, 2, doc.Junctions[0].Connections[1].Weight, 1e-12)
	assert.Equal(t, int32(-1), doc.Junctions[0].Connections[0].LaneLinks[0].To)
}

func TestUnmarshalUnknownField(t *testing.T) {
	_, err := input.Unmarshal([]byte("roads:\n  - id: 1\n    lenght: 3\n"))
	assert.Error(t, err)
	_, err = input.LoadFile("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestSaveFileRoundTrip(t *testing.T) {
	doc, err := input.LoadFile("testdata/simple.yaml")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, input.SaveFile(doc, path))
	again, err := input.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestMongoRecords(t *testing.T) {
	doc, err := input.LoadFile("testdata/simple.yaml")
	require.NoError(t, err)
	records := input.MongoRecords(doc)
	require.Len(t, records, 1+5+1)

	raw, err := bson.Marshal(records[1])
	require.NoError(t, err)
	var decoded struct {
		Class string     `bson:"class"`
		Data  input.Road `bson:"data"`
	}
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, input.ClassRoad, decoded.Class)
	assert.Equal(t, doc.Roads[0].ID, decoded.Data.ID)
	assert.Equal(t, doc.Roads[0].LaneSections[0].Lanes[2].Widths, decoded.Data.LaneSections[0].Lanes[2].Widths)
	assert.Equal(t, doc.Roads[0].Successor, decoded.Data.Successor)
}
