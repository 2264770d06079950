package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenequery/internal/physics"
)

func TestWord3RoundTrip(t *testing.T) {
	w := packWord3(0x2A, Vehicle, FlagComplexCollision|FlagReturnMaterial)
	ch, mask := ChannelAndMask(w)
	assert.Equal(t, Vehicle, ch)
	assert.Equal(t, Mask(0x2A), mask)
	assert.Equal(t, FlagComplexCollision|FlagReturnMaterial, Flags(w))
}

func TestParseChannel(t *testing.T) {
	c, err := ParseChannel("pawn")
	require.NoError(t, err)
	assert.Equal(t, Pawn, c)

	c, err = ParseChannel("Channel20")
	require.NoError(t, err)
	assert.Equal(t, Channel(20), c)
	assert.Equal(t, "Channel20", c.String())

	_, err = ParseChannel("Channel40")
	assert.Error(t, err)
	_, err = ParseChannel("nope")
	assert.Error(t, err)
}

func TestResponseBits(t *testing.T) {
	r := BlockAll()
	r.Set(Pawn, Overlap)
	r.Set(Camera, Ignore)
	assert.Zero(t, r.BlockingBits()&Pawn.Bit())
	assert.Zero(t, r.BlockingBits()&Camera.Bit())
	assert.NotZero(t, r.BlockingBits()&WorldStatic.Bit())
	assert.Equal(t, Pawn.Bit(), r.TouchingBits())
}

func TestCalcQueryHitTypeTrace(t *testing.T) {
	queryResponses := BlockAll()
	queryResponses.Set(Pawn, Overlap)

	shapeResponses := BlockAll()
	shapeResponses.Set(Visibility, Overlap)
	shapeResponses.Set(Camera, Ignore)

	tests := []struct {
		name         string
		queryChannel Channel
		shapeType    Channel
		want         physics.QueryHitType
	}{
		{"both block", WorldStatic, WorldStatic, physics.HitBlock},
		{"query touches shape type", WorldStatic, Pawn, physics.HitTouch},
		{"shape touches query channel", Visibility, WorldStatic, physics.HitTouch},
		{"shape ignores query channel", Camera, WorldStatic, physics.HitNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := CreateQueryFilterData(0, false, tt.queryChannel, queryResponses, ObjectQueryParams{}, true)
			s := CreateShapeFilterData(0, 7, tt.shapeType, shapeResponses, FlagSimpleCollision)
			assert.Equal(t, tt.want, CalcQueryHitType(q, s, true))
		})
	}
}

func TestCalcQueryHitTypeMask(t *testing.T) {
	q := CreateQueryFilterData(0x4, false, WorldStatic, BlockAll(), ObjectQueryParams{}, false)
	s := CreateShapeFilterData(0x4, 1, WorldStatic, BlockAll(), FlagSimpleCollision)
	assert.Equal(t, physics.HitNone, CalcQueryHitType(q, s, true))

	s = CreateShapeFilterData(0x8, 1, WorldStatic, BlockAll(), FlagSimpleCollision)
	assert.Equal(t, physics.HitBlock, CalcQueryHitType(q, s, true))
}

func TestCalcQueryHitTypeObjectQuery(t *testing.T) {
	objects := ObjectTypes(WorldDynamic, PhysicsBody)
	single := CreateQueryFilterData(0, false, 0, ResponseContainer{}, objects, false)
	multi := CreateQueryFilterData(0, false, 0, ResponseContainer{}, objects, true)
	dyn := CreateShapeFilterData(0, 1, WorldDynamic, ResponseContainer{}, FlagSimpleCollision)
	static := CreateShapeFilterData(0, 2, WorldStatic, BlockAll(), FlagSimpleCollision)

	assert.Equal(t, ObjectQuery, single[0])
	assert.Equal(t, physics.HitBlock, CalcQueryHitType(single, dyn, true))
	assert.Equal(t, physics.HitTouch, CalcQueryHitType(multi, dyn, true))
	assert.Equal(t, physics.HitBlock, CalcQueryHitType(multi, dyn, false))
	assert.Equal(t, physics.HitNone, CalcQueryHitType(multi, static, true))
}

func TestComplexityMatches(t *testing.T) {
	simpleQuery := CreateQueryFilterData(0, false, WorldStatic, BlockAll(), ObjectQueryParams{}, false)
	complexQuery := CreateQueryFilterData(0, true, WorldStatic, BlockAll(), ObjectQueryParams{}, false)
	simpleShape := CreateShapeFilterData(0, 1, WorldStatic, BlockAll(), FlagSimpleCollision)
	both := CreateShapeFilterData(0, 1, WorldStatic, BlockAll(), FlagSimpleCollision|FlagComplexCollision)

	assert.True(t, ComplexityMatches(simpleQuery, simpleShape))
	assert.False(t, ComplexityMatches(complexQuery, simpleShape))
	assert.True(t, ComplexityMatches(complexQuery, both))
}
