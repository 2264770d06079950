package filter

import (
	"scenequery/internal/physics"
)

// Word0 query kinds.
const (
	ObjectQuery uint32 = 0
	TraceQuery  uint32 = 1
)

// Word3 flags, low 21 bits.
const (
	FlagSimpleCollision  uint32 = 0x1
	FlagComplexCollision uint32 = 0x2
	// FlagReturnMaterial marks shapes whose per-face materials are meaningful.
	FlagReturnMaterial uint32 = 0x4

	flagBits     = 21
	channelShift = 21
	channelBits  = 5
	maskShift    = 26
)

// Mask is a 6-bit ignore mask; queries and shapes sharing a bit never collide.
type Mask uint8

func packWord3(mask Mask, channel Channel, flags uint32) uint32 {
	return uint32(mask&0x3F)<<maskShift | (uint32(channel)&(1<<channelBits-1))<<channelShift | flags&(1<<flagBits-1)
}

// ChannelAndMask unpacks word3.
func ChannelAndMask(word3 uint32) (Channel, Mask) {
	return Channel((word3 >> channelShift) & (1<<channelBits - 1)), Mask(word3 >> maskShift)
}

// Flags returns the low flag bits of word3.
func Flags(word3 uint32) uint32 {
	return word3 & (1<<flagBits - 1)
}

func complexityFlag(traceComplex bool) uint32 {
	if traceComplex {
		return FlagComplexCollision
	}
	return FlagSimpleCollision
}

// CreateQueryFilterData packs the query side. Object queries carry the object
// set in word1 and the multi flag in the channel field; trace queries carry
// blocking and touching channel sets in word1 and word2.
func CreateQueryFilterData(mask Mask, traceComplex bool, channel Channel, responses ResponseContainer, objects ObjectQueryParams, multi bool) physics.FilterData {
	var fd physics.FilterData
	flags := complexityFlag(traceComplex)
	if objects.IsValid() {
		multiBit := Channel(0)
		if multi {
			multiBit = 1
		}
		fd[0] = ObjectQuery
		fd[1] = objects.ObjectTypes
		fd[3] = packWord3(mask, multiBit, flags)
		return fd
	}
	fd[0] = TraceQuery
	fd[1] = responses.BlockingBits()
	fd[2] = responses.TouchingBits()
	fd[3] = packWord3(mask, channel, flags)
	return fd
}

// CreateShapeFilterData packs the shape side: owner id, how the shape responds
// to each channel, and its object type.
func CreateShapeFilterData(mask Mask, ownerID uint32, objectType Channel, responses ResponseContainer, flags uint32) physics.FilterData {
	return physics.FilterData{
		ownerID,
		responses.BlockingBits(),
		responses.TouchingBits(),
		packWord3(mask, objectType, flags),
	}
}

// ComplexityMatches reports whether the shape takes part in queries of the
// query's complexity (simple or complex collision).
func ComplexityMatches(query, shape physics.FilterData) bool {
	q := Flags(query[3]) & (FlagSimpleCollision | FlagComplexCollision)
	s := Flags(shape[3]) & (FlagSimpleCollision | FlagComplexCollision)
	return q&s != 0
}

// CalcQueryHitType classifies a shape against a query. preFilter is set when
// called before the exact test: object queries then report touches in multi
// mode so that every matching object is collected.
func CalcQueryHitType(query, shape physics.FilterData, preFilter bool) physics.QueryHitType {
	queryChannel, queryMask := ChannelAndMask(query[3])
	shapeChannel, shapeMask := ChannelAndMask(shape[3])
	if queryMask&shapeMask != 0 {
		return physics.HitNone
	}
	shapeBit := shapeChannel.Bit()

	if query[0] == ObjectQuery {
		multi := queryChannel != 0
		if shapeBit&query[1] == 0 {
			return physics.HitNone
		}
		if preFilter && multi {
			return physics.HitTouch
		}
		return physics.HitBlock
	}

	querier := queryResponse(query, shapeBit)
	target := shapeResponse(shape, queryChannel.Bit())
	return min(querier, target)
}

// queryResponse is how the query treats the shape's object type.
func queryResponse(query physics.FilterData, shapeBit uint32) physics.QueryHitType {
	switch {
	case query[1]&shapeBit != 0:
		return physics.HitBlock
	case query[2]&shapeBit != 0:
		return physics.HitTouch
	}
	return physics.HitNone
}

// shapeResponse is how the shape treats the query's channel.
func shapeResponse(shape physics.FilterData, channelBit uint32) physics.QueryHitType {
	switch {
	case shape[1]&channelBit != 0:
		return physics.HitBlock
	case shape[2]&channelBit != 0:
		return physics.HitTouch
	}
	return physics.HitNone
}
