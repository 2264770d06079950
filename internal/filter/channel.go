// Package filter defines collision channels and responses, and packs them into
// the four-word filter blobs carried by queries and shapes.
package filter

import (
	"fmt"
	"strings"
)

// Channel is a collision channel or object type. At most 32 exist.
type Channel uint8

const (
	WorldStatic Channel = iota
	WorldDynamic
	Pawn
	Visibility
	Camera
	PhysicsBody
	Vehicle
	Destructible

	// ChannelCount is the number of addressable channels.
	ChannelCount = 32
)

var channelNames = [...]string{
	WorldStatic:  "WorldStatic",
	WorldDynamic: "WorldDynamic",
	Pawn:         "Pawn",
	Visibility:   "Visibility",
	Camera:       "Camera",
	PhysicsBody:  "PhysicsBody",
	Vehicle:      "Vehicle",
	Destructible: "Destructible",
}

func (c Channel) String() string {
	if int(c) < len(channelNames) {
		return channelNames[c]
	}
	return fmt.Sprintf("Channel%d", uint8(c))
}

// Bit returns the channel's bit in a 32-bit channel set.
func (c Channel) Bit() uint32 {
	return 1 << (uint32(c) & 31)
}

// ParseChannel accepts a built-in name (case-insensitive) or ChannelN.
func ParseChannel(s string) (Channel, error) {
	for i, name := range channelNames {
		if strings.EqualFold(s, name) {
			return Channel(i), nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(strings.ToLower(s), "channel%d", &n); err == nil && n >= 0 && n < ChannelCount {
		return Channel(n), nil
	}
	return 0, fmt.Errorf("unknown collision channel %q", s)
}

// Response is how a channel reacts to another.
type Response uint8

const (
	Ignore Response = iota
	Overlap
	Block
)

func (r Response) String() string {
	switch r {
	case Overlap:
		return "Overlap"
	case Block:
		return "Block"
	}
	return "Ignore"
}

func ParseResponse(s string) (Response, error) {
	switch strings.ToLower(s) {
	case "ignore":
		return Ignore, nil
	case "overlap", "touch":
		return Overlap, nil
	case "block":
		return Block, nil
	}
	return Ignore, fmt.Errorf("unknown collision response %q", s)
}

// ResponseContainer holds one response per channel.
type ResponseContainer [ChannelCount]Response

// BlockAll returns a container blocking every channel.
func BlockAll() ResponseContainer {
	var r ResponseContainer
	r.SetAll(Block)
	return r
}

func (r *ResponseContainer) SetAll(resp Response) {
	for i := range r {
		r[i] = resp
	}
}

func (r *ResponseContainer) Set(c Channel, resp Response) {
	r[c&31] = resp
}

func (r ResponseContainer) Get(c Channel) Response {
	return r[c&31]
}

// BlockingBits is the channel set answered with Block.
func (r ResponseContainer) BlockingBits() uint32 {
	var bits uint32
	for i, resp := range r {
		if resp == Block {
			bits |= Channel(i).Bit()
		}
	}
	return bits
}

// TouchingBits is the channel set answered with Overlap.
func (r ResponseContainer) TouchingBits() uint32 {
	var bits uint32
	for i, resp := range r {
		if resp == Overlap {
			bits |= Channel(i).Bit()
		}
	}
	return bits
}

// ObjectQueryParams selects targets by object type instead of channel responses.
type ObjectQueryParams struct {
	ObjectTypes uint32
}

func ObjectTypes(channels ...Channel) ObjectQueryParams {
	var p ObjectQueryParams
	for _, c := range channels {
		p.AddObjectType(c)
	}
	return p
}

func (p *ObjectQueryParams) AddObjectType(c Channel) {
	p.ObjectTypes |= c.Bit()
}

func (p ObjectQueryParams) IsValid() bool { return p.ObjectTypes != 0 }
