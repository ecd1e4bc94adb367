// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package registry

// ContainerType classifies interactive objects for the systems that
// render and script them.
type ContainerType string

const (
	ContainerChest   ContainerType = "chest"
	ContainerDoor    ContainerType = "door"
	ContainerSign    ContainerType = "sign"
	ContainerGeneric ContainerType = "generic"
)

// Valid reports whether t is a known container type. Empty is valid:
// most objects are not containers.
func (t ContainerType) Valid() bool {
	switch t {
	case "", ContainerChest, ContainerDoor, ContainerSign, ContainerGeneric:
		return true
	default:
		return false
	}
}

// ObjectBlueprint is the decoded form of an object blob: the static
// data an ObjectInstance is built from.
type ObjectBlueprint struct {
	Description   string        `json:"description"`
	Sprite        SpriteGrid    `json:"sprite,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
	ContainerType ContainerType `json:"container_type,omitempty"`
}

// ObjectRegistry holds interactive objects. Objects values are
// per-asset blobs (compressed CBOR ObjectBlueprint); Interactions maps
// each object id to the interaction triggered on use; CollisionMasks
// optionally carries a blob per object (compressed CBOR [][]bool grid)
// for objects larger than one tile.
type ObjectRegistry struct {
	Objects        map[string][]byte `json:"objects"`
	Interactions   map[string]string `json:"interactions"`
	CollisionMasks map[string][]byte `json:"collision_maps,omitempty"`
}
