// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package registry

// InteractionType classifies what happens when an object is used.
type InteractionType string

const (
	// InteractionLootTable rolls on the interaction's loot table.
	InteractionLootTable InteractionType = "loot_table"

	// InteractionDoorExit moves the actor to TargetPosition on
	// TargetMap.
	InteractionDoorExit InteractionType = "door_exit"

	// InteractionDialogue opens the interaction's dialogue set.
	InteractionDialogue InteractionType = "dialogue"

	// InteractionCustom is handled by game code outside the store.
	InteractionCustom InteractionType = "custom"
)

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionLootTable, InteractionDoorExit, InteractionDialogue, InteractionCustom:
		return true
	default:
		return false
	}
}

// Interaction is one pre-baked interaction behavior. Which optional
// fields must be set depends on Type: loot_table needs LootTable,
// door_exit needs TargetMap and TargetPosition, dialogue needs
// DialogueSet. Validate enforces this.
type Interaction struct {
	Description    string             `json:"description"`
	Type           InteractionType    `json:"interaction_type"`
	TargetMap      string             `json:"target_map,omitempty"`
	TargetPosition *Position          `json:"target_position,omitempty"`
	LootTable      map[string]float64 `json:"loot_table,omitempty"`
	DialogueSet    string             `json:"dialogue_set,omitempty"`
}

// DialogueSet is the lines an NPC or sign can produce, grouped by
// mood. Greetings and Responses are required by the toolchain; the
// rest are optional flavor.
type DialogueSet struct {
	Greetings []string `json:"greetings"`
	Responses []string `json:"responses"`
	Warnings  []string `json:"warnings,omitempty"`
	Offers    []string `json:"offers,omitempty"`
	Threats   []string `json:"threats,omitempty"`
}

// InteractionRegistry holds interaction logic and dialogue. Both
// tables are small, embedded data — stored inline, served uncached.
type InteractionRegistry struct {
	Interactions map[string]Interaction `json:"interactions"`
	DialogueSets map[string]DialogueSet `json:"dialogue_sets"`
}
