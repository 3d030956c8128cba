// Package loop moves player intents onto the single logic goroutine: a ring
// buffer collects commands from any number of connections and a fixed-rate
// loop drains them into the hub once per tick.
package loop

import "time"

// CommandType enumerates the intents a session may stage.
type CommandType string

const (
	CommandUse    CommandType = "use"
	CommandGive   CommandType = "give"
	CommandLook   CommandType = "look"
	CommandMove   CommandType = "move"
	CommandSelect CommandType = "select"
	CommandPlace  CommandType = "place"
	CommandBreak  CommandType = "break"
	CommandCraft  CommandType = "craft"
)

// UseCommand is a right click. Block is nil when the click hit air.
type UseCommand struct {
	OffHand bool      `json:"offHand,omitempty"`
	Block   *BlockRef `json:"block,omitempty"`
}

// GiveCommand asks for a stack of a template or material specification.
type GiveCommand struct {
	Item   string `json:"item"`
	Amount int    `json:"amount,omitempty"`
}

// LookCommand turns the actor.
type LookCommand struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// MoveCommand relocates the actor.
type MoveCommand struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// SelectCommand changes the held slot.
type SelectCommand struct {
	Slot int `json:"slot"`
}

// BlockRef addresses one block.
type BlockRef struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// CraftCommand lays inventory slots into a crafting grid, row-major. A
// negative slot leaves that grid cell empty.
type CraftCommand struct {
	Slots [9]int `json:"slots"`
}

// Command is an intent captured for processing on the next tick.
type Command struct {
	OriginTick uint64         `json:"originTick"`
	ActorID    string         `json:"actorId"`
	Type       CommandType    `json:"type"`
	IssuedAt   time.Time      `json:"issuedAt"`
	Use        *UseCommand    `json:"use,omitempty"`
	Give       *GiveCommand   `json:"give,omitempty"`
	Look       *LookCommand   `json:"look,omitempty"`
	Move       *MoveCommand   `json:"move,omitempty"`
	Select     *SelectCommand `json:"select,omitempty"`
	Block      *BlockRef      `json:"block,omitempty"`
	Craft      *CraftCommand  `json:"craft,omitempty"`
}
