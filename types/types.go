// Package types defines the shared data structures for the moodgrid engine.
// It holds plain data; behaviour lives in the engine packages.
package types

// Vec is an integer grid coordinate or a unit direction.
type Vec struct {
	X int
	Y int
}

// Unit directions. Y grows upward, so Up is {0, 1}.
var (
	Up    = Vec{X: 0, Y: 1}
	Down  = Vec{X: 0, Y: -1}
	Left  = Vec{X: -1, Y: 0}
	Right = Vec{X: 1, Y: 0}
)

// Mood is an entity's behavioural state.
type Mood int

const (
	MoodNone Mood = iota
	MoodCalm
	MoodAngry
)

// TriggerAction is the effect attached to a stationary trigger entity.
type TriggerAction int

const (
	ActionNone TriggerAction = iota
	ActionExit
	ActionBreak
	ActionKey
	ActionFall
	ActionBurn
	ActionActivateBurn
	ActionPush
	ActionIncreaseMood
)

// ColliderKind mirrors the tile collider setting of the ground layer.
// A tile with ColliderNone is decoration and cannot be stood on.
type ColliderKind int

const (
	ColliderNone ColliderKind = iota
	ColliderSprite
	ColliderGrid
)

// Tile is one cell of a level's ground layer.
type Tile struct {
	Exists   bool
	Collider ColliderKind
}

// TileLayer is the authored ground layer. Tiles are stored row-major with
// y = 0 as the bottom row.
type TileLayer struct {
	Width  int
	Height int
	Tiles  []Tile
}

// EntityDef is a reusable entity template.
type EntityDef struct {
	Name                    string
	ControlledByPlayer      bool
	MoveTowardsPlayer       bool
	AffectedByMood          bool
	CanBeActivated          bool
	Activated               bool
	ActivatesInSpecificMood bool
	ActivatesWhenKeyInLevel bool
	ActivatesWhenLevelStart bool
	Mood                    Mood
	MoodValue               int // 0 means "start at the mood max"
	MoodMax                 int // 0 means "use the level mood max"
	Trigger                 bool
	Action                  TriggerAction
	TriggerState            Mood
	BreakThreshold          int
	PushAmount              int
	IncreaseAmount          int
	ClearTile               bool // spawning on the ground layer removes the tile
}

// Spawn places a template at a grid position.
type Spawn struct {
	Template string
	Pos      Vec
}

// LevelDef is the immutable description of one level.
type LevelDef struct {
	ID        string
	Title     string
	Ground    TileLayer
	Spawns    []Spawn
	MoodMax   int
	StartMood Mood
}

// GameDef holds game metadata from Lua.
type GameDef struct {
	Title   string
	Author  string
	Version string
	Levels  []string // play order
}

// Entity is the simulation record of one grid occupant.
type Entity struct {
	ID     int
	Name   string
	Pos    Vec
	Facing Vec

	ControlledByPlayer      bool
	MoveTowardsPlayer       bool
	AffectedByMood          bool
	Dead                    bool
	CanBeActivated          bool
	Activated               bool
	ActivatesInSpecificMood bool
	ActivatesWhenKeyInLevel bool
	ActivatesWhenLevelStart bool

	Mood      Mood
	MoodValue int
	MoodMax   int

	Trigger        bool
	Action         TriggerAction
	TriggerState   Mood
	BreakProgress  int
	BreakThreshold int
	PushAmount     int
	IncreaseAmount int
}

// Effect is a single atomic state mutation produced by the trigger resolver.
type Effect struct {
	Type   string // "exit", "break_progress", "break", "collect_key", "kill", "activate", "convert", "push", "increase_mood"
	Actor  int
	Target int
	Amount int
	Cause  string
	Action TriggerAction
}

// Event is emitted for presentation and other subscribers.
type Event struct {
	Type   string
	Entity int
	Target int
	From   Vec
	To     Vec
	Dir    Vec
	Cause  string
	Action TriggerAction
	Mood   Mood
}

// Outcome classifies how a turn ended.
type Outcome int

const (
	OutcomeContinue Outcome = iota // turn resolved, level goes on
	OutcomeRejected                // input ignored or move blocked
	OutcomeBusy                    // another turn is in flight
	OutcomeRetry                   // player died
	OutcomeExit                    // exit reached
)

// Result is the output of a single turn.
type Result struct {
	Outcome Outcome
	Moved   bool
	Effects []Effect
	Events  []Event
}

// Intent is a parsed player input.
type Intent struct {
	Verb string // "move", "retry", "pause", "skip", "start", "levels", "select", "back", "quit"
	Dir  Vec
	Arg  int
}
