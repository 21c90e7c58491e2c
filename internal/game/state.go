package game

import (
	"errors"

	"github.com/playmatatu/arcade/internal/physics"
)

// Mode selects which game a session runs.
type Mode string

const (
	ModeArena Mode = "arena"
	ModeTable Mode = "table"
)

// Status represents the current state of the game
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

var (
	ErrUnsupportedCommand = errors.New("command not supported in this mode")
	ErrGameOver           = errors.New("game is over")
	ErrNoBird             = errors.New("no bird on the sling")
	ErrBirdInFlight       = errors.New("a bird is already in flight")
	ErrNotLaunched        = errors.New("no bird in flight")
	ErrSkillUsed          = errors.New("skill already used")
	ErrInvalidPull        = errors.New("invalid pull")
	ErrBallsMoving        = errors.New("balls are still moving")
	ErrCueBallInHand      = errors.New("cue ball must be placed first")
	ErrNotBallInHand      = errors.New("not ball-in-hand")
	ErrInvalidPower       = errors.New("invalid power")
	ErrOutOfBounds        = errors.New("position out of bounds")
	ErrOverlap            = errors.New("overlapping with another ball")
	ErrUnknownMaterial    = errors.New("unknown material")
	ErrUnknownBird        = errors.New("unknown bird type")
	ErrBadRack            = errors.New("invalid rack")
)

// CommandType names a player action.
type CommandType string

const (
	CommandLaunch       CommandType = "launch"
	CommandSkill        CommandType = "skill"
	CommandStrike       CommandType = "strike"
	CommandPlaceCueBall CommandType = "place_cue_ball"
)

// Command is a player action applied between steps.
type Command struct {
	Type     CommandType  `json:"type"`
	Pull     physics.Vec2 `json:"pull"`     // launch: sling anchor minus drag point
	Angle    float64      `json:"angle"`    // strike, radians
	Power    float64      `json:"power"`    // strike, px/s
	Position physics.Vec2 `json:"position"` // place_cue_ball
}

// State is what a game exposes to renderers and the wire after a step.
type State struct {
	Mode       Mode                `json:"mode"`
	Status     Status              `json:"status"`
	Step       uint64              `json:"step"`
	Score      int                 `json:"score"`
	Bodies     []physics.BodyState `json:"bodies"`
	Particles  []Particle          `json:"particles,omitempty"`
	Birds      []string            `json:"birds,omitempty"`
	Launched   bool                `json:"launched,omitempty"`
	SkillUsed  bool                `json:"skill_used,omitempty"`
	Pocketed   []int               `json:"pocketed,omitempty"`
	Shots      int                 `json:"shots,omitempty"`
	BallInHand bool                `json:"ball_in_hand,omitempty"`
	Moving     bool                `json:"moving,omitempty"`
}

// Game is one running simulation. Implementations are not safe for concurrent use.
type Game interface {
	Mode() Mode
	Step(dt float64)
	Apply(cmd Command) error
	Snapshot() State
	// Drain returns the events produced since the last call.
	Drain() []physics.Event
}

// Block is a block placement in an arena layout.
type Block struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Material string  `json:"material"`
}

// Point is a pig placement in an arena layout.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Ball is a ball placement in a table layout. ID 0 is the cue ball.
type Ball struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}
