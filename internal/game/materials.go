package game

import "fmt"

// Material describes a block material.
type Material struct {
	Name        string  `json:"name"`
	Density     float64 `json:"density"`
	Restitution float64 `json:"restitution"`
	Color       string  `json:"color"`
}

var materials = map[string]Material{
	"wood":  {Name: "wood", Density: 0.6, Restitution: 0.4, Color: "#c58c4b"},
	"stone": {Name: "stone", Density: 1.2, Restitution: 0.2, Color: "#8e9399"},
	"ice":   {Name: "ice", Density: 0.4, Restitution: 0.5, Color: "#a8e4ff"},
}

// LookupMaterial returns the named material.
func LookupMaterial(name string) (Material, error) {
	m, ok := materials[name]
	if !ok {
		return Material{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	return m, nil
}

// BlockMass is w*h*density/1000.
func (m Material) BlockMass() float64 {
	return BlockWidth * BlockHeight * m.Density / 1000
}

// Skill is the ability a bird triggers once while in flight.
type Skill string

const (
	SkillSplit   Skill = "split"
	SkillBoost   Skill = "boost"
	SkillExplode Skill = "explode"
)

// BirdType describes a launchable bird.
type BirdType struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Skill Skill  `json:"skill"`
}

var birdTypes = map[string]BirdType{
	"blue":   {Name: "blue", Color: "#5bb4ff", Skill: SkillSplit},
	"yellow": {Name: "yellow", Color: "#ffd447", Skill: SkillBoost},
	"black":  {Name: "black", Color: "#3a3a3a", Skill: SkillExplode},
}

// DefaultBirds is the queue used when a layout lists none.
var DefaultBirds = []string{"blue", "yellow", "black"}

// LookupBird returns the named bird type.
func LookupBird(name string) (BirdType, error) {
	b, ok := birdTypes[name]
	if !ok {
		return BirdType{}, fmt.Errorf("%w: %q", ErrUnknownBird, name)
	}
	return b, nil
}

// Health rules: blocks carry mass*20, circles mass*15.
func blockHealth(mass float64) float64  { return mass * 20 }
func circleHealth(mass float64) float64 { return mass * 15 }
