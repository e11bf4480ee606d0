package models

import (
	"fmt"
	"strings"
)

// Level is a zone-stage code such as "1-1". Codes outside the named
// table are custom levels (mods, community maps).
type Level string

// Layer is a world section made of an ordered list of levels
type Layer string

// Act is one of the two major acts, made of an ordered list of layers
type Act string

const (
	ActI  Act = "Act I"
	ActII Act = "Act II"
)

const (
	Prelude  Layer = "Prelude"
	Limbo    Layer = "Limbo"
	Lust     Layer = "Lust"
	Gluttony Layer = "Gluttony"
	Greed    Layer = "Greed"
	Wrath    Layer = "Wrath"
	Heresy   Layer = "Heresy"
)

type levelInfo struct {
	code  Level
	title string
}

// Declaration order is the level order.
var levelTable = []levelInfo{
	{"0-1", "Into the Fire"},
	{"0-2", "The Meatgrinder"},
	{"0-3", "Double Down"},
	{"0-4", "A One-Machine Army"},
	{"0-5", "Cerberus"},
	{"1-1", "Heart of the Sunrise"},
	{"1-2", "The Burning World"},
	{"1-3", "Hall of Sacred Remains"},
	{"1-4", "Clair de Lune"},
	{"2-1", "Bridgeburner"},
	{"2-2", "Death at 20,000 Volts"},
	{"2-3", "Sheer Heart Attack"},
	{"2-4", "Court of the Corpse King"},
	{"3-1", "Belly of the Beast"},
	{"3-2", "In the Flesh"},
	{"4-1", "Slaves to Power"},
	{"4-2", "God Damn the Sun"},
	{"4-3", "A Shot in the Dark"},
	{"4-4", "Clair de Soleil"},
	{"5-1", "In the Wake of Poseidon"},
	{"5-2", "Waves of the Starless Sea"},
	{"5-3", "Ship of Fools"},
	{"5-4", "Leviathan"},
	{"6-1", "Cry for the Weeper"},
	{"6-2", "Aesthetics of Hate"},
	{"0-S", "Something Wicked"},
	{"1-S", "The Witless"},
	{"2-S", "Fun Size"},
	{"4-S", "Clash"},
	{"5-S", "I Only Say Morning"},
	{"P-1", "Soul Survivor"},
	{"P-2", "Wait of the World"},
}

type layerInfo struct {
	layer  Layer
	levels []Level
}

var layerTable = []layerInfo{
	{Prelude, []Level{"0-1", "0-2", "0-3", "0-4", "0-5"}},
	{Limbo, []Level{"1-1", "1-2", "1-3", "1-4"}},
	{Lust, []Level{"2-1", "2-2", "2-3", "2-4"}},
	{Gluttony, []Level{"3-1", "3-2"}},
	{Greed, []Level{"4-1", "4-2", "4-3", "4-4"}},
	{Wrath, []Level{"5-1", "5-2", "5-3", "5-4"}},
	{Heresy, []Level{"6-1", "6-2"}},
}

type actInfo struct {
	act    Act
	title  string
	layers []Layer
}

var actTable = []actInfo{
	{ActI, "Infinite Hyperdeath", []Layer{Prelude, Limbo, Lust, Gluttony}},
	{ActII, "Imperfect Hatred", []Layer{Greed, Wrath, Heresy}},
}

var (
	levelIndex = make(map[Level]int, len(levelTable))
	layerIndex = make(map[Layer]int, len(layerTable))
	actIndex   = make(map[Act]int, len(actTable))
)

func init() {
	for i, l := range levelTable {
		levelIndex[l.code] = i
	}
	for i, l := range layerTable {
		layerIndex[l.layer] = i
	}
	for i, a := range actTable {
		actIndex[a.act] = i
	}
}

// CustomLevel returns a level outside the named table
func CustomLevel(name string) Level {
	return Level(name)
}

// IsCustom reports whether the level is not one of the named levels
func (l Level) IsCustom() bool {
	_, ok := levelIndex[l]
	return !ok
}

// Title returns the level's canonical title, or "" for custom levels
func (l Level) Title() string {
	if i, ok := levelIndex[l]; ok {
		return levelTable[i].title
	}
	return ""
}

// String returns "code: title" for named levels and the name for custom ones
func (l Level) String() string {
	if title := l.Title(); title != "" {
		return fmt.Sprintf("%s: %s", string(l), title)
	}
	return string(l)
}

// CompareLevel orders named levels by declaration, then custom levels by name
func CompareLevel(a, b Level) int {
	ia, aNamed := levelIndex[a]
	ib, bNamed := levelIndex[b]
	switch {
	case aNamed && bNamed:
		return ia - ib
	case aNamed:
		return -1
	case bNamed:
		return 1
	}
	return strings.Compare(string(a), string(b))
}

// ParseLayer validates a layer name
func ParseLayer(s string) (Layer, error) {
	if _, ok := layerIndex[Layer(s)]; ok {
		return Layer(s), nil
	}
	return "", fmt.Errorf("unknown layer %q", s)
}

// Levels returns the layer's levels in play order
func (l Layer) Levels() []Level {
	if i, ok := layerIndex[l]; ok {
		return append([]Level(nil), layerTable[i].levels...)
	}
	return nil
}

func (l Layer) String() string {
	return string(l)
}

// CompareLayer orders layers by declaration
func CompareLayer(a, b Layer) int {
	return layerIndex[a] - layerIndex[b]
}

// ParseAct validates an act name
func ParseAct(s string) (Act, error) {
	if _, ok := actIndex[Act(s)]; ok {
		return Act(s), nil
	}
	return "", fmt.Errorf("unknown act %q", s)
}

// Layers returns the act's layers in play order
func (a Act) Layers() []Layer {
	if i, ok := actIndex[a]; ok {
		return append([]Layer(nil), actTable[i].layers...)
	}
	return nil
}

// String returns "Act I: Infinite Hyperdeath"
func (a Act) String() string {
	if i, ok := actIndex[a]; ok {
		return fmt.Sprintf("%s: %s", string(a), actTable[i].title)
	}
	return string(a)
}

// CompareAct orders acts by declaration
func CompareAct(a, b Act) int {
	return actIndex[a] - actIndex[b]
}

// Acts returns all acts in play order
func Acts() []Act {
	acts := make([]Act, len(actTable))
	for i, a := range actTable {
		acts[i] = a.act
	}
	return acts
}

// TrackKind is the granularity of a track. Coarser kinds compare greater.
type TrackKind int

const (
	TrackLevel TrackKind = iota
	TrackLayer
	TrackAct
	TrackFullgame
)

func (k TrackKind) String() string {
	switch k {
	case TrackLevel:
		return "level"
	case TrackLayer:
		return "layer"
	case TrackAct:
		return "act"
	case TrackFullgame:
		return "fullgame"
	}
	return fmt.Sprintf("TrackKind(%d)", int(k))
}

// Track is what a run is measured against. Only the field matching Kind
// is set, so Track values can be compared with == and used as map keys.
type Track struct {
	Kind  TrackKind
	Act   Act
	Layer Layer
	Level Level
}

// FullgameTrack returns the full-game track
func FullgameTrack() Track {
	return Track{Kind: TrackFullgame}
}

// ActTrack returns the track of a whole act
func ActTrack(a Act) Track {
	return Track{Kind: TrackAct, Act: a}
}

// LayerTrack returns the track of a whole layer
func LayerTrack(l Layer) Track {
	return Track{Kind: TrackLayer, Layer: l}
}

// LevelTrack returns the track of a single level
func LevelTrack(l Level) Track {
	return Track{Kind: TrackLevel, Level: l}
}

// String returns the human readable label of the track
func (t Track) String() string {
	switch t.Kind {
	case TrackFullgame:
		return "Fullgame"
	case TrackAct:
		return t.Act.String()
	case TrackLayer:
		return t.Layer.String()
	default:
		return t.Level.String()
	}
}

// ID returns the identifier the track is written with in run documents
func (t Track) ID() string {
	switch t.Kind {
	case TrackFullgame:
		return "fullgame"
	case TrackAct:
		return string(t.Act)
	case TrackLayer:
		return string(t.Layer)
	}
	return string(t.Level)
}

// Compare orders tracks by tier (Fullgame > Act > Layer > Level), then by
// position inside the tier
func (t Track) Compare(o Track) int {
	if c := t.ShallowCompare(o); c != 0 {
		return c
	}
	switch t.Kind {
	case TrackAct:
		return CompareAct(t.Act, o.Act)
	case TrackLayer:
		return CompareLayer(t.Layer, o.Layer)
	case TrackLevel:
		return CompareLevel(t.Level, o.Level)
	}
	return 0
}

// ShallowCompare compares only the tier of two tracks
func (t Track) ShallowCompare(o Track) int {
	return int(t.Kind) - int(o.Kind)
}

// Constituents returns the tracks a run on t is made of, in play order
func (t Track) Constituents() []Track {
	var parts []Track
	switch t.Kind {
	case TrackFullgame:
		for _, a := range Acts() {
			parts = append(parts, ActTrack(a))
		}
	case TrackAct:
		for _, l := range t.Act.Layers() {
			parts = append(parts, LayerTrack(l))
		}
	case TrackLayer:
		for _, l := range t.Layer.Levels() {
			parts = append(parts, LevelTrack(l))
		}
	}
	return parts
}

// ParseTrack resolves a display label or identifier ("Fullgame", "Act I",
// "Limbo", "1-1", "1-1: Heart of the Sunrise") to a track. Anything else is
// treated as a custom level.
func ParseTrack(s string) (Track, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Track{}, fmt.Errorf("empty track")
	}
	if strings.EqualFold(s, "fullgame") {
		return FullgameTrack(), nil
	}
	for _, a := range actTable {
		if s == string(a.act) || s == a.act.String() {
			return ActTrack(a.act), nil
		}
	}
	if l, err := ParseLayer(s); err == nil {
		return LayerTrack(l), nil
	}
	for _, l := range levelTable {
		if s == string(l.code) || s == l.code.String() {
			return LevelTrack(l.code), nil
		}
	}
	return LevelTrack(CustomLevel(s)), nil
}
