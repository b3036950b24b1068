// Package loader loads Lua level content into Go structs. The Lua VM is
// discarded after loading; nothing runs Lua during play.
package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/types"
)

// rawTemplate holds a template table before compilation.
type rawTemplate struct {
	name  string
	table *lua.LTable
	order int
}

// rawLevel holds a level table before compilation.
type rawLevel struct {
	id    string
	table *lua.LTable
	order int
}

var templateFields = map[string]bool{
	"controlled_by_player":        true,
	"move_towards_player":         true,
	"affected_by_mood":            true,
	"can_be_activated":            true,
	"activated":                   true,
	"activates_in_specific_mood":  true,
	"activates_when_key_in_level": true,
	"activates_when_level_start":  true,
	"mood":                        true,
	"mood_value":                  true,
	"mood_max":                    true,
	"trigger":                     true,
	"action":                      true,
	"trigger_state":               true,
	"break_threshold":             true,
	"push_amount":                 true,
	"increase_amount":             true,
	"clear_tile":                  true,
}

var levelFields = map[string]bool{
	"title":      true,
	"mood_max":   true,
	"start_mood": true,
	"ground":     true,
	"entities":   true,
	"legend":     true,
}

// Ground layer characters. Anything else must be a legend key.
const (
	charFloor = '.'
	charWall  = '#'
	charVoid  = '_'
	charBlank = ' '
)

func reserved(ch rune) bool {
	return ch == charFloor || ch == charWall || ch == charVoid || ch == charBlank
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getInt returns an integer field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the array part of a table field as strings. Non-string
// elements are skipped.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	out := make([]string, 0, arr.MaxN())
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compile converts all collected Lua data into a Defs struct. Problems are
// recorded in ve; the returned Defs is only usable when ve has no errors.
func compile(coll *collector, ve *ValidationError) *state.Defs {
	defs := &state.Defs{
		Templates: map[string]types.EntityDef{},
		Levels:    map[string]types.LevelDef{},
	}
	ve.Errors = append(ve.Errors, coll.duplicates...)

	if coll.game == nil {
		ve.Errors = append(ve.Errors, "no Game{} definition found")
	} else {
		defs.Game = compileGame(coll.game)
	}

	for _, raw := range coll.templates {
		if _, dup := defs.Templates[raw.name]; dup {
			ve.Errors = append(ve.Errors, fmt.Sprintf("template %q defined more than once", raw.name))
			continue
		}
		defs.Templates[raw.name] = compileTemplate(raw, ve)
	}

	// Levels need the full template table for legends and clear_tile.
	var order []string
	for _, raw := range coll.levels {
		if _, dup := defs.Levels[raw.id]; dup {
			ve.Errors = append(ve.Errors, fmt.Sprintf("level %q defined more than once", raw.id))
			continue
		}
		defs.Levels[raw.id] = compileLevel(raw, defs.Templates, ve)
		order = append(order, raw.id)
	}

	// Without an explicit order, levels play in definition order.
	if coll.game != nil && len(defs.Game.Levels) == 0 {
		defs.Game.Levels = order
	}
	return defs
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Levels:  getStrings(tbl, "levels"),
	}
}

func compileTemplate(raw rawTemplate, ve *ValidationError) types.EntityDef {
	tbl := raw.table
	where := fmt.Sprintf("template %q", raw.name)
	checkFields(tbl, templateFields, where, ve)

	def := types.EntityDef{
		Name:                    raw.name,
		ControlledByPlayer:      getBool(tbl, "controlled_by_player", false),
		MoveTowardsPlayer:       getBool(tbl, "move_towards_player", false),
		AffectedByMood:          getBool(tbl, "affected_by_mood", false),
		CanBeActivated:          getBool(tbl, "can_be_activated", false),
		Activated:               getBool(tbl, "activated", false),
		ActivatesInSpecificMood: getBool(tbl, "activates_in_specific_mood", false),
		ActivatesWhenKeyInLevel: getBool(tbl, "activates_when_key_in_level", false),
		ActivatesWhenLevelStart: getBool(tbl, "activates_when_level_start", false),
		MoodValue:               getInt(tbl, "mood_value"),
		MoodMax:                 getInt(tbl, "mood_max"),
		BreakThreshold:          getInt(tbl, "break_threshold"),
		PushAmount:              getInt(tbl, "push_amount"),
		IncreaseAmount:          getInt(tbl, "increase_amount"),
		ClearTile:               getBool(tbl, "clear_tile", false),
	}
	def.Mood = parseMood(tbl, "mood", where, ve)
	def.TriggerState = parseMood(tbl, "trigger_state", where, ve)

	action, err := state.ParseAction(getString(tbl, "action"))
	if err != nil {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: %v", where, err))
	}
	def.Action = action
	// Anything with an action is a trigger unless it says otherwise.
	def.Trigger = getBool(tbl, "trigger", action != types.ActionNone)

	for _, f := range []struct {
		name string
		v    int
	}{
		{"mood_value", def.MoodValue},
		{"mood_max", def.MoodMax},
		{"break_threshold", def.BreakThreshold},
		{"push_amount", def.PushAmount},
		{"increase_amount", def.IncreaseAmount},
	} {
		if f.v < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: %s must not be negative, got %d", where, f.name, f.v))
		}
	}
	return def
}

func compileLevel(raw rawLevel, templates map[string]types.EntityDef, ve *ValidationError) types.LevelDef {
	tbl := raw.table
	where := fmt.Sprintf("level %q", raw.id)
	checkFields(tbl, levelFields, where, ve)

	lvl := types.LevelDef{
		ID:      raw.id,
		Title:   getString(tbl, "title"),
		MoodMax: getInt(tbl, "mood_max"),
	}
	if lvl.Title == "" {
		lvl.Title = raw.id
	}
	if lvl.MoodMax < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: mood_max must not be negative, got %d", where, lvl.MoodMax))
	}
	lvl.StartMood = parseMood(tbl, "start_mood", where, ve)

	legend := compileLegend(getTable(tbl, "legend"), templates, where, ve)

	ground := getStrings(tbl, "ground")
	if len(ground) == 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: ground has no rows", where))
		return lvl
	}
	height := len(ground)
	width := len([]rune(ground[0]))
	if !sameWidth(ground, width, "ground", where, ve) {
		return lvl
	}

	lvl.Ground = types.TileLayer{Width: width, Height: height, Tiles: make([]types.Tile, width*height)}
	floor := types.Tile{Exists: true, Collider: types.ColliderGrid}

	// Spawns are added column by column, bottom row first. Registry order,
	// and so AI move order, follows it.
	cells := runeRows(ground)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			row := height - 1 - y
			ch := cells[row][x]
			idx := y*width + x
			switch ch {
			case charFloor:
				lvl.Ground.Tiles[idx] = floor
			case charWall:
				lvl.Ground.Tiles[idx] = types.Tile{Exists: true, Collider: types.ColliderNone}
			case charVoid, charBlank:
			default:
				name, ok := legend[ch]
				if !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"%s: ground row %d has unknown character %q", where, row+1, ch))
					continue
				}
				lvl.Ground.Tiles[idx] = floor
				if name != "" {
					lvl.Spawns = append(lvl.Spawns, types.Spawn{Template: name, Pos: types.Vec{X: x, Y: y}})
				}
			}
		}
	}

	if rows := getStrings(tbl, "entities"); len(rows) > 0 {
		if len(rows) != height {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s: entities has %d rows, ground has %d", where, len(rows), height))
			return lvl
		}
		if !sameWidth(rows, width, "entities", where, ve) {
			return lvl
		}
		cells := runeRows(rows)
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				if name := legend[cells[height-1-y][x]]; name != "" {
					lvl.Spawns = append(lvl.Spawns, types.Spawn{Template: name, Pos: types.Vec{X: x, Y: y}})
				}
			}
		}
	}

	for _, sp := range lvl.Spawns {
		if templates[sp.Template].ClearTile {
			lvl.Ground.Tiles[sp.Pos.Y*width+sp.Pos.X] = types.Tile{}
		}
	}
	return lvl
}

func runeRows(rows []string) [][]rune {
	out := make([][]rune, len(rows))
	for i, r := range rows {
		out[i] = []rune(r)
	}
	return out
}

// compileLegend maps legend characters to template names. Entries naming an
// unknown template map to "" so their cells spawn nothing.
func compileLegend(tbl *lua.LTable, templates map[string]types.EntityDef, where string, ve *ValidationError) map[rune]string {
	legend := map[rune]string{}
	if tbl == nil {
		return legend
	}
	tbl.ForEach(func(k, v lua.LValue) {
		key, ok := k.(lua.LString)
		runes := []rune(string(key))
		if !ok || len(runes) != 1 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s: legend key %q must be a single character", where, k.String()))
			return
		}
		ch := runes[0]
		if reserved(ch) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: legend key %q is reserved", where, string(ch)))
			return
		}
		name, ok := v.(lua.LString)
		if !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s: legend %q must name a template", where, string(ch)))
			return
		}
		if _, known := templates[string(name)]; !known {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"%s: legend %q references unknown template %q, spawn skipped", where, string(ch), string(name)))
			legend[ch] = ""
			return
		}
		legend[ch] = string(name)
	})
	return legend
}

func sameWidth(rows []string, width int, layer, where string, ve *ValidationError) bool {
	ok := true
	for i, r := range rows {
		if n := len([]rune(r)); n != width {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s: %s row %d has width %d, want %d", where, layer, i+1, n, width))
			ok = false
		}
	}
	return ok
}

func parseMood(tbl *lua.LTable, key, where string, ve *ValidationError) types.Mood {
	m, err := state.ParseMood(getString(tbl, key))
	if err != nil {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: %s: %v", where, key, err))
	}
	return m
}

// checkFields warns about keys that no constructor reads, which are almost
// always typos.
func checkFields(tbl *lua.LTable, known map[string]bool, where string, ve *ValidationError) {
	var unknown []string
	tbl.ForEach(func(k, _ lua.LValue) {
		if s, ok := k.(lua.LString); !ok || !known[string(s)] {
			unknown = append(unknown, k.String())
		}
	})
	sort.Strings(unknown)
	for _, k := range unknown {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf("%s: unknown field %q ignored", where, k))
	}
}

// sortedLuaFiles returns .lua files in a directory, with game.lua first
// and the rest sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
