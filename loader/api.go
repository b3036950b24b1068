package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the content constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Game { title = "...", levels = { ... } }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		if coll.game != nil {
			coll.duplicates = append(coll.duplicates, "Game{} defined more than once")
		}
		coll.game = tbl
		return 0
	}))

	// Template "name" { ... } is curried: Template("name") returns a function
	// that takes the table.
	L.SetGlobal("Template", curried(L, func(name string, tbl *lua.LTable) {
		coll.templates = append(coll.templates, rawTemplate{
			name:  name,
			table: tbl,
			order: coll.nextSourceOrder(),
		})
	}))

	// Level "id" { ... }
	L.SetGlobal("Level", curried(L, func(id string, tbl *lua.LTable) {
		coll.levels = append(coll.levels, rawLevel{
			id:    id,
			table: tbl,
			order: coll.nextSourceOrder(),
		})
	}))
}

// curried builds a `Name "id" { ... }` style constructor.
func curried(L *lua.LState, collect func(id string, tbl *lua.LTable)) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			collect(id, L.CheckTable(1))
			return 0
		}))
		return 1
	})
}
