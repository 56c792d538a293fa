package script

import (
	"strings"
	"unicode"

	lua "github.com/yuin/gopher-lua"
)

// luaFuncName derives the handler name for an event kind: "LineReceived"
// becomes "on_line_received", "line.received" likewise.
func luaFuncName(kind string) string {
	return "on_" + snakeCase(kind)
}

// snakeCase lowercases a kind name, inserting underscores at case
// boundaries and replacing every non-alphanumeric rune.
func snakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	prevLower := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevLower = true
		default:
			b.WriteByte('_')
			prevLower = false
		}
	}
	return b.String()
}

// toLua converts a Go value to a Lua value. Unsupported types map to nil.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case map[string]any:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, toLua(L, item))
		}
		return t
	case []any:
		t := L.NewTable()
		for _, item := range val {
			t.Append(toLua(L, item))
		}
		return t
	default:
		return lua.LNil
	}
}

// fromLua converts a Lua value to a Go value. Integral numbers come back
// as int64 so they satisfy integer schema fields.
func fromLua(lv lua.LValue) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		return tableToGo(v)
	default:
		return nil
	}
}

// tableToGo converts a Lua table to a []any when it is a contiguous
// 1-based array, and a map[string]any otherwise.
func tableToGo(t *lua.LTable) any {
	length := t.Len()
	if length > 0 {
		arr := make([]any, 0, length)
		isArray := true
		t.ForEach(func(k, _ lua.LValue) {
			if kn, ok := k.(lua.LNumber); !ok || float64(kn) != float64(int(kn)) || int(kn) < 1 || int(kn) > length {
				isArray = false
			}
		})
		if isArray {
			for i := 1; i <= length; i++ {
				arr = append(arr, fromLua(t.RawGetInt(i)))
			}
			return arr
		}
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			m[string(ks)] = fromLua(v)
		}
	})
	return m
}
