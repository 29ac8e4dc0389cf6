// Package flowctx holds the shared execution context all workflow steps
// read and write. A context belongs to one logical goroutine at a time,
// typically the frame loop, and has no internal locking; hosts that share
// a context across goroutines must synchronize externally.
package flowctx

import (
	"sort"

	"github.com/ludere/stepflow/pkg/schema"
)

// Context is the mutable, dynamically-typed key-value store shared by every
// step in a run. A key holds exactly one concrete type at a time; Set with
// a different type silently replaces the previous value. Entries persist
// across steps and across frames until removed, which is how state like
// camera yaw/pitch survives frame-to-frame.
//
// Context accessors never fail. Turning a missing or mismatched value into
// an error is the calling step's job.
type Context struct {
	values map[string]schema.Value
}

// New creates an empty execution context.
func New() *Context {
	return &Context{values: make(map[string]schema.Value)}
}

// Set stores or overwrites a value under key.
func (c *Context) Set(key string, v schema.Value) {
	c.values[key] = v
}

func (c *Context) SetBool(key string, b bool)            { c.Set(key, schema.BoolValue(b)) }
func (c *Context) SetNumber(key string, n float64)       { c.Set(key, schema.NumberValue(n)) }
func (c *Context) SetString(key, s string)               { c.Set(key, schema.StringValue(s)) }
func (c *Context) SetStringList(key string, s []string)  { c.Set(key, schema.StringListValue(s)) }
func (c *Context) SetNumberList(key string, n []float64) { c.Set(key, schema.NumberListValue(n)) }
func (c *Context) SetPath(key, p string)                 { c.Set(key, schema.PathValue(p)) }
func (c *Context) SetHandle(key string, h schema.Handle) { c.Set(key, schema.HandleValue(h)) }
func (c *Context) SetPose(key string, p schema.CameraPose) {
	c.Set(key, schema.PoseValue(p))
}
func (c *Context) SetObject(key string, o schema.SceneObject) {
	c.Set(key, schema.ObjectValue(o))
}
func (c *Context) SetView(key string, v schema.ViewState) {
	c.Set(key, schema.ViewValue(v))
}

// Lookup is the type-erased accessor: it returns whatever the key holds.
// Steps that accept several types (switch, data.serialize) start here.
func (c *Context) Lookup(key string) (schema.Value, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Contains reports whether the key holds any value.
func (c *Context) Contains(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Remove deletes the key and reports whether anything was removed.
func (c *Context) Remove(key string) bool {
	if _, ok := c.values[key]; !ok {
		return false
	}
	delete(c.values, key)
	return true
}

// Len returns the number of stored entries.
func (c *Context) Len() int { return len(c.values) }

// Keys returns all stored keys, sorted.
func (c *Context) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TryBool returns the bool at key, or false on a missing key or kind
// mismatch. The two-value form is the idiom steps use to validate
// required inputs.
func (c *Context) TryBool(key string) (bool, bool) {
	v, ok := c.values[key]
	if !ok {
		return false, false
	}
	return v.Bool()
}

func (c *Context) TryNumber(key string) (float64, bool) {
	v, ok := c.values[key]
	if !ok {
		return 0, false
	}
	return v.Number()
}

func (c *Context) TryString(key string) (string, bool) {
	v, ok := c.values[key]
	if !ok {
		return "", false
	}
	return v.Text()
}

func (c *Context) TryStringList(key string) ([]string, bool) {
	v, ok := c.values[key]
	if !ok {
		return nil, false
	}
	return v.StringList()
}

func (c *Context) TryNumberList(key string) ([]float64, bool) {
	v, ok := c.values[key]
	if !ok {
		return nil, false
	}
	return v.NumberList()
}

func (c *Context) TryPath(key string) (string, bool) {
	v, ok := c.values[key]
	if !ok {
		return "", false
	}
	return v.Path()
}

func (c *Context) TryHandle(key string) (schema.Handle, bool) {
	v, ok := c.values[key]
	if !ok {
		return "", false
	}
	return v.Handle()
}

func (c *Context) TryPose(key string) (schema.CameraPose, bool) {
	v, ok := c.values[key]
	if !ok {
		return schema.CameraPose{}, false
	}
	return v.Pose()
}

func (c *Context) TryObject(key string) (schema.SceneObject, bool) {
	v, ok := c.values[key]
	if !ok {
		return schema.SceneObject{}, false
	}
	return v.Object()
}

func (c *Context) TryView(key string) (schema.ViewState, bool) {
	v, ok := c.values[key]
	if !ok {
		return schema.ViewState{}, false
	}
	return v.View()
}

// Bool returns the bool at key or def when missing or mistyped.
func (c *Context) Bool(key string, def bool) bool {
	if b, ok := c.TryBool(key); ok {
		return b
	}
	return def
}

// Number returns the number at key or def when missing or mistyped.
func (c *Context) Number(key string, def float64) float64 {
	if n, ok := c.TryNumber(key); ok {
		return n
	}
	return def
}

// Int returns the number at key truncated to int, or def.
func (c *Context) Int(key string, def int) int {
	if n, ok := c.TryNumber(key); ok {
		return int(n)
	}
	return def
}

// String returns the string at key or def when missing or mistyped.
func (c *Context) String(key, def string) string {
	if s, ok := c.TryString(key); ok {
		return s
	}
	return def
}

// Snapshot converts the whole context to plain Go data for the expression
// engines: a map of key to native value.
func (c *Context) Snapshot() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v.ToAny()
	}
	return out
}
