package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind enumerates the concrete types a context value can hold.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindNumber
	KindString
	KindStringList
	KindNumberList
	KindPath
	KindHandle
	KindCameraPose
	KindSceneObject
	KindViewState
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindStringList:
		return "string_list"
	case KindNumberList:
		return "number_list"
	case KindPath:
		return "path"
	case KindHandle:
		return "handle"
	case KindCameraPose:
		return "camera_pose"
	case KindSceneObject:
		return "scene_object"
	case KindViewState:
		return "view_state"
	default:
		return "invalid"
	}
}

// KindFromName maps a type name (as used by value.assert_type) to a Kind.
func KindFromName(name string) (Kind, bool) {
	for k := KindBool; k <= KindViewState; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return KindInvalid, false
}

// Vec3 is a 3-component vector.
type Vec3 [3]float64

// Mat4 is a 4x4 matrix in column-major order.
type Mat4 [16]float64

// Identity4 returns the 4x4 identity matrix.
func Identity4() Mat4 {
	return Mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

// Handle is an opaque reference to an engine-owned object (audio voice,
// physics body, vfx emitter). The engine service that issued it owns the
// object; a handle held in a context is a weak reference.
type Handle string

// CameraPose is a pure camera value. Steps read a pose and return an
// updated copy; nothing mutates a pose in place.
type CameraPose struct {
	Position Vec3    `json:"position"`
	LookAt   Vec3    `json:"look_at"`
	Up       Vec3    `json:"up"`
	FOV      float64 `json:"fov"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
}

// DefaultCameraPose returns the engine's startup camera.
func DefaultCameraPose() CameraPose {
	return CameraPose{
		Position: Vec3{0, 2, 8},
		LookAt:   Vec3{0, 0, 0},
		Up:       Vec3{0, 1, 0},
		FOV:      60,
		Near:     0.1,
		Far:      1000,
	}
}

// SceneObject tags a scene entity with its object type and, optionally, an
// explicit model transform. When ExplicitTransform is false the engine
// computes the transform itself.
type SceneObject struct {
	Type              string `json:"type"`
	Transform         Mat4   `json:"transform"`
	ExplicitTransform bool   `json:"explicit_transform"`
}

// ViewState carries the derived view and projection matrices for a frame.
type ViewState struct {
	View       Mat4 `json:"view"`
	Projection Mat4 `json:"projection"`
}

// Value is the tagged union stored in an execution context. A value holds
// exactly one concrete type; accessors return (zero, false) on a kind
// mismatch instead of panicking or converting.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string // string, path, and handle payloads
	ss   []string
	ns   []float64
	pose CameraPose
	obj  SceneObject
	view ViewState
}

func BoolValue(b bool) Value          { return Value{kind: KindBool, b: b} }
func NumberValue(n float64) Value     { return Value{kind: KindNumber, n: n} }
func StringValue(s string) Value      { return Value{kind: KindString, s: s} }
func StringListValue(s []string) Value  { return Value{kind: KindStringList, ss: s} }
func NumberListValue(n []float64) Value { return Value{kind: KindNumberList, ns: n} }
func PathValue(p string) Value        { return Value{kind: KindPath, s: p} }
func HandleValue(h Handle) Value      { return Value{kind: KindHandle, s: string(h)} }
func PoseValue(p CameraPose) Value    { return Value{kind: KindCameraPose, pose: p} }
func ObjectValue(o SceneObject) Value { return Value{kind: KindSceneObject, obj: o} }
func ViewValue(v ViewState) Value     { return Value{kind: KindViewState, view: v} }

// Kind reports the concrete type the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether the value holds anything at all.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) Number() (float64, bool) {
	return v.n, v.kind == KindNumber
}

func (v Value) Text() (string, bool) {
	return v.s, v.kind == KindString
}

func (v Value) StringList() ([]string, bool) {
	return v.ss, v.kind == KindStringList
}

func (v Value) NumberList() ([]float64, bool) {
	return v.ns, v.kind == KindNumberList
}

func (v Value) Path() (string, bool) {
	return v.s, v.kind == KindPath
}

func (v Value) Handle() (Handle, bool) {
	return Handle(v.s), v.kind == KindHandle
}

func (v Value) Pose() (CameraPose, bool) {
	return v.pose, v.kind == KindCameraPose
}

func (v Value) Object() (SceneObject, bool) {
	return v.obj, v.kind == KindSceneObject
}

func (v Value) View() (ViewState, bool) {
	return v.view, v.kind == KindViewState
}

// String renders the value for logs and debug output.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindString, KindPath, KindHandle:
		return v.s
	case KindStringList:
		return fmt.Sprintf("%v", v.ss)
	case KindNumberList:
		return fmt.Sprintf("%v", v.ns)
	case KindCameraPose:
		return fmt.Sprintf("pose(pos=%v fov=%g)", v.pose.Position, v.pose.FOV)
	case KindSceneObject:
		return fmt.Sprintf("object(%s)", v.obj.Type)
	case KindViewState:
		return "view_state"
	default:
		return "<invalid>"
	}
}

// Equal reports deep equality of two values, including kind.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindStringList:
		if len(v.ss) != len(o.ss) {
			return false
		}
		for i := range v.ss {
			if v.ss[i] != o.ss[i] {
				return false
			}
		}
		return true
	case KindNumberList:
		if len(v.ns) != len(o.ns) {
			return false
		}
		for i := range v.ns {
			if v.ns[i] != o.ns[i] {
				return false
			}
		}
		return true
	default:
		return v.b == o.b && v.n == o.n && v.s == o.s &&
			v.pose == o.pose && v.obj == o.obj && v.view == o.view
	}
}

// ToAny converts the value to plain Go data for the expression engines.
// Lists become []any so jq and CEL can traverse them.
func (v Value) ToAny() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString, KindPath:
		return v.s
	case KindHandle:
		return v.s
	case KindStringList:
		out := make([]any, len(v.ss))
		for i, s := range v.ss {
			out[i] = s
		}
		return out
	case KindNumberList:
		out := make([]any, len(v.ns))
		for i, n := range v.ns {
			out[i] = n
		}
		return out
	case KindCameraPose:
		return map[string]any{
			"position": vecToAny(v.pose.Position),
			"look_at":  vecToAny(v.pose.LookAt),
			"up":       vecToAny(v.pose.Up),
			"fov":      v.pose.FOV,
			"near":     v.pose.Near,
			"far":      v.pose.Far,
		}
	case KindSceneObject:
		return map[string]any{
			"type":               v.obj.Type,
			"explicit_transform": v.obj.ExplicitTransform,
		}
	case KindViewState:
		return map[string]any{"view": "mat4", "projection": "mat4"}
	default:
		return nil
	}
}

// FromAny coerces plain Go data (typically an expression result or decoded
// JSON) into a Value. Integer types become numbers; homogeneous []any
// become string or number lists. Returns false for unrepresentable data.
func FromAny(data any) (Value, bool) {
	switch d := data.(type) {
	case bool:
		return BoolValue(d), true
	case float64:
		return NumberValue(d), true
	case float32:
		return NumberValue(float64(d)), true
	case int:
		return NumberValue(float64(d)), true
	case int64:
		return NumberValue(float64(d)), true
	case uint64:
		return NumberValue(float64(d)), true
	case json.Number:
		f, err := d.Float64()
		if err != nil {
			return Value{}, false
		}
		return NumberValue(f), true
	case string:
		return StringValue(d), true
	case []string:
		return StringListValue(d), true
	case []float64:
		return NumberListValue(d), true
	case []any:
		return listFromAny(d)
	default:
		return Value{}, false
	}
}

func listFromAny(items []any) (Value, bool) {
	if len(items) == 0 {
		return StringListValue(nil), true
	}
	switch items[0].(type) {
	case string:
		out := make([]string, 0, len(items))
		for _, it := range items {
			s, ok := it.(string)
			if !ok {
				return Value{}, false
			}
			out = append(out, s)
		}
		return StringListValue(out), true
	default:
		out := make([]float64, 0, len(items))
		for _, it := range items {
			v, ok := FromAny(it)
			if !ok {
				return Value{}, false
			}
			n, ok := v.Number()
			if !ok {
				return Value{}, false
			}
			out = append(out, n)
		}
		return NumberListValue(out), true
	}
}

// MarshalJSON serializes the value as {"kind": ..., "value": ...} for the
// flight recorder and debug output.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"kind":  v.kind.String(),
		"value": v.ToAny(),
	})
}

func vecToAny(v Vec3) []any {
	return []any{v[0], v[1], v[2]}
}
