package services

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ludere/stepflow/pkg/schema"
)

func newHandle() schema.Handle {
	return schema.Handle(uuid.NewString())
}

var (
	_ AudioService   = (*MemoryAudio)(nil)
	_ PhysicsService = (*MemoryPhysics)(nil)
	_ InputService   = (*MemoryInput)(nil)
	_ VFXService     = (*MemoryVFX)(nil)
)

// --- audio ---

type voice struct {
	path     string
	volume   float64
	looping  bool
	paused   bool
	position float64
}

// MemoryAudio tracks voice state without producing sound.
type MemoryAudio struct {
	mu     sync.Mutex
	voices map[schema.Handle]*voice
}

// NewMemoryAudio creates an empty audio service.
func NewMemoryAudio() *MemoryAudio {
	return &MemoryAudio{voices: make(map[schema.Handle]*voice)}
}

func (a *MemoryAudio) Play(path string, volume float64, looping bool) (schema.Handle, error) {
	if path == "" {
		return "", schema.NewError(schema.ErrCodeValidation, "audio path is empty")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	h := newHandle()
	a.voices[h] = &voice{path: path, volume: volume, looping: looping}
	return h, nil
}

func (a *MemoryAudio) voice(h schema.Handle) (*voice, error) {
	v, ok := a.voices[h]
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "unknown voice handle %q", h)
	}
	return v, nil
}

func (a *MemoryAudio) Stop(h schema.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.voice(h); err != nil {
		return err
	}
	delete(a.voices, h)
	return nil
}

func (a *MemoryAudio) Pause(h schema.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, err := a.voice(h)
	if err != nil {
		return err
	}
	v.paused = true
	return nil
}

func (a *MemoryAudio) Resume(h schema.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, err := a.voice(h)
	if err != nil {
		return err
	}
	v.paused = false
	return nil
}

func (a *MemoryAudio) SetVolume(h schema.Handle, volume float64) error {
	if volume < 0 || volume > 1 {
		return schema.NewErrorf(schema.ErrCodeValidation, "volume %g out of range [0, 1]", volume)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	v, err := a.voice(h)
	if err != nil {
		return err
	}
	v.volume = volume
	return nil
}

func (a *MemoryAudio) SetLooping(h schema.Handle, looping bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, err := a.voice(h)
	if err != nil {
		return err
	}
	v.looping = looping
	return nil
}

func (a *MemoryAudio) Seek(h schema.Handle, seconds float64) error {
	if seconds < 0 {
		return schema.NewErrorf(schema.ErrCodeValidation, "seek position %g is negative", seconds)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	v, err := a.voice(h)
	if err != nil {
		return err
	}
	v.position = seconds
	return nil
}

// ActiveVoices reports the number of live voices.
func (a *MemoryAudio) ActiveVoices() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.voices)
}

// --- physics ---

type body struct {
	world    schema.Handle
	position schema.Vec3
	velocity schema.Vec3
	mass     float64
}

type world struct {
	gravity schema.Vec3
}

// MemoryPhysics integrates point masses with semi-implicit Euler and a
// ground plane at y=0. Good enough for workflows that drop objects and
// read back where they landed.
type MemoryPhysics struct {
	mu     sync.Mutex
	worlds map[schema.Handle]*world
	bodies map[schema.Handle]*body
}

// NewMemoryPhysics creates an empty physics service.
func NewMemoryPhysics() *MemoryPhysics {
	return &MemoryPhysics{
		worlds: make(map[schema.Handle]*world),
		bodies: make(map[schema.Handle]*body),
	}
}

func (p *MemoryPhysics) CreateWorld(gravity schema.Vec3) (schema.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := newHandle()
	p.worlds[h] = &world{gravity: gravity}
	return h, nil
}

func (p *MemoryPhysics) AddBody(worldHandle schema.Handle, position schema.Vec3, mass float64) (schema.Handle, error) {
	if mass <= 0 {
		return "", schema.NewErrorf(schema.ErrCodeValidation, "body mass %g must be positive", mass)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.worlds[worldHandle]; !ok {
		return "", schema.NewErrorf(schema.ErrCodeNotFound, "unknown world handle %q", worldHandle)
	}
	h := newHandle()
	p.bodies[h] = &body{world: worldHandle, position: position, mass: mass}
	return h, nil
}

func (p *MemoryPhysics) Step(worldHandle schema.Handle, dt float64) error {
	if dt <= 0 {
		return schema.NewErrorf(schema.ErrCodeValidation, "dt %g must be positive", dt)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.worlds[worldHandle]
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "unknown world handle %q", worldHandle)
	}
	for _, b := range p.bodies {
		if b.world != worldHandle {
			continue
		}
		for i := 0; i < 3; i++ {
			b.velocity[i] += w.gravity[i] * dt
			b.position[i] += b.velocity[i] * dt
		}
		if b.position[1] < 0 {
			b.position[1] = 0
			b.velocity[1] = 0
		}
	}
	return nil
}

func (p *MemoryPhysics) BodyPosition(bodyHandle schema.Handle) (schema.Vec3, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.bodies[bodyHandle]
	if !ok {
		return schema.Vec3{}, schema.NewErrorf(schema.ErrCodeNotFound, "unknown body handle %q", bodyHandle)
	}
	return b.position, nil
}

func (p *MemoryPhysics) RemoveBody(bodyHandle schema.Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.bodies[bodyHandle]; !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "unknown body handle %q", bodyHandle)
	}
	delete(p.bodies, bodyHandle)
	return nil
}

// --- input ---

// MemoryInput is a scriptable input device for tests and headless runs.
// Tests stage state with the Press/Move setters; Poll snapshots it the
// way a real backend snapshots hardware.
type MemoryInput struct {
	mu sync.Mutex

	stagedKeys    map[string]bool
	stagedButtons map[int]bool
	stagedPad     map[int]bool
	stagedAxes    map[int]float64
	stagedX       float64
	stagedY       float64

	keys    map[string]bool
	buttons map[int]bool
	pad     map[int]bool
	axes    map[int]float64
	x, y    float64
}

// NewMemoryInput creates an input service with nothing pressed.
func NewMemoryInput() *MemoryInput {
	return &MemoryInput{
		stagedKeys:    make(map[string]bool),
		stagedButtons: make(map[int]bool),
		stagedPad:     make(map[int]bool),
		stagedAxes:    make(map[int]float64),
		keys:          make(map[string]bool),
		buttons:       make(map[int]bool),
		pad:           make(map[int]bool),
		axes:          make(map[int]float64),
	}
}

// PressKey stages a key state for the next Poll.
func (in *MemoryInput) PressKey(key string, down bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.stagedKeys[key] = down
}

// PressMouseButton stages a mouse button state for the next Poll.
func (in *MemoryInput) PressMouseButton(button int, down bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.stagedButtons[button] = down
}

// MoveMouse stages the cursor position for the next Poll.
func (in *MemoryInput) MoveMouse(x, y float64) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.stagedX, in.stagedY = x, y
}

// SetGamepadAxis stages an axis value for the next Poll.
func (in *MemoryInput) SetGamepadAxis(axis int, value float64) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.stagedAxes[axis] = value
}

// PressGamepadButton stages a gamepad button state for the next Poll.
func (in *MemoryInput) PressGamepadButton(button int, down bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.stagedPad[button] = down
}

func (in *MemoryInput) Poll() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	for k, v := range in.stagedKeys {
		in.keys[k] = v
	}
	for k, v := range in.stagedButtons {
		in.buttons[k] = v
	}
	for k, v := range in.stagedPad {
		in.pad[k] = v
	}
	for k, v := range in.stagedAxes {
		in.axes[k] = v
	}
	in.x, in.y = in.stagedX, in.stagedY
	return nil
}

func (in *MemoryInput) KeyPressed(key string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.keys[key]
}

func (in *MemoryInput) MouseButtonPressed(button int) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.buttons[button]
}

func (in *MemoryInput) MousePosition() (x, y float64) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.x, in.y
}

func (in *MemoryInput) GamepadAxis(axis int) float64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.axes[axis]
}

func (in *MemoryInput) GamepadButtonPressed(button int) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.pad[button]
}

// --- vfx ---

type emitter struct {
	effect   string
	position schema.Vec3
	alive    int
}

// MemoryVFX tracks emitters with a simple particle decay model: spawn
// starts at 100 particles and each update kills a fixed share.
type MemoryVFX struct {
	mu       sync.Mutex
	emitters map[schema.Handle]*emitter
}

// NewMemoryVFX creates an empty vfx service.
func NewMemoryVFX() *MemoryVFX {
	return &MemoryVFX{emitters: make(map[schema.Handle]*emitter)}
}

func (v *MemoryVFX) Spawn(effect string, position schema.Vec3) (schema.Handle, error) {
	if effect == "" {
		return "", schema.NewError(schema.ErrCodeValidation, "effect name is empty")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	h := newHandle()
	v.emitters[h] = &emitter{effect: effect, position: position, alive: 100}
	return h, nil
}

func (v *MemoryVFX) Destroy(h schema.Handle) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.emitters[h]; !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "unknown emitter handle %q", h)
	}
	delete(v.emitters, h)
	return nil
}

func (v *MemoryVFX) UpdateParticles(h schema.Handle, dt float64) (int, error) {
	if dt <= 0 {
		return 0, schema.NewErrorf(schema.ErrCodeValidation, "dt %g must be positive", dt)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.emitters[h]
	if !ok {
		return 0, schema.NewErrorf(schema.ErrCodeNotFound, "unknown emitter handle %q", h)
	}
	killed := int(float64(e.alive) * dt)
	if killed < 1 {
		killed = 1
	}
	e.alive -= killed
	if e.alive < 0 {
		e.alive = 0
	}
	return e.alive, nil
}

// ActiveEmitters reports the number of live emitters.
func (v *MemoryVFX) ActiveEmitters() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.emitters)
}
