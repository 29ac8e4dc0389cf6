// Package services defines the host-engine surfaces workflow steps drive:
// audio playback, physics simulation, input polling, and particle
// effects. Steps talk to these interfaces only; the in-memory
// implementations here back tests and headless runs, and a host embeds
// its own for real output.
package services

import "github.com/ludere/stepflow/pkg/schema"

// AudioService controls playback voices. A voice handle stays valid until
// Stop; operations on a stopped or unknown handle fail.
type AudioService interface {
	Play(path string, volume float64, looping bool) (schema.Handle, error)
	Stop(h schema.Handle) error
	Pause(h schema.Handle) error
	Resume(h schema.Handle) error
	SetVolume(h schema.Handle, volume float64) error
	SetLooping(h schema.Handle, looping bool) error
	Seek(h schema.Handle, seconds float64) error
}

// PhysicsService owns simulation worlds and rigid bodies.
type PhysicsService interface {
	CreateWorld(gravity schema.Vec3) (schema.Handle, error)
	AddBody(world schema.Handle, position schema.Vec3, mass float64) (schema.Handle, error)
	Step(world schema.Handle, dt float64) error
	BodyPosition(body schema.Handle) (schema.Vec3, error)
	RemoveBody(body schema.Handle) error
}

// InputService exposes the host's input devices. Poll snapshots device
// state for the frame; the read methods report from that snapshot.
type InputService interface {
	Poll() error
	KeyPressed(key string) bool
	MouseButtonPressed(button int) bool
	MousePosition() (x, y float64)
	GamepadAxis(axis int) float64
	GamepadButtonPressed(button int) bool
}

// VFXService owns particle emitters.
type VFXService interface {
	Spawn(effect string, position schema.Vec3) (schema.Handle, error)
	Destroy(h schema.Handle) error
	UpdateParticles(h schema.Handle, dt float64) (alive int, err error)
}
