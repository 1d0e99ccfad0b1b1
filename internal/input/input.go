// Package input tracks attached input devices. Device state lives on
// the logic loop, where scripts consume it.
package input

import (
	"emberline/internal/dispatch"
	"emberline/internal/errs"
	"emberline/internal/logging"
)

// Device is one attached input device.
type Device struct {
	id   int
	name string
}

// ID returns the session-unique device id.
func (d *Device) ID() int { return d.id }

// Name returns the device's display name.
func (d *Device) Name() string { return d.name }

// Input manages attached devices. Logic-loop affine.
type Input struct {
	loop *dispatch.EventLoop
	log  *logging.Logger

	devices map[int]*Device
	nextID  int
}

// New creates the input subsystem on the logic loop.
func New(loop *dispatch.EventLoop) *Input {
	return &Input{
		loop:    loop,
		log:     logging.For("input"),
		devices: make(map[int]*Device),
	}
}

// AddDevice registers a newly attached device and returns it.
func (in *Input) AddDevice(name string) *Device {
	in.loop.AssertThreadIsCurrent()
	in.nextID++
	d := &Device{id: in.nextID, name: name}
	in.devices[d.id] = d
	in.log.Info("device attached", "id", d.id, "name", name)
	return d
}

// RemoveDevice drops a detached device.
func (in *Input) RemoveDevice(id int) {
	in.loop.AssertThreadIsCurrent()
	if _, ok := in.devices[id]; !ok {
		in.log.Error("attempt to remove unknown input device", "id", id)
		return
	}
	delete(in.devices, id)
}

// Device looks up a device by id.
func (in *Input) Device(id int) (*Device, error) {
	in.loop.AssertThreadIsCurrent()
	d, ok := in.devices[id]
	if !ok {
		return nil, errs.Newf(errs.KindDeviceNotFound,
			"input device %d not found", id)
	}
	return d, nil
}

// Count returns how many devices are attached.
func (in *Input) Count() int {
	in.loop.AssertThreadIsCurrent()
	return len(in.devices)
}

// Reset detaches everything, as on app reset.
func (in *Input) Reset() {
	in.loop.AssertThreadIsCurrent()
	in.devices = make(map[int]*Device)
	in.nextID = 0
}

// ApplyAppConfig picks up input settings.
func (in *Input) ApplyAppConfig(values map[string]any) {
	in.log.Debug("config applied")
}
