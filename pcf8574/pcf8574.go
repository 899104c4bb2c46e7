// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pcf8574 provides a driver for the TI/NXP PCF8574 I2C I/O expander.
// The device provides 8 pins of "quasi-bidirectional" input/output and is
// commonly found in LCD backpacks, keypads and relay boards.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/pcf8574.pdf
//
// # Notes
//
// This chip doesn't implement a normal i2c register architecture. There is a
// single 8-bit port: writing a byte latches the output drive for all 8 pins
// at once, and reading a byte returns the instantaneous electrical level of
// all 8 pins, regardless of their intended direction. There is no direction
// register and no configurable pull resistors; a pin written 1 is released
// to its internal weak pull-up and can then be read as an input, while a pin
// written 0 actively sinks to ground.
//
// Because the chip stores no direction, this driver keeps the per-pin
// direction as local bookkeeping on Dev, together with a shadow copy of the
// last latched output byte. Writes drive only the pins configured as
// outputs; all input-configured pins are always written 1 so external
// signals remain readable. This is an intentional divergence from naive
// ports of this driver that pretend separate direction/output/input
// registers exist on the chip.
package pcf8574

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/pin"
)

const (
	// DefaultAddress is the device address with A0..A2 tied low.
	DefaultAddress uint16 = 0x20

	// portWidth is the number of pins on the device.
	portWidth = 8
)

var (
	// ErrInvalidPin is returned for pin numbers outside 0-7.
	ErrInvalidPin = errors.New("pcf8574: pin number must be in the range 0-7")
	// ErrPullNotSupported is returned when a configurable pull resistor is
	// requested. The chip only has a fixed internal pull-up.
	ErrPullNotSupported = errors.New("pcf8574: pull resistors are not configurable")
	// ErrNotImplemented is returned for features the chip cannot provide.
	ErrNotImplemented = errors.New("pcf8574: not implemented")
)

// Dev is a handle to a PCF8574 at a fixed 7-bit address.
type Dev struct {
	// Pins exposed by the device, one gpio.PinIO per port line 0-7.
	Pins []gpio.PinIO

	mu      sync.Mutex
	d       *i2c.Dev
	outputs byte // pins configured as outputs
	latch   byte // logical output byte; the chip powers up with 0xFF
	wire    byte // last byte actually written to the device
	wrote   bool
	w, r    [1]byte
	groups  []*Group
}

// New creates a new PCF8574 I/O expander on bus at the given 7-bit address
// and registers its pins with gpioreg.
func New(bus i2c.Bus, address uint16) (*Dev, error) {
	if address > 0x7f {
		return nil, fmt.Errorf("pcf8574: %#x is not a valid 7-bit address", address)
	}
	dev := &Dev{d: &i2c.Dev{Bus: bus, Addr: address}, latch: 0xff}
	dev.Pins = make([]gpio.PinIO, portWidth)
	sDev := dev.String()
	for ix := range portWidth {
		name := fmt.Sprintf("%s_GPIO%d", sDev, ix)
		dev.Pins[ix] = &Pin{dev: dev, number: ix, name: name}
		_ = gpioreg.Register(dev.Pins[ix])
	}
	return dev, nil
}

// Pin returns the pin with the given port number. It fails with
// ErrInvalidPin if number is outside 0-7.
func (dev *Dev) Pin(number int) (*Pin, error) {
	if number < 0 || number >= portWidth {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPin, number)
	}
	return dev.Pins[number].(*Pin), nil
}

// WriteRegister writes value as the single port byte. Exactly one 1-byte bus
// write is issued; unlike pin level operations the write is never skipped.
// This is the raw primitive: it bypasses direction bookkeeping, so bits that
// belong to input-configured pins are driven too. The latch shadow is
// refreshed to value.
func (dev *Dev) WriteRegister(value byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.w[0] = value
	if err := dev.d.Tx(dev.w[:], nil); err != nil {
		return fmt.Errorf("pcf8574: %w", err)
	}
	dev.latch = value
	dev.wire = value
	dev.wrote = true
	return nil
}

// ReadRegister issues one 1-byte bus read and returns the instantaneous
// electrical level of all 8 pins.
func (dev *Dev) ReadRegister() (byte, error) {
	return dev.readPort()
}

// Group returns a gpio.Group made up of the specified pin numbers. A group
// allows reads and writes of multiple pins in one bus transaction.
func (dev *Dev) Group(pinNumbers ...int) (gpio.Group, error) {
	gr := &Group{dev: dev, pins: make([]*Pin, len(pinNumbers))}
	for ix, number := range pinNumbers {
		p, err := dev.Pin(number)
		if err != nil {
			return nil, err
		}
		gr.pins[ix] = p
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.groups = append(dev.groups, gr)
	return gr, nil
}

// Halt releases all pins to their high-impedance pulled-up state, frees any
// pin groups and unregisters the pins from gpioreg. The device can no longer
// be used after this call.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.outputs = 0
	if err := dev.flush(); err != nil {
		return err
	}
	for _, gr := range dev.groups {
		_ = gr.Halt()
	}
	dev.groups = nil
	for _, p := range dev.Pins {
		_ = gpioreg.Unregister(p.Name())
	}
	dev.Pins = nil
	return nil
}

func (dev *Dev) String() string {
	return fmt.Sprintf("PCF8574_%x", dev.d.Addr)
}

// flush writes the effective port byte: latched levels on output pins, 1 on
// every input pin so the pull-up keeps it readable. A write identical to the
// last one on the wire is skipped. Caller must hold mu.
func (dev *Dev) flush() error {
	wr := (dev.latch & dev.outputs) | ^dev.outputs
	if dev.wrote && wr == dev.wire {
		return nil
	}
	dev.w[0] = wr
	if err := dev.d.Tx(dev.w[:], nil); err != nil {
		return fmt.Errorf("pcf8574: %w", err)
	}
	dev.wire = wr
	dev.wrote = true
	return nil
}

// driveOut marks the masked pins as outputs, latches value into their bits
// and flushes.
func (dev *Dev) driveOut(value, mask byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.outputs |= mask
	dev.latch = (dev.latch &^ mask) | (value & mask)
	return dev.flush()
}

// readPort performs the low level 1-byte read of the port.
func (dev *Dev) readPort() (byte, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if err := dev.d.Tx(nil, dev.r[:]); err != nil {
		return 0, fmt.Errorf("pcf8574: %w", err)
	}
	return dev.r[0], nil
}

// Group is a set of pins on one device that are read and written together.
type Group struct {
	pins []*Pin
	dev  *Dev
}

// Pins returns the set of pins that make up this group.
func (gr *Group) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(gr.pins))
	for ix, p := range gr.pins {
		pins[ix] = p
	}
	return pins
}

// ByOffset returns the GPIO pin by its offset within the group.
func (gr *Group) ByOffset(offset int) pin.Pin {
	return gr.pins[offset]
}

// ByName returns the GPIO pin with the given name, or nil.
func (gr *Group) ByName(name string) pin.Pin {
	for _, p := range gr.pins {
		if p.name == name {
			return p
		}
	}
	return nil
}

// ByNumber returns the GPIO pin by its pin number on the device, or nil.
func (gr *Group) ByNumber(number int) pin.Pin {
	for _, p := range gr.pins {
		if p.number == number {
			return p
		}
	}
	return nil
}

// Out configures the pins identified by mask as outputs and writes value to
// them in a single bus transaction. Bit i of value and mask refers to the
// group member at offset i, not to the device pin number. A zero mask means
// all pins in the group.
func (gr *Group) Out(value, mask gpio.GPIOValue) error {
	if mask == 0 {
		mask = (1 << len(gr.pins)) - 1
	}
	wr := byte(0)
	wrMask := byte(0)
	for ix, p := range gr.pins {
		if !testBit(byte(mask), ix) {
			continue
		}
		wrMask = setBit(wrMask, p.number)
		if testBit(byte(value), ix) {
			wr = setBit(wr, p.number)
		}
	}
	return gr.dev.driveOut(wr, wrMask)
}

// Read returns the current levels of the pins within the group identified by
// mask, in a single bus transaction. Pins meant to be read should have been
// released with In() first; levels of output pins reflect their latch.
func (gr *Group) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	if mask == 0 {
		mask = (1 << len(gr.pins)) - 1
	}
	port, err := gr.dev.readPort()
	if err != nil {
		return 0, err
	}
	result := byte(0)
	for ix, p := range gr.pins {
		if testBit(byte(mask), ix) && testBit(port, p.number) {
			result = setBit(result, ix)
		}
	}
	return gpio.GPIOValue(result), nil
}

// WaitForEdge is not supported. The chip has an interrupt line, but it
// cannot identify which pin changed.
func (gr *Group) WaitForEdge(timeout time.Duration) (int, gpio.Edge, error) {
	return 0, gpio.NoEdge, ErrNotImplemented
}

// Halt detaches the group. It cannot be used after this call.
func (gr *Group) Halt() error {
	gr.pins = nil
	gr.dev = nil
	return nil
}

func (gr *Group) String() string {
	s := gr.dev.String() + "[ "
	for _, p := range gr.pins {
		s += fmt.Sprintf("%d ", p.number)
	}
	return s + "]"
}

var _ gpio.Group = &Group{}
