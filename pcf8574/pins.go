// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcf8574

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// Pin is a single port line of a PCF8574. The device must outlive every pin
// obtained from it.
type Pin struct {
	dev    *Dev
	number int
	name   string
}

// In configures the pin as an input. The chip has no configurable pulls, so
// only gpio.Float and gpio.PullNoChange are accepted; gpio.PullUp and
// gpio.PullDown fail with ErrPullNotSupported. Edge detection is not
// available. On the wire the pin's bit is written 1, releasing it to the
// internal pull-up so an external signal can be read.
func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	switch pull {
	case gpio.PullUp, gpio.PullDown:
		return ErrPullNotSupported
	case gpio.Float, gpio.PullNoChange:
	}
	if edge != gpio.NoEdge {
		return ErrNotImplemented
	}
	p.dev.mu.Lock()
	defer p.dev.mu.Unlock()
	p.dev.outputs = clearBit(p.dev.outputs, p.number)
	return p.dev.flush()
}

// Out configures the pin as an output driving level l. Calling Out on a pin
// currently configured as input reconfigures it; the direction change and
// the level take effect in the same bus write. Note that a High output is
// only pulled up, not driven, as the chip has no push-pull stage.
func (p *Pin) Out(l gpio.Level) error {
	p.dev.mu.Lock()
	defer p.dev.mu.Unlock()
	p.dev.outputs = setBit(p.dev.outputs, p.number)
	if l {
		p.dev.latch = setBit(p.dev.latch, p.number)
	} else {
		p.dev.latch = clearBit(p.dev.latch, p.number)
	}
	return p.dev.flush()
}

// Level reads the port and returns the instantaneous electrical level of
// the pin. Bus failures are returned unretried. Reading is legal in any
// direction: an output pin reads back its latched level, an unconfigured
// pin reads whatever the pull-up or the external circuit imposes.
func (p *Pin) Level() (gpio.Level, error) {
	v, err := p.dev.readPort()
	if err != nil {
		return gpio.Low, err
	}
	return gpio.Level(testBit(v, p.number)), nil
}

// Read implements gpio.PinIO. It cannot return an error, so a failed bus
// transaction is logged and reported as Low; use Level when the error
// matters.
func (p *Pin) Read() gpio.Level {
	l, err := p.Level()
	if err != nil {
		log.Println(err)
		return gpio.Low
	}
	return l
}

// Func returns the pin's current direction. A pin that was never configured
// reports gpio.IN since the chip powers up with all pins released.
func (p *Pin) Func() pin.Func {
	p.dev.mu.Lock()
	defer p.dev.mu.Unlock()
	if testBit(p.dev.outputs, p.number) {
		return gpio.OUT
	}
	return gpio.IN
}

// SetFunc sets the pin direction. gpio.OUT re-drives the last latched level
// for this pin. Any function other than gpio.IN or gpio.OUT fails.
func (p *Pin) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return p.In(gpio.Float, gpio.NoEdge)
	case gpio.OUT:
		p.dev.mu.Lock()
		l := gpio.Level(testBit(p.dev.latch, p.number))
		p.dev.mu.Unlock()
		return p.Out(l)
	default:
		return fmt.Errorf("pcf8574: unsupported pin function %q", string(f))
	}
}

func (p *Pin) SupportedFuncs() []pin.Func {
	return supportedFuncs[:]
}

// Pull returns gpio.Float. The fixed internal pull-up is not configurable
// and is not modeled as a pull mode.
func (p *Pin) Pull() gpio.Pull {
	return gpio.Float
}

func (p *Pin) DefaultPull() gpio.Pull {
	return gpio.Float
}

func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return ErrNotImplemented
}

// WaitForEdge is not supported, see Group.WaitForEdge.
func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	return false
}

// Halt releases the pin to its high-impedance pulled-up state.
func (p *Pin) Halt() error {
	return p.In(gpio.Float, gpio.NoEdge)
}

func (p *Pin) Name() string {
	return p.name
}

func (p *Pin) Number() int {
	return p.number
}

func (p *Pin) Function() string {
	return string(p.Func())
}

func (p *Pin) String() string {
	return p.name
}

var supportedFuncs = [...]pin.Func{gpio.IN, gpio.OUT}

var _ gpio.PinIO = &Pin{}
var _ pin.PinFunc = &Pin{}
