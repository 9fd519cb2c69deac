// autodiary-cam - networked camera and microphone capture node
//  Copyright (C) 2026, the AutoDiary project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package camera

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
)

const (
	powerOffTime    = 500 * time.Millisecond
	powerSettleTime = 2 * time.Second
)

// PowerCycler turns the camera module's power rail off and on again as part
// of reinitialisation.
type PowerCycler interface {
	Cycle() error
}

type gpioPower struct {
	pin gpio.PinIO
}

// NewGPIOPower returns a PowerCycler driving the named GPIO pin. host.Init
// must have been called first.
func NewGPIOPower(pinName string) (PowerCycler, error) {
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("unknown camera power pin %q", pinName)
	}
	return &gpioPower{pin: pin}, nil
}

func (p *gpioPower) Cycle() error {
	log.Print("turning camera power off")
	if err := p.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("failed to set camera power pin low: %v", err)
	}
	time.Sleep(powerOffTime)

	log.Print("turning camera power on")
	if err := p.pin.Out(gpio.High); err != nil {
		return fmt.Errorf("failed to set camera power pin high: %v", err)
	}
	time.Sleep(powerSettleTime)
	return nil
}
