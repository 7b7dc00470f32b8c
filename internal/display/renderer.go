// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package display

import (
	"errors"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/tomtom215/zero2-controller/internal/hardware"
)

// Renderer pushes lines of text to a panel.
type Renderer interface {
	Render(lines []string) error
	Close() error
}

// Compose draws lines onto img, one per row, clearing it first.
func Compose(img draw.Image, face font.Face, lines []string) error {
	draw.Draw(img, img.Bounds(), &image.Uniform{C: image1bit.Off}, image.Point{}, draw.Src)

	layout := NewLayout(img.Bounds().Dx(), img.Bounds().Dy(), face)
	d := font.Drawer{Dst: img, Src: &image.Uniform{C: image1bit.On}, Face: face}
	for i, text := range lines {
		if i >= Lines {
			break
		}
		placed, err := layout.Line(i, text)
		if err != nil {
			return err
		}
		d.Dot = placed.Dot
		d.DrawString(placed.Text)
	}
	return nil
}

// OLED is an SSD1306 panel on an I2C bus.
type OLED struct {
	bus i2c.BusCloser
	dev *ssd1306.Dev
	img *image1bit.VerticalLSB
}

// OpenOLED opens the I2C bus and initializes the panel. Failures are
// *hardware.DeviceError.
func OpenOLED(busName string) (*OLED, error) {
	bus, err := hardware.OpenI2C(busName)
	if err != nil {
		return nil, err
	}
	opts := ssd1306.DefaultOpts
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		_ = bus.Close()
		return nil, &hardware.DeviceError{Device: "ssd1306", Err: err}
	}
	return &OLED{
		bus: bus,
		dev: dev,
		img: image1bit.NewVerticalLSB(dev.Bounds()),
	}, nil
}

// Render implements Renderer.
func (o *OLED) Render(lines []string) error {
	if err := Compose(o.img, Face, lines); err != nil {
		return err
	}
	return o.dev.Draw(o.dev.Bounds(), o.img, image.Point{})
}

// Close blanks the panel and releases the bus.
func (o *OLED) Close() error {
	return errors.Join(o.dev.Halt(), o.bus.Close())
}
