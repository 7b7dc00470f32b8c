// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package display

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Panel geometry of the 128x64 SSD1306.
const (
	Width      = 128
	Height     = 64
	Lines      = 4
	LineHeight = Height / Lines
)

// Face is the font used for every line.
var Face font.Face = basicfont.Face7x13

// Region is a reserved rectangle of the panel.
type Region struct {
	Name string
	Rect image.Rectangle
}

// Layout tracks the regions placed on the panel so that elements never
// overlap or leave the panel bounds.
type Layout struct {
	bounds  image.Rectangle
	face    font.Face
	regions []Region
}

// NewLayout creates an empty layout for a panel of the given size.
func NewLayout(width, height int, face font.Face) *Layout {
	return &Layout{bounds: image.Rect(0, 0, width, height), face: face}
}

// Reserve claims r. It fails when r leaves the panel or overlaps an
// existing region.
func (l *Layout) Reserve(name string, r image.Rectangle) error {
	if !r.In(l.bounds) {
		return fmt.Errorf("region %s %v exceeds panel %v", name, r, l.bounds)
	}
	for _, existing := range l.regions {
		if r.Overlaps(existing.Rect) {
			return fmt.Errorf("region %s %v overlaps %s %v", name, r, existing.Name, existing.Rect)
		}
	}
	l.regions = append(l.regions, Region{Name: name, Rect: r})
	return nil
}

// Placed is a line of text fitted into its row.
type Placed struct {
	Text string
	Dot  fixed.Point26_6
}

// Line fits text into full-width row i and reserves the row.
func (l *Layout) Line(i int, text string) (Placed, error) {
	row := image.Rect(l.bounds.Min.X, l.bounds.Min.Y+i*LineHeight, l.bounds.Max.X, l.bounds.Min.Y+(i+1)*LineHeight)
	if err := l.Reserve(fmt.Sprintf("line%d", i), row); err != nil {
		return Placed{}, err
	}
	m := l.face.Metrics()
	// Center the glyph box vertically inside the row.
	pad := (LineHeight - (m.Ascent + m.Descent).Ceil()) / 2
	baseline := row.Min.Y + pad + m.Ascent.Ceil()
	return Placed{
		Text: Fit(l.face, text, row.Dx()),
		Dot:  fixed.P(row.Min.X, baseline),
	}, nil
}

// Regions returns a copy of the reserved regions.
func (l *Layout) Regions() []Region {
	return append([]Region(nil), l.regions...)
}

// Fit truncates text so that it renders within maxWidth pixels.
func Fit(face font.Face, text string, maxWidth int) string {
	limit := fixed.I(maxWidth)
	if font.MeasureString(face, text) <= limit {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		if font.MeasureString(face, string(runes[:n])) <= limit {
			return string(runes[:n])
		}
	}
	return ""
}
