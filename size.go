package ggtk

import (
	"strconv"

	"github.com/gogpu/ggtk/backend"
)

// Size is a logical width and height.
type Size struct {
	Width  float64
	Height float64
}

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h float64) Size {
	return Size{Width: w, Height: h}
}

// Empty reports whether either dimension is not a positive finite number.
func (s Size) Empty() bool {
	return !backend.ValidSize(s.Width, s.Height)
}

func (s Size) String() string {
	return strconv.FormatFloat(s.Width, 'g', -1, 64) + "x" + strconv.FormatFloat(s.Height, 'g', -1, 64)
}
