package scenario

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var named = map[string]color.RGBA{
	"yellow": Yellow,
	"green":  Green,
	"red":    Red,
	"orange": Orange,
	"white":  White,
	"blue":   {R: 80, G: 140, B: 255, A: 255},
	"gray":   {R: 160, G: 160, B: 160, A: 255},
}

// ParseColor accepts a color name or "#rrggbb".
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := named[s]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
