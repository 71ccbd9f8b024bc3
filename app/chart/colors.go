package chart

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Single letter colors accepted by the plot file format.
var shortColors = map[string]color.RGBA{
	"b": {0, 0, 255, 255},
	"g": {0, 128, 0, 255},
	"r": {255, 0, 0, 255},
	"c": {0, 191, 191, 255},
	"m": {191, 0, 191, 255},
	"y": {191, 191, 0, 255},
	"k": {0, 0, 0, 255},
	"w": {255, 255, 255, 255},
}

// ParseColor resolves a color given as a single letter, a #rgb or #rrggbb
// hex string, a gray level between 0 and 1, or an SVG color name.
func ParseColor(name string) (color.Color, error) {
	name = strings.TrimSpace(name)
	if c, ok := shortColors[name]; ok {
		return c, nil
	}
	if hex, ok := strings.CutPrefix(name, "#"); ok {
		return parseHex(hex)
	}
	if level, err := strconv.ParseFloat(name, 64); err == nil {
		if level < 0 || level > 1 {
			return nil, fmt.Errorf("gray level %q out of range [0, 1]", name)
		}
		return color.Gray{Y: uint8(level*255 + 0.5)}, nil
	}
	if c, ok := colornames.Map[strings.ToLower(name)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown color %q", name)
}

func parseHex(hex string) (color.Color, error) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, fmt.Errorf("malformed hex color %q", "#"+hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("malformed hex color %q", "#"+hex)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
