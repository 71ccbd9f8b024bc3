package plotfile

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultBarWidth = 0.35
	DefaultColor    = "k"
	DefaultPosition = "best"

	// logTrueToken is the only value of the log directive that enables a
	// log-scaled value axis.
	logTrueToken = "true"
)

// Directives holds the display settings read from the header of a plot file.
type Directives struct {
	XLabel   string   `json:"xlabel"`
	YLabel   string   `json:"ylabel"`
	Title    string   `json:"title"`
	BarWidth float64  `json:"bar_width"`
	Position string   `json:"position"`
	Labels   []string `json:"labels"`
	Colors   []string `json:"colors"`
	LogScale bool     `json:"log_scale"`
}

func defaultDirectives(barWidth float64) Directives {
	return Directives{
		BarWidth: barWidth,
		Position: DefaultPosition,
	}
}

type directiveSetter func(d *Directives, value string, line int) error

// directiveTable maps a keyword, including its trailing space, to the setter
// that stores the rest of the line.
var directiveTable = []struct {
	keyword string
	set     directiveSetter
}{
	{"xlabel ", func(d *Directives, v string, _ int) error {
		d.XLabel = strings.TrimSpace(v)
		return nil
	}},
	{"ylabel ", func(d *Directives, v string, _ int) error {
		d.YLabel = strings.TrimSpace(v)
		return nil
	}},
	{"title ", func(d *Directives, v string, _ int) error {
		d.Title = strings.TrimSpace(v)
		return nil
	}},
	{"barwidth ", func(d *Directives, v string, line int) error {
		tok := strings.TrimSpace(v)
		w, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
			return &MalformedNumberError{Label: "barwidth", Token: tok, Line: line}
		}
		d.BarWidth = w
		return nil
	}},
	{"labels ", func(d *Directives, v string, _ int) error {
		d.Labels = append(d.Labels, strings.Fields(v)...)
		return nil
	}},
	{"colors ", func(d *Directives, v string, _ int) error {
		d.Colors = append(d.Colors, strings.Fields(v)...)
		return nil
	}},
	{"position ", func(d *Directives, v string, _ int) error {
		d.Position = strings.TrimSpace(v)
		return nil
	}},
	{"log ", func(d *Directives, v string, _ int) error {
		d.LogScale = strings.TrimSpace(v) == logTrueToken
		return nil
	}},
}

// parseDirectives reads header lines up to and including the arguments
// sentinel. Unrecognized lines are ignored.
func parseDirectives(lr *lineReader, barWidth float64) (Directives, error) {
	d := defaultDirectives(barWidth)
	for {
		line, ok := lr.next()
		if !ok {
			return d, lr.err()
		}
		if isBlank(line) {
			continue
		}
		matched, err := applyDirective(&d, line, lr.line)
		if err != nil {
			return Directives{}, err
		}
		if matched {
			continue
		}
		if strings.Contains(line, argumentsSentinel) {
			return d, nil
		}
	}
}

func applyDirective(d *Directives, line string, lineNum int) (bool, error) {
	for _, dt := range directiveTable {
		if value, found := strings.CutPrefix(line, dt.keyword); found {
			return true, dt.set(d, value, lineNum)
		}
	}
	return false, nil
}
