package payload

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxBoxes is how many box numbers a boxes note carries.
const MaxBoxes = 2

var (
	boxBeforeParenRe = regexp.MustCompile(`(?m)(?:^|\n)\s*([0-9,]+)\s*\(`)
	parenWeightRe    = regexp.MustCompile(`\(\s*([0-9,]+)\s*\)`)
	nonNumericRe     = regexp.MustCompile(`[^0-9.\-]`)
)

// Weights are the weight facts found in a payload.
type Weights struct {
	NetLbs *float64
	Boxes  []int
}

// ExtractWeights reads the net weight and box numbers from a payload.
//
// Net weight prefers total_weight, then total_lbs, net_lbs, netlbs and net.
// Box numbers come from box_numbers ("2608,6835") or from the numbers
// preceding parentheses in the weight text ("2608 (22,060)\n6835 (20,710)").
// When no net weight key exists the parenthesised weights are summed.
// Non-positive net weights are dropped.
func ExtractWeights(d Doc) Weights {
	var w Weights

	net, ok := ParseNumber(d.String("total_weight"))
	if !ok {
		for _, k := range []string{"total_lbs", "net_lbs", "netlbs", "net"} {
			if net, ok = ParseNumber(d.String(k)); ok {
				break
			}
		}
	}

	if raw := d.String("box_numbers"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if v, ok := ParseNumber(part); ok {
				w.Boxes = append(w.Boxes, int(math.Round(v)))
			}
		}
	}

	if weightText, isText := d["weight"].(string); isText {
		if len(w.Boxes) == 0 {
			for _, m := range boxBeforeParenRe.FindAllStringSubmatch(weightText, -1) {
				if v, ok := ParseNumber(m[1]); ok {
					w.Boxes = append(w.Boxes, int(math.Round(v)))
				}
			}
		}
		if !ok {
			var sum float64
			found := false
			for _, m := range parenWeightRe.FindAllStringSubmatch(weightText, -1) {
				if v, vok := ParseNumber(m[1]); vok {
					sum += v
					found = true
				}
			}
			if found && sum > 0 {
				net, ok = sum, true
			}
		}
	}

	if len(w.Boxes) > MaxBoxes {
		w.Boxes = w.Boxes[:MaxBoxes]
	}
	if ok && net > 0 {
		w.NetLbs = &net
	}
	return w
}

// ParseNumber reads a number, ignoring thousands separators and units.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	v, err := strconv.ParseFloat(nonNumericRe.ReplaceAllString(s, ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
