// Package dice reduces statblock dice notation to hit-die counts.
package dice

import (
	"math"
	"regexp"
	"strconv"

	"github.com/cory-johannsen/srdcrawl/internal/parseerr"
)

var (
	dieModifier = regexp.MustCompile(`(d\d+)[+\-]\d+`)
	dieTerm     = regexp.MustCompile(`d\d+`)
	fraction    = regexp.MustCompile(`\((\d+)/(\d+)\)`)
	addition    = regexp.MustCompile(`(\d+\.?\d*) \+ (\d+\.?\d*)`)
	plainNumber = regexp.MustCompile(`^\d+\.?\d*$`)
)

// HitDice is a creature's hit-die count. Fractional counts come from
// fractional-HD creatures such as "1/2 d8".
type HitDice float64

// IsWhole reports whether h has no fractional part.
func (h HitDice) IsWhole() bool {
	return float64(h) == math.Trunc(float64(h))
}

// Value returns h as an int when whole and as a float64 otherwise.
func (h HitDice) Value() any {
	if h.IsWhole() {
		return int(h)
	}
	return float64(h)
}

// HitDieCount evaluates a roll specification such as "4d8+2" or
// "(1/2) + 1d4" to the number of hit dice it denotes.
//
// Bonuses on die terms are discarded and the die notation is then stripped,
// leaving the die counts. A parenthesized fraction, and then an "a + b"
// sum, each replace the working value with their result until none remain.
// The order of those two loops is fixed.
//
// Postcondition: returns the count, or a *parseerr.Error wrapping
// parseerr.ErrMalformedRollSpec when the remainder is not a plain number
// or does not fit in an int.
func HitDieCount(spec string) (HitDice, error) {
	value := dieModifier.ReplaceAllString(spec, "${1}")
	value = dieTerm.ReplaceAllString(value, "")

	for {
		m := fraction.FindStringSubmatch(value)
		if m == nil {
			break
		}
		num, err1 := strconv.Atoi(m[1])
		den, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || den == 0 {
			return 0, malformed(spec)
		}
		value = formatDecimal(float64(num) / float64(den))
	}

	for {
		m := addition.FindStringSubmatch(value)
		if m == nil {
			break
		}
		a, err1 := strconv.ParseFloat(m[1], 64)
		b, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			return 0, malformed(spec)
		}
		value = formatDecimal(a + b)
	}

	if !plainNumber.MatchString(value) {
		return 0, malformed(spec)
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f >= math.MaxInt64 {
		return 0, malformed(spec)
	}
	return HitDice(f), nil
}

func formatDecimal(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func malformed(spec string) error {
	return parseerr.New(parseerr.ErrMalformedRollSpec, "hit_dice", spec)
}
