/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package size parses and formats human-readable byte sizes such as
// "1GiB" or "512MB" (spec §6.4, the max_size configuration key).
package size

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Size is a byte count.
type Size uint64

const (
	SizeNul  Size = 0
	SizeUnit Size = 1
	SizeKilo Size = SizeUnit << 10
	SizeMega Size = SizeKilo << 10
	SizeGiga Size = SizeMega << 10
	SizeTera Size = SizeGiga << 10
	SizePeta Size = SizeTera << 10
	SizeExa  Size = SizePeta << 10
)

const (
	FormatRound0 = "%.0f"
	FormatRound1 = "%.1f"
	FormatRound2 = "%.2f"
	FormatRound3 = "%.3f"
)

var defaultUnit rune = 'B'

// SetDefaultUnit changes the byte-unit suffix used by String and Code.
// Passing 0 resets it to 'B'.
func SetDefaultUnit(r rune) {
	if r == 0 {
		r = 'B'
	}
	defaultUnit = r
}

var units = []struct {
	suffixes []string
	size     Size
}{
	{[]string{"EB", "EIB", "E"}, SizeExa},
	{[]string{"PB", "PIB", "P"}, SizePeta},
	{[]string{"TB", "TIB", "T"}, SizeTera},
	{[]string{"GB", "GIB", "G"}, SizeGiga},
	{[]string{"MB", "MIB", "M"}, SizeMega},
	{[]string{"KB", "KIB", "K"}, SizeKilo},
	{[]string{"B"}, SizeUnit},
}

// Parse reads a human size string like "1GiB", "512MB" or "2.5K".
// Units are binary (1024-based) regardless of the "B"/"iB" spelling used.
func Parse(s string) (Size, error) {
	return ParseByte([]byte(s))
}

// ParseSize is a deprecated alias for Parse.
func ParseSize(s string) (Size, error) {
	return Parse(s)
}

// ParseByte is Parse over a byte slice.
func ParseByte(b []byte) (Size, error) {
	s := strings.TrimSpace(string(b))
	s = strings.Trim(s, `"'`)
	s = strings.TrimSpace(s)

	if s == "" {
		return 0, fmt.Errorf("invalid size: empty input")
	}

	negative := false
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	} else if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	if negative {
		return 0, fmt.Errorf("invalid size: negative values are not allowed")
	}

	i := 0
	for i < len(s) && (s[i] == '.' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("invalid size %q: missing numeric value", s)
	}
	if i == len(s) {
		return 0, fmt.Errorf("invalid size %q: missing unit", s)
	}

	numStr := s[:i]
	unitStr := strings.ToUpper(strings.TrimSpace(s[i:]))

	n, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	mult, ok := lookupUnit(unitStr)
	if !ok {
		return 0, fmt.Errorf("invalid size %q: unknown unit %q", s, unitStr)
	}

	v := n * float64(mult)
	if v > float64(math.MaxUint64) {
		return 0, fmt.Errorf("invalid size %q: overflow", s)
	}

	return Size(v), nil
}

// ParseByteAsSize is a deprecated alias for ParseByte.
func ParseByteAsSize(b []byte) (Size, error) {
	return ParseByte(b)
}

// GetSize is a deprecated alias returning ok=false instead of an error.
func GetSize(s string) (Size, bool) {
	v, err := Parse(s)
	if err != nil {
		return SizeNul, false
	}
	return v, true
}

func lookupUnit(unitStr string) (Size, bool) {
	for _, u := range units {
		for _, suf := range u.suffixes {
			if unitStr == suf {
				return u.size, true
			}
		}
	}
	return 0, false
}

// Uint64 returns the size as a plain byte count.
func (s Size) Uint64() uint64 {
	return uint64(s)
}

// Format renders s using layout (e.g. FormatRound1) followed by the
// matching binary unit suffix.
func (s Size) Format(layout string) string {
	v := float64(s)
	unit := string(defaultUnit)

	switch {
	case s >= SizeExa:
		return fmt.Sprintf(layout, v/float64(SizeExa)) + "E" + unit
	case s >= SizePeta:
		return fmt.Sprintf(layout, v/float64(SizePeta)) + "P" + unit
	case s >= SizeTera:
		return fmt.Sprintf(layout, v/float64(SizeTera)) + "T" + unit
	case s >= SizeGiga:
		return fmt.Sprintf(layout, v/float64(SizeGiga)) + "G" + unit
	case s >= SizeMega:
		return fmt.Sprintf(layout, v/float64(SizeMega)) + "M" + unit
	case s >= SizeKilo:
		return fmt.Sprintf(layout, v/float64(SizeKilo)) + "K" + unit
	default:
		return fmt.Sprintf(layout, v) + unit
	}
}

// Code returns the unit suffix alone (no numeric value), using unit
// instead of the default when unit is non-zero.
func (s Size) Code(unit rune) string {
	if unit == 0 {
		unit = defaultUnit
	}
	switch {
	case s >= SizeExa:
		return "E" + string(unit)
	case s >= SizePeta:
		return "P" + string(unit)
	case s >= SizeTera:
		return "T" + string(unit)
	case s >= SizeGiga:
		return "G" + string(unit)
	case s >= SizeMega:
		return "M" + string(unit)
	case s >= SizeKilo:
		return "K" + string(unit)
	default:
		return string(unit)
	}
}

// String implements fmt.Stringer with one decimal of precision.
func (s Size) String() string {
	return s.Format(FormatRound1)
}

// MarshalText implements encoding.TextMarshaler.
func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for viper/mapstructure
// decoding of config values like max_size.
func (s *Size) UnmarshalText(b []byte) error {
	v, err := ParseByte(b)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
