/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package scm

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// foldCaser case-folds ASCII weekday/month/AM-PM tokens for the parser's
// case-insensitive matching. Reused from the same golang.org/x/text module
// the package already depends on for SQL collation (see strings.go's use of
// golang.org/x/text/collate).
var foldCaser = cases.Fold()

// ParseTimeError is the parser's (message, position) failure, returned
// instead of reported through an out-parameter or panic.
type ParseTimeError struct {
	Message  string
	Position int
}

func (e *ParseTimeError) Error() string {
	return e.Message
}

// amPmState is the tri-state AM/PM flag the parser resolves hour values
// against after the whole program has run.
type amPmState uint8

const (
	ampmNone amPmState = iota
	ampmAM
	ampmPM
)

// parseTimeFormat consumes str against program left-to-right, yielding the
// resolved Calendar Tuple or a ParseTimeError.
func parseTimeFormat(program *TimeProgram, str string) (timeFields, error) {
	fields := timeFields{1900, 1, 1, 0, 0, 0, 0}

	pos := 0
	for pos < len(str) && isASCIISpace(str[pos]) {
		pos++
	}

	ampm := ampmNone
	n := len(program.Specifiers)
	for i := 0; i <= n; i++ {
		literal := program.Literals[i]
		if len(str)-pos < len(literal) || str[pos:pos+len(literal)] != literal {
			return fields, &ParseTimeError{
				Message:  "Literal does not match, expected " + literal,
				Position: pos,
			}
		}
		pos += len(literal)
		if i == n {
			break
		}

		specifier := program.Specifiers[i]
		if program.IsNumeric[i] {
			start := pos
			var number uint64
			for pos < len(str) && str[pos] >= '0' && str[pos] <= '9' {
				if number > 1000000 {
					return fields, &ParseTimeError{
						Message:  "Number is out of range of format specifier",
						Position: start,
					}
				}
				number = number*10 + uint64(str[pos]-'0')
				pos++
			}
			if pos == start {
				return fields, &ParseTimeError{Message: "Expected a number", Position: start}
			}
			if err := storeNumericField(&fields, specifier, number, start); err != nil {
				return fields, err
			}
		} else {
			var err error
			pos, err = parseEnumeratedField(&fields, &ampm, specifier, str, pos)
			if err != nil {
				return fields, err
			}
		}
	}

	for pos < len(str) && isASCIISpace(str[pos]) {
		pos++
	}
	if pos != len(str) {
		return fields, &ParseTimeError{
			Message:  "Full specifier did not match: trailing characters",
			Position: pos,
		}
	}

	resolveAMPM(&fields, ampm)
	return fields, nil
}

func isASCIISpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\v' || b == '\f' || b == '\r'
}

// storeNumericField validates number against specifier's domain and
// stores it into the Calendar Tuple.
func storeNumericField(fields *timeFields, specifier TimeSpecifier, number uint64, position int) error {
	switch specifier {
	case SpecDayOfMonthPadded, SpecDayOfMonth:
		if number < 1 || number > 31 {
			return &ParseTimeError{Message: "Day out of range, expected a value between 1 and 31", Position: position}
		}
		fields[2] = int(number)
	case SpecMonthPadded, SpecMonth:
		if number < 1 || number > 12 {
			return &ParseTimeError{Message: "Month out of range, expected a value between 1 and 12", Position: position}
		}
		fields[1] = int(number)
	case SpecYearWithoutCenturyPadded, SpecYearWithoutCentury:
		if number >= 100 {
			return &ParseTimeError{Message: "Year without century out of range, expected a value between 0 and 99", Position: position}
		}
		if number >= 69 {
			fields[0] = 1900 + int(number)
		} else {
			fields[0] = 2000 + int(number)
		}
	case SpecYear:
		fields[0] = int(number)
	case SpecHour24Padded, SpecHour24:
		if number >= 24 {
			return &ParseTimeError{Message: "Hour out of range, expected a value between 0 and 23", Position: position}
		}
		fields[3] = int(number)
	case SpecHour12Padded, SpecHour12:
		if number < 1 || number > 12 {
			return &ParseTimeError{Message: "Hour12 out of range, expected a value between 1 and 12", Position: position}
		}
		fields[3] = int(number)
	case SpecMinutePadded, SpecMinute:
		if number >= 60 {
			return &ParseTimeError{Message: "Minutes out of range, expected a value between 0 and 59", Position: position}
		}
		fields[4] = int(number)
	case SpecSecondPadded, SpecSecond:
		if number >= 60 {
			return &ParseTimeError{Message: "Seconds out of range, expected a value between 0 and 59", Position: position}
		}
		fields[5] = int(number)
	case SpecMicrosecond:
		if number >= 1000000 {
			return &ParseTimeError{Message: "Microseconds out of range, expected a value between 0 and 999999", Position: position}
		}
		fields[6] = int(number)
	default:
		return &ParseTimeError{Message: "Unsupported specifier for strptime", Position: position}
	}
	return nil
}

// parseEnumeratedField consumes the enumerated-token specifiers: %p, %a/%A
// (matched but not stored), %b/%B. Returns the advanced position.
func parseEnumeratedField(fields *timeFields, ampm *amPmState, specifier TimeSpecifier, str string, pos int) (int, error) {
	switch specifier {
	case SpecAMPM:
		if len(str)-pos < 2 {
			return pos, &ParseTimeError{Message: "Expected AM/PM", Position: pos}
		}
		paChar := foldCaser.String(str[pos : pos+1])
		mChar := foldCaser.String(str[pos+1 : pos+2])
		if mChar != "m" {
			return pos, &ParseTimeError{Message: "Expected AM/PM", Position: pos}
		}
		switch paChar {
		case "p":
			*ampm = ampmPM
		case "a":
			*ampm = ampmAM
		default:
			return pos, &ParseTimeError{Message: "Expected AM/PM", Position: pos}
		}
		return pos + 2, nil
	case SpecAbbreviatedWeekday:
		_, newPos, ok := matchCollection(str, pos, dayNamesAbbreviated[:])
		if !ok {
			return pos, &ParseTimeError{Message: "Expected an abbreviated day name (Mon, Tue, Wed, Thu, Fri, Sat, Sun)", Position: pos}
		}
		return newPos, nil
	case SpecFullWeekday:
		_, newPos, ok := matchCollection(str, pos, dayNames[:])
		if !ok {
			return pos, &ParseTimeError{Message: "Expected a full day name (Monday, Tuesday, etc...)", Position: pos}
		}
		return newPos, nil
	case SpecAbbreviatedMonth:
		idx, newPos, ok := matchCollection(str, pos, monthNamesAbbreviated[:])
		if !ok {
			return pos, &ParseTimeError{Message: "Expected an abbreviated month name (Jan, Feb, Mar, etc..)", Position: pos}
		}
		fields[1] = idx + 1
		return newPos, nil
	case SpecFullMonth:
		idx, newPos, ok := matchCollection(str, pos, monthNames[:])
		if !ok {
			return pos, &ParseTimeError{Message: "Expected a full month name (January, February, etc...)", Position: pos}
		}
		fields[1] = idx + 1
		return newPos, nil
	default:
		return pos, &ParseTimeError{Message: "Unsupported specifier for strptime", Position: pos}
	}
}

// matchCollection case-insensitively matches the first entry of collection
// (in table order) found at str[pos:], returning its index and the position
// just past the match.
func matchCollection(str string, pos int, collection []string) (int, int, bool) {
	for idx, entry := range collection {
		if pos+len(entry) > len(str) {
			continue
		}
		if foldCaser.String(str[pos:pos+len(entry)]) == foldCaser.String(entry) {
			return idx, pos + len(entry), true
		}
	}
	return -1, pos, false
}

// resolveAMPM applies the AM/PM flag to the parsed 12-hour value.
func resolveAMPM(fields *timeFields, ampm amPmState) {
	switch ampm {
	case ampmAM:
		if fields[3] == 12 {
			fields[3] = 0
		}
	case ampmPM:
		if fields[3] != 12 {
			fields[3] += 12
		}
	}
}

// formatCaretError renders a two-line "input, then a caret under the
// failing column" message for a parse failure.
func formatCaretError(input string, position int) string {
	return fmt.Sprintf("%s\n%*s^", input, position, "")
}
