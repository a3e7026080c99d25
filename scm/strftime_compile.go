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

import "fmt"

// TimeSpecifier is the closed enumeration of calendar/clock field kinds the
// format compiler recognizes.
type TimeSpecifier uint8

const (
	SpecAbbreviatedWeekday TimeSpecifier = iota // %a
	SpecFullWeekday                             // %A
	SpecWeekdayDecimal                          // %w
	SpecDayOfMonthPadded                        // %d
	SpecDayOfMonth                               // %-d
	SpecAbbreviatedMonth                        // %b, %h
	SpecFullMonth                               // %B
	SpecMonthPadded                             // %m
	SpecMonth                                   // %-m
	SpecYearWithoutCenturyPadded                // %y
	SpecYearWithoutCentury                      // %-y
	SpecYear                                    // %Y
	SpecHour24Padded                            // %H
	SpecHour24                                  // %-H
	SpecHour12Padded                            // %I
	SpecHour12                                  // %-I
	SpecAMPM                                    // %p
	SpecMinutePadded                            // %M
	SpecMinute                                  // %-M
	SpecSecondPadded                            // %S
	SpecSecond                                  // %-S
	SpecMicrosecond                             // %f
	SpecUTCOffset                               // %z
	SpecTZName                                  // %Z
	SpecDayOfYearPadded                         // %j
	SpecDayOfYear                                // %-j
	SpecWeekNumberSunFirst                      // %U
	SpecWeekNumberMonFirst                      // %W
)

// specifierSize returns the constant output width of specifier, or 0 if it
// is variable-length.
func specifierSize(specifier TimeSpecifier) int {
	switch specifier {
	case SpecAbbreviatedWeekday, SpecAbbreviatedMonth, SpecDayOfYearPadded:
		return 3
	case SpecWeekdayDecimal:
		return 1
	case SpecDayOfMonthPadded, SpecMonthPadded, SpecYearWithoutCenturyPadded,
		SpecHour24Padded, SpecHour12Padded, SpecMinutePadded, SpecSecondPadded,
		SpecAMPM, SpecWeekNumberSunFirst, SpecWeekNumberMonFirst:
		return 2
	case SpecMicrosecond:
		return 6
	default:
		return 0
	}
}

// isDateSpecifier reports whether specifier needs a full date (weekday,
// day-of-year, week number) rather than just the Calendar Tuple to format.
func isDateSpecifier(specifier TimeSpecifier) bool {
	switch specifier {
	case SpecAbbreviatedWeekday, SpecFullWeekday, SpecWeekdayDecimal,
		SpecDayOfYearPadded, SpecDayOfYear,
		SpecWeekNumberSunFirst, SpecWeekNumberMonFirst:
		return true
	default:
		return false
	}
}

// isNumericSpecifier reports whether specifier parses a run of ASCII
// digits, as opposed to a named/enumerated token (weekday/month names,
// AM/PM).
func isNumericSpecifier(specifier TimeSpecifier) bool {
	switch specifier {
	case SpecWeekdayDecimal, SpecDayOfMonthPadded, SpecDayOfMonth,
		SpecMonthPadded, SpecMonth,
		SpecYearWithoutCenturyPadded, SpecYearWithoutCentury, SpecYear,
		SpecHour24Padded, SpecHour24, SpecHour12Padded, SpecHour12,
		SpecMinutePadded, SpecMinute, SpecSecondPadded, SpecSecond,
		SpecMicrosecond, SpecDayOfYearPadded, SpecDayOfYear,
		SpecWeekNumberSunFirst, SpecWeekNumberMonFirst:
		return true
	default:
		return false
	}
}

// notInvertible is the set of specifiers strptime programs refuse to carry:
// they have no inverse parse (day-of-year and week-number are many-to-one,
// weekday-decimal is redundant with year/month/day).
func notInvertible(specifier TimeSpecifier) bool {
	switch specifier {
	case SpecDayOfYearPadded, SpecDayOfYear, SpecWeekdayDecimal,
		SpecWeekNumberSunFirst, SpecWeekNumberMonFirst:
		return true
	default:
		return false
	}
}

// TimeProgram is the compiled, executable representation of a format
// string: parallel sequences of literals and specifiers, plus the
// precomputed metadata the formatter and parser each need.
type TimeProgram struct {
	Literals           []string
	Specifiers         []TimeSpecifier
	ConstantSize       int
	VariableSpecifiers []TimeSpecifier
	IsDateSpecifier    []bool // formatter use; parallel to Specifiers
	IsNumeric          []bool // parser use; parallel to Specifiers
	FormatSpecifier    string // original pattern text, for strptime error messages
	forParse           bool
}

// addLiteral appends a literal fragment and accounts for its fixed size.
func (p *TimeProgram) addLiteral(literal string) {
	p.ConstantSize += len(literal)
	p.Literals = append(p.Literals, literal)
}

// addSpecifier appends a (preceding literal, specifier) pair and updates
// all the per-role metadata this program's flavor needs.
func (p *TimeProgram) addSpecifier(precedingLiteral string, specifier TimeSpecifier) error {
	if p.forParse && notInvertible(specifier) {
		return fmt.Errorf("%s not implemented for strptime", specifierSyntax(specifier))
	}
	p.addLiteral(precedingLiteral)
	p.Specifiers = append(p.Specifiers, specifier)
	if p.forParse {
		p.IsNumeric = append(p.IsNumeric, isNumericSpecifier(specifier))
	} else {
		p.IsDateSpecifier = append(p.IsDateSpecifier, isDateSpecifier(specifier))
		if size := specifierSize(specifier); size > 0 {
			p.ConstantSize += size
		} else {
			p.VariableSpecifiers = append(p.VariableSpecifiers, specifier)
		}
	}
	return nil
}

// specifierSyntax renders the external %-syntax for a specifier, used only
// in error messages.
func specifierSyntax(specifier TimeSpecifier) string {
	switch specifier {
	case SpecWeekdayDecimal:
		return "%w"
	case SpecDayOfYearPadded:
		return "%j"
	case SpecDayOfYear:
		return "%-j"
	case SpecWeekNumberSunFirst:
		return "%U"
	case SpecWeekNumberMonFirst:
		return "%W"
	default:
		return "specifier"
	}
}

// compileTimeFormat scans format and produces a TimeProgram. forParse
// selects the strptime flavor (rejects non-invertible specifiers, records
// IsNumeric) versus the strftime flavor (records IsDateSpecifier).
func compileTimeFormat(format string, forParse bool) (TimeProgram, error) {
	program := TimeProgram{forParse: forParse, FormatSpecifier: format}
	pos := 0
	var pending []byte
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 == len(format) {
			return TimeProgram{}, fmt.Errorf("Trailing format character %%")
		}
		if i > pos {
			pending = append(pending, format[pos:i]...)
		}
		i++
		formatChar := format[i]
		if formatChar == '%' {
			pending = append(pending, '%')
			pos = i + 1
			continue
		}

		var specifier TimeSpecifier
		if formatChar == '-' && i+1 < len(format) {
			i++
			formatChar = format[i]
			switch formatChar {
			case 'd':
				specifier = SpecDayOfMonth
			case 'm':
				specifier = SpecMonth
			case 'y':
				specifier = SpecYearWithoutCentury
			case 'H':
				specifier = SpecHour24
			case 'I':
				specifier = SpecHour12
			case 'M':
				specifier = SpecMinute
			case 'S':
				specifier = SpecSecond
			case 'j':
				specifier = SpecDayOfYear
			default:
				return TimeProgram{}, fmt.Errorf("Unrecognized format for strftime/strptime: %%-%c", formatChar)
			}
		} else {
			switch formatChar {
			case 'a':
				specifier = SpecAbbreviatedWeekday
			case 'A':
				specifier = SpecFullWeekday
			case 'w':
				specifier = SpecWeekdayDecimal
			case 'd':
				specifier = SpecDayOfMonthPadded
			case 'h', 'b':
				specifier = SpecAbbreviatedMonth
			case 'B':
				specifier = SpecFullMonth
			case 'm':
				specifier = SpecMonthPadded
			case 'y':
				specifier = SpecYearWithoutCenturyPadded
			case 'Y':
				specifier = SpecYear
			case 'H':
				specifier = SpecHour24Padded
			case 'I':
				specifier = SpecHour12Padded
			case 'p':
				specifier = SpecAMPM
			case 'M':
				specifier = SpecMinutePadded
			case 'S':
				specifier = SpecSecondPadded
			case 'f':
				specifier = SpecMicrosecond
			case 'z':
				specifier = SpecUTCOffset
			case 'Z':
				specifier = SpecTZName
			case 'j':
				specifier = SpecDayOfYearPadded
			case 'U':
				specifier = SpecWeekNumberSunFirst
			case 'W':
				specifier = SpecWeekNumberMonFirst
			case 'c', 'x', 'X':
				var subformat string
				switch formatChar {
				case 'c':
					subformat = "%Y-%m-%d %H:%M:%S"
				case 'x':
					subformat = "%Y-%m-%d"
				case 'X':
					subformat = "%H:%M:%S"
				}
				sub, err := compileTimeFormat(subformat, forParse)
				if err != nil {
					return TimeProgram{}, err
				}
				sub.Literals[0] = string(pending) + sub.Literals[0]
				for j := 0; j < len(sub.Specifiers); j++ {
					if err := program.addSpecifier(sub.Literals[j], sub.Specifiers[j]); err != nil {
						return TimeProgram{}, err
					}
				}
				pending = []byte(sub.Literals[len(sub.Specifiers)])
				pos = i + 1
				continue
			default:
				return TimeProgram{}, fmt.Errorf("Unrecognized format for strftime/strptime: %%%c", formatChar)
			}
		}
		if err := program.addSpecifier(string(pending), specifier); err != nil {
			return TimeProgram{}, err
		}
		pending = nil
		pos = i + 1
	}
	if pos < len(format) {
		pending = append(pending, format[pos:]...)
	}
	program.addLiteral(string(pending))
	return program, nil
}
