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

import "time"

// timeFields is the Calendar Tuple shared between the formatter/parser and
// the caller: [year, month, day, hour, minute, second, microsecond].
type timeFields [7]int

// fieldsFromTime converts a UTC time.Time into the Calendar Tuple layout
// the formatter and parser both work with.
func fieldsFromTime(t time.Time) timeFields {
	return timeFields{
		t.Year(), int(t.Month()), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond() / 1000,
	}
}

// specifierLength returns the runtime-dependent length of a single variable
// specifier for the given (date, fields) pair. Only called for specifiers
// with specifierSize(...) == 0.
func specifierLength(specifier TimeSpecifier, date time.Time, fields timeFields) int {
	switch specifier {
	case SpecFullWeekday:
		return len(dayNames[isoWeekday(date)])
	case SpecFullMonth:
		return len(monthNames[fields[1]-1])
	case SpecYear:
		return yearLength(fields[0])
	case SpecMonth:
		if fields[1] >= 10 {
			return 2
		}
		return 1
	case SpecDayOfMonth:
		if fields[2] >= 10 {
			return 2
		}
		return 1
	case SpecHour24:
		if fields[3] >= 10 {
			return 2
		}
		return 1
	case SpecHour12:
		hour := fields[3] % 12
		if hour == 0 {
			hour = 12
		}
		if hour >= 10 {
			return 2
		}
		return 1
	case SpecMinute:
		if fields[4] >= 10 {
			return 2
		}
		return 1
	case SpecSecond:
		if fields[5] >= 10 {
			return 2
		}
		return 1
	case SpecYearWithoutCentury:
		return unsignedLength(((fields[0] % 100) + 100) % 100)
	case SpecDayOfYear:
		return unsignedLength(date.YearDay())
	case SpecUTCOffset, SpecTZName:
		return 0
	default:
		// unreachable for a program produced by compileTimeFormat
		return 0
	}
}

// predictTimeLength returns the exact number of bytes formatInto will
// write for this program against (date, fields), so the output buffer can
// be allocated to exactly that size up front.
func predictTimeLength(program *TimeProgram, date time.Time, fields timeFields) int {
	size := program.ConstantSize
	for _, specifier := range program.VariableSpecifiers {
		size += specifierLength(specifier, date, fields)
	}
	return size
}

// formatInto writes program's output for (date, fields) into a buffer of
// exactly predictTimeLength(program, date, fields) bytes and returns it.
func formatInto(program *TimeProgram, date time.Time, fields timeFields) []byte {
	target := make([]byte, 0, predictTimeLength(program, date, fields))
	for i, specifier := range program.Specifiers {
		target = append(target, program.Literals[i]...)
		if program.IsDateSpecifier[i] {
			target = writeDateSpecifier(target, specifier, date)
		} else {
			target = writeStandardSpecifier(target, specifier, fields)
		}
	}
	target = append(target, program.Literals[len(program.Specifiers)]...)
	return target
}

// writeDateSpecifier emits specifiers that need the full date rather than
// just the Calendar Tuple: weekday names/decimal, day-of-year, week number.
func writeDateSpecifier(target []byte, specifier TimeSpecifier, date time.Time) []byte {
	switch specifier {
	case SpecAbbreviatedWeekday:
		return append(target, dayNamesAbbreviated[isoWeekday(date)]...)
	case SpecFullWeekday:
		return append(target, dayNames[isoWeekday(date)]...)
	case SpecWeekdayDecimal:
		return append(target, byte('0'+isoWeekday(date)))
	case SpecDayOfYearPadded:
		return writePadded3(target, date.YearDay())
	case SpecDayOfYear:
		return writeUnsigned(target, date.YearDay())
	case SpecWeekNumberSunFirst:
		return writePadded2(target, weekNumberRegular(date, false))
	case SpecWeekNumberMonFirst:
		return writePadded2(target, weekNumberRegular(date, true))
	default:
		return target
	}
}

// writeStandardSpecifier emits specifiers driven purely by the Calendar
// Tuple (no weekday/day-of-year/week-number lookups needed).
func writeStandardSpecifier(target []byte, specifier TimeSpecifier, fields timeFields) []byte {
	switch specifier {
	case SpecDayOfMonthPadded:
		return writePadded2(target, fields[2])
	case SpecDayOfMonth:
		return write2(target, fields[2]%100)
	case SpecAbbreviatedMonth:
		return append(target, monthNamesAbbreviated[fields[1]-1]...)
	case SpecFullMonth:
		return append(target, monthNames[fields[1]-1]...)
	case SpecMonthPadded:
		return writePadded2(target, fields[1])
	case SpecMonth:
		return write2(target, fields[1])
	case SpecYearWithoutCenturyPadded:
		return writePadded2(target, (fields[0]%100+100)%100)
	case SpecYearWithoutCentury:
		return write2(target, (fields[0]%100+100)%100)
	case SpecYear:
		return writeYear(target, fields[0])
	case SpecHour24Padded:
		return writePadded2(target, fields[3])
	case SpecHour24:
		return write2(target, fields[3])
	case SpecHour12Padded:
		return writePadded2(target, hour12(fields[3]))
	case SpecHour12:
		return write2(target, hour12(fields[3]))
	case SpecAMPM:
		if fields[3] >= 12 {
			return append(target, 'P', 'M')
		}
		return append(target, 'A', 'M')
	case SpecMinutePadded:
		return writePadded2(target, fields[4])
	case SpecMinute:
		return write2(target, fields[4])
	case SpecSecondPadded:
		return writePadded2(target, fields[5])
	case SpecSecond:
		return write2(target, fields[5])
	case SpecMicrosecond:
		return writePaddedN(target, fields[6], 6)
	case SpecUTCOffset, SpecTZName:
		return target
	default:
		return target
	}
}

// hour12 maps a 24-hour value into the conventional 1..12 12-hour range.
func hour12(hour int) int {
	hour = hour % 12
	if hour == 0 {
		hour = 12
	}
	return hour
}

// writeYear emits %Y: zero-padded to 4 digits in [0, 9999], else a leading
// '-' for negative years followed by the unsigned magnitude.
func writeYear(target []byte, year int) []byte {
	if year >= 0 && year <= 9999 {
		return writePaddedN(target, year, 4)
	}
	if year < 0 {
		target = append(target, '-')
		year = -year
	}
	return writeUnsigned(target, year)
}

// yearLength returns the exact number of bytes writeYear emits for year,
// matching its 4-digit-padding cutoff at [0, 9999].
func yearLength(year int) int {
	if year >= 0 && year <= 9999 {
		return 4
	}
	if year < 0 {
		return 1 + unsignedLength(-year)
	}
	return unsignedLength(year)
}
