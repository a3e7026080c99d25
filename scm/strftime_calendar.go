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

// English name tables, fixed regardless of locale (spec Non-goal: no
// locale-dependent names). Indexed Sunday..Saturday for weekdays,
// January..December for months.
var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
var dayNamesAbbreviated = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
var monthNames = [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}
var monthNamesAbbreviated = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// digitPairs is a lookup table mapping 00..99 to their two-character
// decimal rendering, avoiding a division per digit on the hot path.
var digitPairs = func() [100][2]byte {
	var t [100][2]byte
	for i := 0; i < 100; i++ {
		t[i] = [2]byte{byte('0' + i/10), byte('0' + i%10)}
	}
	return t
}()

// writePadded2 writes value (0..99) zero-padded to exactly two digits.
func writePadded2(target []byte, value int) []byte {
	pair := digitPairs[value%100]
	target = append(target, pair[0], pair[1])
	return target
}

// write2 writes value (0..99) unpadded: one digit if value < 10, else two.
func write2(target []byte, value int) []byte {
	if value >= 10 {
		return writePadded2(target, value)
	}
	return append(target, byte('0'+value%10))
}

// writePadded3 writes value (0..999) zero-padded to exactly three digits.
func writePadded3(target []byte, value int) []byte {
	hundreds := value / 100
	target = append(target, byte('0'+hundreds))
	return writePadded2(target, value%100)
}

// writePaddedN writes value zero-padded to exactly digits characters, where
// digits is even; used for %f (6 digits).
func writePaddedN(target []byte, value int, digits int) []byte {
	buf := make([]byte, digits)
	for i := digits; i > 0; i -= 2 {
		pair := digitPairs[value%100]
		buf[i-2], buf[i-1] = pair[0], pair[1]
		value /= 100
	}
	return append(target, buf...)
}

// unsignedLength returns the number of decimal digits needed to render v.
func unsignedLength(v int) int {
	if v < 10 {
		return 1
	}
	n := 0
	for v > 0 {
		n++
		v /= 10
	}
	return n
}

// writeUnsigned writes the decimal digits of v with no padding.
func writeUnsigned(target []byte, v int) []byte {
	start := len(target)
	if v == 0 {
		return append(target, '0')
	}
	for v > 0 {
		target = append(target, byte('0'+v%10))
		v /= 10
	}
	// digits were appended least-significant first; reverse in place
	for i, j := start, len(target)-1; i < j; i, j = i+1, j-1 {
		target[i], target[j] = target[j], target[i]
	}
	return target
}

// isoWeekday returns 0=Sunday..6=Saturday for t, the indexing convention
// the weekday name tables and %w use.
func isoWeekday(t time.Time) int {
	return int(t.Weekday())
}

// weekNumberRegular returns the week number of the year for t: "all days
// preceding the first Sunday/Monday of the year are week 0". mondayFirst
// selects the %W (Monday-first) convention over %U (Sunday-first).
func weekNumberRegular(t time.Time, mondayFirst bool) int {
	yday := t.YearDay() - 1 // 0-based day of year
	wd := int(t.Weekday())  // weekday of t: 0=Sunday..6=Saturday
	if mondayFirst {
		wd = (wd + 6) % 7 // rotate so 0=Monday..6=Sunday
	}
	// weekday of Jan 1, in the same (possibly rotated) numbering as wd
	jan1 := ((wd-yday)%7 + 7) % 7
	// offset of the first occurrence of the reference weekday (index 0)
	firstRef := (7 - jan1) % 7
	if yday < firstRef {
		return 0
	}
	return (yday-firstRef)/7 + 1
}
