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
	"testing"
	"time"
)

func TestParseScenario(t *testing.T) {
	program := mustCompile(t, "%-d %b %Y", true)
	fields, err := parseTimeFormat(&program, "5 Dec 1992")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := timeFields{1992, 12, 5, 0, 0, 0, 0}
	if fields != want {
		t.Fatalf("got %v want %v", fields, want)
	}
}

func TestParseHour12OutOfRange(t *testing.T) {
	program := mustCompile(t, "%-I %p", true)
	_, err := parseTimeFormat(&program, "13 PM")
	if err == nil {
		t.Fatal("expected an error")
	}
	pte, ok := err.(*ParseTimeError)
	if !ok {
		t.Fatalf("expected *ParseTimeError, got %T", err)
	}
	if pte.Message != "Hour12 out of range, expected a value between 1 and 12" {
		t.Fatalf("unexpected message: %q", pte.Message)
	}
	if pte.Position != 0 {
		t.Fatalf("expected position 0, got %d", pte.Position)
	}
}

func TestParseLiteralMismatch(t *testing.T) {
	program := mustCompile(t, "%Y-%m-%d", true)
	_, err := parseTimeFormat(&program, "1992/03/02")
	pte := err.(*ParseTimeError)
	if pte.Message != "Literal does not match, expected -" {
		t.Fatalf("unexpected message: %q", pte.Message)
	}
}

func TestParseTrailingCharacters(t *testing.T) {
	program := mustCompile(t, "%Y", true)
	_, err := parseTimeFormat(&program, "1992xyz")
	pte := err.(*ParseTimeError)
	if pte.Message != "Full specifier did not match: trailing characters" {
		t.Fatalf("unexpected message: %q", pte.Message)
	}
}

func TestParseWhitespaceIdempotence(t *testing.T) {
	program := mustCompile(t, "%Y-%m-%d", true)
	base, err := parseTimeFormat(&program, "1992-03-02")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	padded, err := parseTimeFormat(&program, "  1992-03-02   ")
	if err != nil {
		t.Fatalf("parse padded: %v", err)
	}
	if base != padded {
		t.Fatalf("whitespace changed the parse result: %v vs %v", base, padded)
	}
}

func TestRoundTripFormatThenParse(t *testing.T) {
	fmtProgram := mustCompile(t, "%Y-%m-%d %H:%M:%S", false)
	parseProgram := mustCompile(t, "%Y-%m-%d %H:%M:%S", true)
	for year := 1900; year < 1903; year++ {
		for month := 1; month <= 12; month++ {
			for _, day := range []int{1, 15, 28} {
				for _, hour := range []int{0, 12, 23} {
					date := time.Date(year, time.Month(month), day, hour, 34, 56, 0, time.UTC)
					fields := fieldsFromTime(date)
					formatted := string(formatInto(&fmtProgram, date, fields))
					parsed, err := parseTimeFormat(&parseProgram, formatted)
					if err != nil {
						t.Fatalf("parse(%q): %v", formatted, err)
					}
					if parsed != fields {
						t.Fatalf("round trip mismatch for %q: got %v want %v", formatted, parsed, fields)
					}
				}
			}
		}
	}
}

func TestRoundTrip12HourFormat(t *testing.T) {
	fmtProgram := mustCompile(t, "%Y-%m-%d %I:%M:%S %p", false)
	parseProgram := mustCompile(t, "%Y-%m-%d %I:%M:%S %p", true)
	for hour := 0; hour < 24; hour++ {
		date := time.Date(1992, time.March, 2, hour, 8, 9, 0, time.UTC)
		fields := fieldsFromTime(date)
		formatted := string(formatInto(&fmtProgram, date, fields))
		parsed, err := parseTimeFormat(&parseProgram, formatted)
		if err != nil {
			t.Fatalf("parse(%q): %v", formatted, err)
		}
		if parsed[3] != fields[3] {
			t.Fatalf("hour round trip mismatch for %q: got %d want %d", formatted, parsed[3], fields[3])
		}
	}
}

func TestParseMicrosecondRoundTrip(t *testing.T) {
	fmtProgram := mustCompile(t, "%H:%M:%S.%f", false)
	parseProgram := mustCompile(t, "%H:%M:%S.%f", true)
	date := time.Date(1992, time.March, 2, 7, 8, 9, 123456000, time.UTC)
	fields := fieldsFromTime(date)
	formatted := string(formatInto(&fmtProgram, date, fields))
	if formatted != "07:08:09.123456" {
		t.Fatalf("unexpected formatted value: %q", formatted)
	}
	parsed, err := parseTimeFormat(&parseProgram, formatted)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed[6] != 123456 {
		t.Fatalf("expected microseconds 123456, got %d", parsed[6])
	}
}

func TestParseCaseInsensitiveNames(t *testing.T) {
	program := mustCompile(t, "%A, %-d %B %Y", true)
	fields, err := parseTimeFormat(&program, "wednesday, 1 JANUARY 1992")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fields[0] != 1992 || fields[1] != 1 || fields[2] != 1 {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestParseTwoDigitYearCrossover(t *testing.T) {
	program := mustCompile(t, "%y", true)
	fields, err := parseTimeFormat(&program, "69")
	if err != nil || fields[0] != 1969 {
		t.Fatalf("expected 1969, got %v, err=%v", fields, err)
	}
	fields, err = parseTimeFormat(&program, "68")
	if err != nil || fields[0] != 2068 {
		t.Fatalf("expected 2068, got %v, err=%v", fields, err)
	}
}
