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

func mustCompile(t *testing.T, format string, forParse bool) TimeProgram {
	t.Helper()
	program, err := compileTimeFormat(format, forParse)
	if err != nil {
		t.Fatalf("compile %q: %v", format, err)
	}
	return program
}

func TestFormatScenarios(t *testing.T) {
	cases := []struct {
		name   string
		date   time.Time
		format string
		want   string
	}{
		{"abbreviated weekday, unpadded day, full month", time.Date(1992, time.January, 1, 0, 0, 0, 0, time.UTC), "%a, %-d %B %Y", "Wed, 1 January 1992"},
		{"iso timestamp", time.Date(1992, time.March, 2, 7, 8, 9, 0, time.UTC), "%Y-%m-%d %H:%M:%S", "1992-03-02 07:08:09"},
		{"12-hour PM", time.Date(1992, time.March, 2, 19, 8, 9, 0, time.UTC), "%I:%M %p", "07:08 PM"},
		{"negative year", time.Date(-1, time.December, 31, 0, 0, 0, 0, time.UTC), "%Y", "-1"},
		{"sunday-first week number", time.Date(1992, time.September, 20, 0, 0, 0, 0, time.UTC), "%U", "38"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			program := mustCompile(t, c.format, false)
			fields := fieldsFromTime(c.date)
			got := string(formatInto(&program, c.date, fields))
			if got != c.want {
				t.Fatalf("format(%q) = %q, want %q", c.format, got, c.want)
			}
		})
	}
}

func TestFormatLengthExactness(t *testing.T) {
	dates := []time.Time{
		time.Date(1992, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2000, time.February, 29, 23, 59, 59, 999000, time.UTC),
		time.Date(-1, time.December, 31, 9, 8, 7, 6000, time.UTC),
		time.Date(10000, time.June, 15, 1, 2, 3, 0, time.UTC),
	}
	formats := []string{
		"%Y-%m-%d %H:%M:%S.%f", "%a %A %b %B %-d %d %-m %m %-y %y %Y",
		"%-H %H %-I %I %p %-M %M %-S %S %j %U %W %w %c %x %X %%",
	}
	for _, format := range formats {
		program := mustCompile(t, format, false)
		for _, date := range dates {
			fields := fieldsFromTime(date)
			predicted := predictTimeLength(&program, date, fields)
			got := formatInto(&program, date, fields)
			if len(got) != predicted {
				t.Fatalf("format %q date %v: predicted length %d, actual %d (output %q)",
					format, date, predicted, len(got), got)
			}
		}
	}
}

func TestFormatLiteralConcatenationReproducesOutput(t *testing.T) {
	program := mustCompile(t, "prefix %Y/%m/%d suffix", false)
	date := time.Date(1992, time.March, 2, 0, 0, 0, 0, time.UTC)
	fields := fieldsFromTime(date)
	got := string(formatInto(&program, date, fields))
	want := "prefix 1992/03/02 suffix"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWeekNumberMondayFirst(t *testing.T) {
	// Jan 1 2024 is a Monday -- week 1 should start immediately.
	program := mustCompile(t, "%W", false)
	date := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	got := string(formatInto(&program, date, fieldsFromTime(date)))
	if got != "01" {
		t.Fatalf("expected week 01 for the first Monday of the year, got %q", got)
	}
}
