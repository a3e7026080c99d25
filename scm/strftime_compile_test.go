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
	"reflect"
	"testing"
	"time"
)

func TestCompileLiteralFraming(t *testing.T) {
	program, err := compileTimeFormat("%Y-%m-%d %H:%M:%S", false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(program.Literals) != len(program.Specifiers)+1 {
		t.Fatalf("expected len(Literals) == len(Specifiers)+1, got %d literals, %d specifiers",
			len(program.Literals), len(program.Specifiers))
	}
}

func TestCompileTrailingPercent(t *testing.T) {
	_, err := compileTimeFormat("abc%", false)
	if err == nil || err.Error() != "Trailing format character %" {
		t.Fatalf("expected trailing-%% error, got %v", err)
	}
}

func TestCompileUnknownSpecifier(t *testing.T) {
	_, err := compileTimeFormat("%Q", false)
	if err == nil || err.Error() != "Unrecognized format for strftime/strptime: %Q" {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = compileTimeFormat("%-Q", false)
	if err == nil || err.Error() != "Unrecognized format for strftime/strptime: %-Q" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCompileStrptimeRejectsNonInvertible(t *testing.T) {
	for _, format := range []string{"%j", "%-j", "%w", "%U", "%W"} {
		if _, err := compileTimeFormat(format, true); err == nil {
			t.Fatalf("expected %s to be rejected for strptime", format)
		}
	}
	// strftime accepts all of them
	for _, format := range []string{"%j", "%-j", "%w", "%U", "%W"} {
		if _, err := compileTimeFormat(format, false); err != nil {
			t.Fatalf("expected %s to compile for strftime: %v", format, err)
		}
	}
}

func TestCompileCompositeExpansionMatchesExplicitPattern(t *testing.T) {
	cases := []struct {
		composite string
		explicit  string
	}{
		{"X%cY", "X%Y-%m-%d %H:%M:%SY"},
		{"X%xY", "X%Y-%m-%dY"},
		{"X%XY", "X%H:%M:%SY"},
	}
	date := time.Date(1992, time.March, 2, 7, 8, 9, 0, time.UTC)
	for _, c := range cases {
		got, err := compileTimeFormat(c.composite, false)
		if err != nil {
			t.Fatalf("compile %q: %v", c.composite, err)
		}
		want, err := compileTimeFormat(c.explicit, false)
		if err != nil {
			t.Fatalf("compile %q: %v", c.explicit, err)
		}
		if !reflect.DeepEqual(got.Specifiers, want.Specifiers) {
			t.Fatalf("%q: specifiers differ: got %v want %v", c.composite, got.Specifiers, want.Specifiers)
		}
		if !reflect.DeepEqual(got.Literals, want.Literals) {
			t.Fatalf("%q: literals differ: got %v want %v", c.composite, got.Literals, want.Literals)
		}
		fields := fieldsFromTime(date)
		gotBytes := formatInto(&got, date, fields)
		wantBytes := formatInto(&want, date, fields)
		if string(gotBytes) != string(wantBytes) {
			t.Fatalf("%q: output differs: got %q want %q", c.composite, gotBytes, wantBytes)
		}
	}
}

func TestCompilePercentEscapes(t *testing.T) {
	program, err := compileTimeFormat("100%%", false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(program.Specifiers) != 0 {
		t.Fatalf("expected no specifiers, got %v", program.Specifiers)
	}
	if program.Literals[0] != "100%" {
		t.Fatalf("expected literal %q, got %q", "100%", program.Literals[0])
	}
}
