/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

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
	"strings"
	"testing"
	"time"
)

func TestParseDateStringAcceptedFormats(t *testing.T) {
	cases := []string{
		"1992-03-02 07:08:09.123456",
		"1992-03-02 07:08:09",
		"1992-03-02 07:08",
		"1992-03-02",
		"92-03-02 07:08:09",
	}
	for _, s := range cases {
		if _, ok := ParseDateString(s); !ok {
			t.Errorf("expected %q to parse", s)
		}
	}
}

func TestParseDateStringRejectsGarbage(t *testing.T) {
	if _, ok := ParseDateString("not a date"); ok {
		t.Fatal("expected garbage input to fail")
	}
}

func TestToTimeFromInt(t *testing.T) {
	want := time.Date(1992, time.March, 2, 7, 8, 9, 0, time.UTC)
	got, ok := toTime(NewInt(want.Unix()))
	if !ok || !got.Equal(want) {
		t.Fatalf("got %v ok=%v, want %v", got, ok, want)
	}
}

func TestToTimeFromString(t *testing.T) {
	got, ok := toTime(NewString("1992-03-02"))
	if !ok {
		t.Fatal("expected string date to parse")
	}
	want := time.Date(1992, time.March, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestToTimeFromNil(t *testing.T) {
	_, ok := toTime(NewNil())
	if ok {
		t.Fatal("expected nil to fail conversion")
	}
}

func TestToTimeFromUnparsableString(t *testing.T) {
	_, ok := toTime(NewString("banana"))
	if ok {
		t.Fatal("expected unparsable string to fail conversion")
	}
}

func TestMysqlFormatToStrftimeTranslatesKnownSpecifiers(t *testing.T) {
	got := mysqlFormatToStrftime("%Y-%m-%d %H:%i:%s")
	want := "%Y-%m-%d %H:%M:%S"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestMysqlFormatToStrftimeTranslatesTimeOfDay(t *testing.T) {
	got := mysqlFormatToStrftime("%T")
	if got != "%H:%M:%S" {
		t.Fatalf("got %q", got)
	}
}

func TestMysqlFormatToStrftimePassesThroughPercentEscape(t *testing.T) {
	got := mysqlFormatToStrftime("100%%")
	if got != "100%%" {
		t.Fatalf("got %q", got)
	}
}

func TestCompiledTimeProgramCachesByKey(t *testing.T) {
	a, err := compiledTimeProgram("%Y-%m-%d", false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	b, err := compiledTimeProgram("%Y-%m-%d", false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if a != b {
		t.Fatal("expected the same format/flavor to return the cached pointer")
	}
	c, err := compiledTimeProgram("%Y-%m-%d", true)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if a == c {
		t.Fatal("expected strftime and strptime flavors of the same text to be cached separately")
	}
}

func TestCompiledTimeProgramPropagatesCompileError(t *testing.T) {
	if _, err := compiledTimeProgram("%Q", false); err == nil {
		t.Fatal("expected an error for an unknown specifier")
	}
}

func builtin(t *testing.T, name string) func(...Scmer) Scmer {
	t.Helper()
	decl, ok := declarations[name]
	if !ok {
		t.Fatalf("no declaration registered for %q", name)
	}
	return decl.Fn
}

func TestStrftimeBuiltinFormatsTimestamp(t *testing.T) {
	fn := builtin(t, "strftime")
	ts := time.Date(1992, time.March, 2, 7, 8, 9, 0, time.UTC).Unix()
	result := fn(NewInt(ts), NewString("%Y-%m-%d %H:%M:%S"))
	if String(result) != "1992-03-02 07:08:09" {
		t.Fatalf("got %q", String(result))
	}
}

func TestStrftimeBuiltinPropagatesNilValue(t *testing.T) {
	fn := builtin(t, "strftime")
	result := fn(NewNil(), NewString("%Y-%m-%d"))
	if !result.IsNil() {
		t.Fatalf("expected nil, got %q", String(result))
	}
}

func TestStrftimeBuiltinPropagatesNilFormat(t *testing.T) {
	fn := builtin(t, "strftime")
	ts := time.Now().Unix()
	result := fn(NewInt(ts), NewNil())
	if !result.IsNil() {
		t.Fatalf("expected nil, got %q", String(result))
	}
}

func TestStrftimeBuiltinPanicsOnBadFormat(t *testing.T) {
	fn := builtin(t, "strftime")
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic for an unrecognized specifier")
		}
		message, ok := r.(string)
		if !ok || !strings.Contains(message, "Unrecognized format") {
			t.Fatalf("unexpected panic value: %v", r)
		}
	}()
	fn(NewInt(time.Now().Unix()), NewString("%Q"))
}

func TestFormatDateBuiltinTranslatesMysqlSyntax(t *testing.T) {
	fn := builtin(t, "format_date")
	ts := time.Date(1992, time.March, 2, 7, 8, 9, 0, time.UTC).Unix()
	result := fn(NewInt(ts), NewString("%Y-%m-%d %H:%i:%s"))
	if String(result) != "1992-03-02 07:08:09" {
		t.Fatalf("got %q", String(result))
	}
}

func TestFormatDateBuiltinPropagatesNilTimestamp(t *testing.T) {
	fn := builtin(t, "format_date")
	result := fn(NewNil(), NewString("%Y-%m-%d"))
	if !result.IsNil() {
		t.Fatalf("expected nil, got %q", String(result))
	}
}

func TestStrToDateBuiltinRoundTripsThroughFormatDate(t *testing.T) {
	strToDate := builtin(t, "str_to_date")
	formatDate := builtin(t, "format_date")
	parsed := strToDate(NewString("1992-03-02 07:08:09"), NewString("%Y-%m-%d %H:%i:%s"))
	if parsed.IsNil() {
		t.Fatal("expected str_to_date to succeed")
	}
	formatted := formatDate(parsed, NewString("%Y-%m-%d %H:%i:%s"))
	if String(formatted) != "1992-03-02 07:08:09" {
		t.Fatalf("got %q", String(formatted))
	}
}

func TestStrToDateBuiltinReturnsNilOnMismatch(t *testing.T) {
	fn := builtin(t, "str_to_date")
	result := fn(NewString("not a date"), NewString("%Y-%m-%d"))
	if !result.IsNil() {
		t.Fatalf("expected nil, got %q", String(result))
	}
}

func TestExtractDateBuiltinReadsFields(t *testing.T) {
	fn := builtin(t, "extract_date")
	ts := time.Date(1992, time.March, 2, 7, 8, 9, 0, time.UTC).Unix()
	if got := fn(NewInt(ts), NewString("year")).Int(); got != 1992 {
		t.Fatalf("expected year 1992, got %d", got)
	}
	if got := fn(NewInt(ts), NewString("hour")).Int(); got != 7 {
		t.Fatalf("expected hour 7, got %d", got)
	}
}

func TestDateAddBuiltinAddsDays(t *testing.T) {
	fn := builtin(t, "date_add")
	ts := time.Date(1992, time.March, 2, 0, 0, 0, 0, time.UTC).Unix()
	result := fn(NewInt(ts), NewInt(5), NewString("DAY"))
	got, ok := toTime(result)
	if !ok {
		t.Fatal("expected a convertible date result")
	}
	want := time.Date(1992, time.March, 7, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
