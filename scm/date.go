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
	"fmt"
	"strings"
	"sync"
	"time"
)

var allowedDateFormats = []string{
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"06-01-02 15:04:05.000000",
	"06-01-02 15:04:05",
	"06-01-02 15:04",
	"06-01-02",
}

// ParseDateString tries to parse a date/datetime string using the allowed formats.
// Returns the Unix timestamp and true on success, or 0 and false on failure.
func ParseDateString(s string) (int64, bool) {
	for _, format := range allowedDateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}

// toTime converts a Scmer value (tagDate, int, float, or string) to time.Time.
func toTime(v Scmer) (time.Time, bool) {
	if v.IsNil() {
		return time.Time{}, false
	}
	switch v.GetTag() {
	case tagDate:
		return time.Unix(v.Int(), 0).UTC(), true
	case tagInt:
		return time.Unix(v.Int(), 0).UTC(), true
	case tagFloat:
		return time.Unix(int64(v.Float()), 0).UTC(), true
	case tagString, tagSymbol:
		if ts, ok := ParseDateString(v.String()); ok {
			return time.Unix(ts, 0).UTC(), true
		}
		return time.Time{}, false
	default:
		return time.Unix(v.Int(), 0).UTC(), true
	}
}

// compiledProgramKey identifies a cached TimeProgram: the format text plus
// which flavor (strftime vs strptime) it was compiled for. A given
// (format, role) pair compiles once no matter how many rows of a query
// share the same constant format argument, even though this interpreter has
// no separate bind phase to hang that cache off of.
type compiledProgramKey struct {
	format   string
	forParse bool
}

var compiledProgramCache sync.Map // map[compiledProgramKey]*TimeProgram

// compiledTimeProgram compiles format (or returns the cached program for an
// identical format seen before) for the strftime (forParse=false) or
// strptime (forParse=true) role.
func compiledTimeProgram(format string, forParse bool) (*TimeProgram, error) {
	key := compiledProgramKey{format: format, forParse: forParse}
	if cached, ok := compiledProgramCache.Load(key); ok {
		return cached.(*TimeProgram), nil
	}
	program, err := compileTimeFormat(format, forParse)
	if err != nil {
		return nil, err
	}
	cached, _ := compiledProgramCache.LoadOrStore(key, &program)
	return cached.(*TimeProgram), nil
}

// mysqlFormatToStrftime translates the small set of MySQL DATE_FORMAT/
// STR_TO_DATE specifiers this package has always accepted (%i minute, %s
// seconds, %T time-of-day) into the strict strftime/strptime pattern
// language, so that str_to_date/format_date share the one specifier engine
// with strftime/strptime instead of keeping a second, ad hoc implementation.
func mysqlFormatToStrftime(format string) string {
	var buf strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] == '%' && i+1 < len(format) {
			switch format[i+1] {
			case 'i':
				buf.WriteString("%M")
			case 's':
				buf.WriteString("%S")
			case 'T':
				buf.WriteString("%H:%M:%S")
			case '%':
				buf.WriteString("%%")
			default:
				buf.WriteByte('%')
				buf.WriteByte(format[i+1])
			}
			i++
		} else if format[i] == '%' {
			buf.WriteByte('%')
		} else {
			buf.WriteByte(format[i])
		}
	}
	return buf.String()
}

func init_date() {
	// date functions
	DeclareTitle("Date")

	Declare(&Globalenv, &Declaration{
		"now", "returns the current date/time",
		0, 0,
		[]DeclarationParameter{}, "date",
		func(a ...Scmer) Scmer {
			return NewDate(time.Now().Unix())
		},
		false,
	})
	Declare(&Globalenv, &Declaration{
		"current_date", "returns the current date (midnight UTC)",
		0, 0,
		[]DeclarationParameter{}, "date",
		func(a ...Scmer) Scmer {
			now := time.Now().UTC()
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			return NewDate(midnight.Unix())
		},
		false,
	})
	Declare(&Globalenv, &Declaration{
		"parse_date", "parses a date from a string",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "string", "values to parse"},
		}, "date",
		func(a ...Scmer) Scmer {
			if a[0].IsNil() {
				return NewNil()
			}
			if a[0].GetTag() == tagDate {
				return a[0]
			}
			if a[0].IsInt() || a[0].IsFloat() {
				return NewDate(a[0].Int())
			}
			if ts, ok := ParseDateString(a[0].String()); ok {
				return NewDate(ts)
			}
			return NewNil()
		},
		true,
	})
	Declare(&Globalenv, &Declaration{
		"format_date", "formats a unix timestamp, date, or datetime string into a date string",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"timestamp", "any", "unix timestamp, date, or datetime string"},
			DeclarationParameter{"format", "string", "MySQL-style format string (e.g. %Y-%m-%d %H:%i:%s)"},
		}, "string",
		func(a ...Scmer) Scmer {
			if a[0].IsNil() {
				return NewNil()
			}
			t, ok := toTime(a[0])
			if !ok {
				return NewNil()
			}
			format := String(a[1])
			program, err := compiledTimeProgram(mysqlFormatToStrftime(format), false)
			if err != nil {
				panic("Failed to parse format specifier " + format + ": " + err.Error())
			}
			return NewString(string(formatInto(program, t, fieldsFromTime(t))))
		},
		true,
	})

	// strftime(date|timestamp, format) -- spec-exact %-syntax, see strftime_compile.go
	Declare(&Globalenv, &Declaration{
		"strftime", "formats a date or timestamp using strftime-style %-format specifiers",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "date or timestamp value"},
			DeclarationParameter{"format", "string", "strftime format string (e.g. %Y-%m-%d %H:%M:%S)"},
		}, "string",
		func(a ...Scmer) Scmer {
			if a[1].IsNil() {
				return NewNil()
			}
			format := String(a[1])
			program, err := compiledTimeProgram(format, false)
			if err != nil {
				panic("Failed to parse format specifier " + format + ": " + err.Error())
			}
			if a[0].IsNil() {
				return NewNil()
			}
			t, ok := toTime(a[0])
			if !ok {
				return NewNil()
			}
			return NewString(string(formatInto(program, t, fieldsFromTime(t))))
		},
		true,
	})

	// strptime(string, format) -- inverse of strftime, returns a timestamp
	Declare(&Globalenv, &Declaration{
		"strptime", "parses a string into a timestamp using strftime-style %-format specifiers",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"value", "string", "input string"},
			DeclarationParameter{"format", "string", "strftime format string (e.g. %Y-%m-%d %H:%M:%S)"},
		}, "date",
		func(a ...Scmer) Scmer {
			if a[1].IsNil() {
				return NewNil()
			}
			format := String(a[1])
			program, err := compiledTimeProgram(format, true)
			if err != nil {
				panic("Failed to parse format specifier " + format + ": " + err.Error())
			}
			if a[0].IsNil() {
				return NewNil()
			}
			input := a[0].String()
			fields, perr := parseTimeFormat(program, input)
			if perr != nil {
				pte := perr.(*ParseTimeError)
				panic(fmt.Sprintf(
					"Could not parse string \"%s\" according to format specifier \"%s\"\n%s\nError: %s",
					input, format, formatCaretError(input, pte.Position), pte.Message,
				))
			}
			t := time.Date(fields[0], time.Month(fields[1]), fields[2],
				fields[3], fields[4], fields[5], fields[6]*1000, time.UTC)
			return NewDate(t.Unix())
		},
		true,
	})

	// STR_TO_DATE(str, format) - parse string with MySQL format to date
	Declare(&Globalenv, &Declaration{
		"str_to_date", "parses a string with MySQL format specifiers to a date",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"value", "string", "date string"},
			DeclarationParameter{"format", "string", "MySQL format string (e.g. %Y-%m-%d)"},
		}, "date",
		func(a ...Scmer) Scmer {
			if a[0].IsNil() {
				return NewNil()
			}
			mysqlFmt := a[1].String()
			program, err := compiledTimeProgram(mysqlFormatToStrftime(mysqlFmt), true)
			if err != nil {
				return NewNil()
			}
			fields, perr := parseTimeFormat(program, a[0].String())
			if perr != nil {
				return NewNil()
			}
			t := time.Date(fields[0], time.Month(fields[1]), fields[2],
				fields[3], fields[4], fields[5], fields[6]*1000, time.UTC)
			return NewDate(t.Unix())
		},
		true,
	})

	// EXTRACT(field FROM expr) - implemented as extract_date(expr, field)
	Declare(&Globalenv, &Declaration{
		"extract_date", "extracts a date field (YEAR, MONTH, DAY, HOUR, MINUTE, SECOND) from a date value",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "date value"},
			DeclarationParameter{"field", "string", "field name: YEAR, MONTH, DAY, HOUR, MINUTE, SECOND"},
		}, "int",
		func(a ...Scmer) Scmer {
			if a[0].IsNil() {
				return NewNil()
			}
			t, ok := toTime(a[0])
			if !ok {
				return NewNil()
			}
			field := strings.ToUpper(a[1].String())
			switch field {
			case "YEAR":
				return NewInt(int64(t.Year()))
			case "MONTH":
				return NewInt(int64(t.Month()))
			case "DAY":
				return NewInt(int64(t.Day()))
			case "HOUR":
				return NewInt(int64(t.Hour()))
			case "MINUTE":
				return NewInt(int64(t.Minute()))
			case "SECOND":
				return NewInt(int64(t.Second()))
			default:
				panic("unknown EXTRACT field: " + field)
			}
		},
		true,
	})

	// DATE_ADD(expr, amount, unit)
	Declare(&Globalenv, &Declaration{
		"date_add", "adds an interval to a date value",
		3, 3,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "date value"},
			DeclarationParameter{"amount", "int", "interval amount"},
			DeclarationParameter{"unit", "string", "interval unit: DAY, WEEK, MONTH, YEAR, HOUR, MINUTE, SECOND"},
		}, "date",
		func(a ...Scmer) Scmer {
			if a[0].IsNil() {
				return NewNil()
			}
			t, ok := toTime(a[0])
			if !ok {
				return NewNil()
			}
			amount := int(a[1].Int())
			unit := strings.ToUpper(a[2].String())
			switch unit {
			case "SECOND":
				t = t.Add(time.Duration(amount) * time.Second)
			case "MINUTE":
				t = t.Add(time.Duration(amount) * time.Minute)
			case "HOUR":
				t = t.Add(time.Duration(amount) * time.Hour)
			case "DAY":
				t = t.AddDate(0, 0, amount)
			case "WEEK":
				t = t.AddDate(0, 0, amount*7)
			case "MONTH":
				t = t.AddDate(0, amount, 0)
			case "YEAR":
				t = t.AddDate(amount, 0, 0)
			default:
				panic("unknown DATE_ADD unit: " + unit)
			}
			return NewDate(t.Unix())
		},
		true,
	})

	// DATE_SUB(expr, amount, unit)
	Declare(&Globalenv, &Declaration{
		"date_sub", "subtracts an interval from a date value",
		3, 3,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "date value"},
			DeclarationParameter{"amount", "int", "interval amount"},
			DeclarationParameter{"unit", "string", "interval unit: DAY, WEEK, MONTH, YEAR, HOUR, MINUTE, SECOND"},
		}, "date",
		func(a ...Scmer) Scmer {
			if a[0].IsNil() {
				return NewNil()
			}
			t, ok := toTime(a[0])
			if !ok {
				return NewNil()
			}
			amount := int(a[1].Int())
			unit := strings.ToUpper(a[2].String())
			switch unit {
			case "SECOND":
				t = t.Add(-time.Duration(amount) * time.Second)
			case "MINUTE":
				t = t.Add(-time.Duration(amount) * time.Minute)
			case "HOUR":
				t = t.Add(-time.Duration(amount) * time.Hour)
			case "DAY":
				t = t.AddDate(0, 0, -amount)
			case "WEEK":
				t = t.AddDate(0, 0, -amount*7)
			case "MONTH":
				t = t.AddDate(0, -amount, 0)
			case "YEAR":
				t = t.AddDate(-amount, 0, 0)
			default:
				panic("unknown DATE_SUB unit: " + unit)
			}
			return NewDate(t.Unix())
		},
		true,
	})

	// DATE(expr) - truncate to date only (midnight)
	Declare(&Globalenv, &Declaration{
		"date_trunc_day", "truncates a datetime to date (midnight UTC)",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "date/datetime value"},
		}, "date",
		func(a ...Scmer) Scmer {
			if a[0].IsNil() {
				return NewNil()
			}
			t, ok := toTime(a[0])
			if !ok {
				return NewNil()
			}
			midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return NewDate(midnight.Unix())
		},
		true,
	})
}
