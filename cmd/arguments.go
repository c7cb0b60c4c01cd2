// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"strconv"
	"strings"
	"unicode"
)

type Arg struct {
	a string
}

func (a Arg) String() string {
	return a.a
}

func (a Arg) Int() int {
	r, err := strconv.ParseInt(a.a, 10, 0)
	if err != nil {
		return 0
	}
	return int(r)
}

func (a Arg) Float32() float32 {
	r, err := strconv.ParseFloat(a.a, 32)
	if err != nil {
		return 0
	}
	return float32(r)
}

func (a Arg) Bool() bool {
	switch a.a {
	case "1", "t", "T", "true", "TRUE", "True", "On", "ON", "on":
		return true
	default:
		return false
	}
}

type Arguments struct {
	args []Arg
	full string
}

// Argv returns argument i or an empty Arg if there are not enough.
func (c *Arguments) Argv(i int) Arg {
	if i < 0 || i >= len(c.args) {
		return Arg{}
	}
	return c.args[i]
}

func (c *Arguments) Args() []Arg {
	return c.args
}

func (c *Arguments) Full() string {
	return c.full
}

// Parse splits a console line into words. Double quotes group words,
// everything after // is a comment.
func Parse(s string) (args Arguments) {
	args.full = strings.TrimFunc(s, unicode.IsSpace)
	args.args = []Arg{}
	rest := args.full
	for {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		switch {
		case rest == "", strings.HasPrefix(rest, "//"):
			return
		case rest[0] == '"':
			end := strings.IndexByte(rest[1:], '"')
			if end < 0 {
				args.args = append(args.args, Arg{rest[1:]})
				return
			}
			args.args = append(args.args, Arg{rest[1 : end+1]})
			rest = rest[end+2:]
		default:
			end := strings.IndexFunc(rest, func(r rune) bool {
				return unicode.IsSpace(r) || r == '"'
			})
			if end < 0 {
				end = len(rest)
			}
			args.args = append(args.args, Arg{rest[:end]})
			rest = rest[end:]
		}
	}
}
