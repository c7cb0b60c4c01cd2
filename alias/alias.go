// SPDX-License-Identifier: GPL-2.0-or-later

// Package alias adds named command sequences to the console:
//
//	alias boom "playat synth/noise 0 10 0 1; wait; play synth/sine"
package alias

import (
	"sort"
	"strings"

	"spatialsnd/cmd"
	"spatialsnd/conlog"
)

type Aliases struct {
	buf     *cmd.Buffer
	aliases map[string]string
}

func New(buf *cmd.Buffer) *Aliases {
	return &Aliases{buf: buf, aliases: make(map[string]string)}
}

// Register adds the alias commands to c and makes aliases executable.
func (al *Aliases) Register(c *cmd.Commands) error {
	for name, f := range map[string]cmd.Func{
		"alias":      al.alias,
		"unalias":    al.unalias,
		"unaliasall": al.unaliasAll,
	} {
		if err := c.Add(name, f); err != nil {
			return err
		}
	}
	c.AddExecutor(al.execute)
	return nil
}

func (al *Aliases) alias(a cmd.Arguments) error {
	args := a.Args()[1:]
	switch len(args) {
	case 0:
		al.list()
	case 1:
		if v, ok := al.aliases[args[0].String()]; ok {
			conlog.Printf("  %s: %s", args[0], v)
		}
	default:
		parts := make([]string, 0, len(args)-1)
		for _, p := range args[1:] {
			parts = append(parts, p.String())
		}
		// each alias value ends with a '\n'
		al.aliases[args[0].String()] = strings.TrimSpace(strings.Join(parts, " ")) + "\n"
	}
	return nil
}

func (al *Aliases) list() {
	if len(al.aliases) == 0 {
		conlog.Printf("no alias commands found\n")
		return
	}
	names := make([]string, 0, len(al.aliases))
	for k := range al.aliases {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		conlog.Printf("  %s: %s", k, al.aliases[k])
	}
	conlog.Printf("%v alias command(s)\n", len(al.aliases))
}

func (al *Aliases) unalias(a cmd.Arguments) error {
	if len(a.Args()) != 2 {
		conlog.Printf("unalias <name> : delete alias\n")
		return nil
	}
	name := a.Argv(1).String()
	if _, ok := al.aliases[name]; !ok {
		conlog.Printf("No alias named %s\n", name)
		return nil
	}
	delete(al.aliases, name)
	return nil
}

func (al *Aliases) unaliasAll(cmd.Arguments) error {
	al.aliases = make(map[string]string)
	return nil
}

func (al *Aliases) Get(name string) (string, bool) {
	a, ok := al.aliases[name]
	return a, ok
}

func (al *Aliases) execute(a cmd.Arguments) (bool, error) {
	v, ok := al.Get(a.Argv(0).String())
	if !ok {
		return false, nil
	}
	al.buf.InsertText(v)
	return true, nil
}
