// SPDX-License-Identifier: GPL-2.0-or-later

// Package cmd is the sound console: named commands, a command buffer and
// a fallback to cvars for lines that are not commands.
package cmd

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"spatialsnd/conlog"
	"spatialsnd/cvar"
)

type Func func(args Arguments) error

// Executor handles lines that are not commands, e.g. aliases. It reports
// whether it consumed the line.
type Executor func(args Arguments) (bool, error)

type Commands struct {
	funcs     map[string]Func
	executors []Executor
}

func New() *Commands {
	c := &Commands{funcs: make(map[string]Func)}
	c.funcs["cmdlist"] = c.printCmdList
	return c
}

func (c *Commands) Add(name string, f Func) error {
	ln := strings.ToLower(name)
	if _, ok := c.funcs[ln]; ok {
		return fmt.Errorf("AddCommand: %s already defined", ln)
	}
	c.funcs[ln] = f
	return nil
}

// AddExecutor appends e to the executors tried after the commands and
// before the cvars.
func (c *Commands) AddExecutor(e Executor) {
	c.executors = append(c.executors, e)
}

func (c *Commands) Exists(name string) bool {
	_, ok := c.funcs[strings.ToLower(name)]
	return ok
}

func (c *Commands) List() []string {
	cmds := make([]string, 0, len(c.funcs))
	for cmd := range c.funcs {
		cmds = append(cmds, cmd)
	}
	sort.Strings(cmds)
	return cmds
}

// Execute runs a single line. It reports false if nothing handled it.
func (c *Commands) Execute(line string) (bool, error) {
	a := Parse(line)
	args := a.Args()
	if len(args) == 0 {
		return true, nil
	}
	name := strings.ToLower(args[0].String())
	if f, ok := c.funcs[name]; ok {
		return true, f(a)
	}
	for _, e := range c.executors {
		if ok, err := e(a); err != nil || ok {
			return ok, err
		}
	}
	if cvar.Execute(a.Full()) {
		return true, nil
	}
	log.Printf("Unknown command \"%s\"", name)
	conlog.Printf("Unknown command \"%s\"\n", name)
	return false, nil
}

func (c *Commands) printCmdList(a Arguments) error {
	part := a.Argv(1).String()
	count := 0
	for _, name := range c.List() {
		if strings.HasPrefix(name, part) {
			conlog.Printf("  %s\n", name)
			count++
		}
	}
	if part == "" {
		conlog.Printf("%v commands\n", count)
	} else {
		conlog.Printf("%v commands beginning with \"%v\"\n", count, part)
	}
	return nil
}

func Must(err error) {
	if err != nil {
		panic(err.Error())
	}
}
