// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"log"
	"strings"
)

// Buffer queues console text for execution once per frame. A "wait"
// command defers the rest of the buffer to the next frame.
type Buffer struct {
	cmds *Commands
	text string
	wait bool
}

func NewBuffer(c *Commands) *Buffer {
	b := &Buffer{cmds: c}
	if !c.Exists("wait") {
		Must(c.Add("wait", func(Arguments) error {
			b.wait = true
			return nil
		}))
	}
	return b
}

func (b *Buffer) AddText(text string) {
	b.text += text
}

func (b *Buffer) InsertText(text string) {
	b.text = text + "\n" + b.text
}

// Execute runs lines until the buffer is empty or a wait is hit.
func (b *Buffer) Execute() {
	for len(b.text) != 0 {
		i := 0
		quote := false
	LineLoop:
		for i = 0; i < len(b.text); i++ {
			switch b.text[i] {
			case '"':
				quote = !quote
			case ';':
				if !quote {
					break LineLoop
				}
			case '\n':
				break LineLoop
			}
		}
		line := strings.TrimSpace(b.text[:i])
		if i < len(b.text) {
			i++
		}
		b.text = b.text[i:]
		if _, err := b.cmds.Execute(line); err != nil {
			log.Printf("%s: %v", line, err)
		}
		if b.wait {
			b.wait = false
			return
		}
	}
}
