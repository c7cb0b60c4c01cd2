// SPDX-License-Identifier: GPL-2.0-or-later

package pack

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
)

type header struct {
	ID     [4]byte
	Offset int32
	Size   int32
}

type entry struct {
	Name   [56]byte
	Offset int32
	Size   int32
}

const entrySize = 64

// Pack is an opened PACK archive. Sound assets are looked up by their
// archive path, e.g. "sound/weapons/rocket.wav".
type Pack struct {
	f     *os.File
	files map[string]*qfile
	name  string
}

type qfile struct {
	offset int64
	size   int64
}

// Open returns a io.SectionReader or os.ErrNotExist if the pak has no entry
// with the provided name.
func (p *Pack) Open(name string) (*io.SectionReader, error) {
	q, ok := p.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}

	return io.NewSectionReader(p.f, q.offset, q.size), nil
}

// Names lists all entries in the archive in sorted order.
func (p *Pack) Names() []string {
	n := make([]string, 0, len(p.files))
	for k := range p.files {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

func (p *Pack) String() string {
	return p.name
}

func (p *Pack) Close() error {
	return p.f.Close()
}

func (p *Pack) init() error {
	var h header
	if err := binary.Read(p.f, binary.LittleEndian, &h); err != nil {
		return errors.Wrap(err, "read pack header")
	}
	if !bytes.Equal([]byte("PACK"), h.ID[:]) {
		return errors.New("Not a pack")
	}
	r, err := p.f.Seek(int64(h.Offset), io.SeekStart)
	if err != nil {
		return errors.Wrap(err, "seek pack directory")
	}
	if r != int64(h.Offset) {
		return errors.New("Not long enough")
	}
	filenum := h.Size / entrySize
	p.files = make(map[string]*qfile, filenum)
	for i := int32(0); i < filenum; i++ {
		var e entry
		if err := binary.Read(p.f, binary.LittleEndian, &e); err != nil {
			return errors.Wrapf(err, "read pack entry %d", i)
		}
		n := bytes.IndexByte(e.Name[:], 0)
		if n < 0 {
			n = len(e.Name)
		}
		name := string(e.Name[:n])
		if p.files[name] != nil {
			return errors.New("files in pack are not unique")
		}
		p.files[name] = &qfile{
			offset: int64(e.Offset),
			size:   int64(e.Size),
		}
	}
	return nil
}

func NewPackReader(name string) (*Pack, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	p := &Pack{f: f, name: name}
	if err := p.init(); err != nil {
		p.Close()
		return nil, errors.Wrap(err, name)
	}
	return p, nil
}

// Write stores the given files as a PACK archive. Names longer than 55
// bytes are rejected.
func Write(w io.Writer, files map[string][]byte) error {
	names := make([]string, 0, len(files))
	for n := range files {
		if len(n) > 55 {
			return errors.Errorf("pack name too long: %q", n)
		}
		names = append(names, n)
	}
	sort.Strings(names)

	offset := int32(binary.Size(header{}))
	entries := make([]entry, 0, len(names))
	for _, n := range names {
		var e entry
		copy(e.Name[:], n)
		e.Offset = offset
		e.Size = int32(len(files[n]))
		offset += e.Size
		entries = append(entries, e)
	}
	h := header{
		ID:     [4]byte{'P', 'A', 'C', 'K'},
		Offset: offset,
		Size:   int32(len(entries) * entrySize),
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return errors.Wrap(err, "write pack header")
	}
	for _, n := range names {
		if _, err := w.Write(files[n]); err != nil {
			return errors.Wrapf(err, "write %s", n)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, entries); err != nil {
		return errors.Wrap(err, "write pack directory")
	}
	return nil
}
