// SPDX-License-Identifier: GPL-2.0-or-later

package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"spatialsnd/pack"
)

type File interface {
	io.ReadSeekCloser
	io.ReaderAt
}

type source interface {
	open(name string) (File, error)
	String() string
}

type dirSource string

func (d dirSource) open(name string) (File, error) {
	return os.Open(filepath.Join(string(d), filepath.FromSlash(name)))
}

func (d dirSource) String() string {
	return string(d)
}

type packSource struct {
	p *pack.Pack
}

type closer struct {
	*io.SectionReader
}

func (*closer) Close() error {
	return nil
}

func (s packSource) open(name string) (File, error) {
	// inside a pack file there is no 'root'. all files are relative to '.'
	f, err := s.p.Open(strings.TrimPrefix(name, "/"))
	if err != nil {
		return nil, err
	}
	return &closer{f}, nil
}

func (s packSource) String() string {
	return s.p.String()
}

// SearchPath resolves names against directories and pak archives. Later
// bindings shadow earlier ones.
type SearchPath struct {
	mutex   sync.RWMutex
	sources []source
	packs   []*pack.Pack
}

// AddDir binds a directory and all of its pakN.pak files.
func (s *SearchPath) AddDir(dir string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sources = append([]source{dirSource(dir)}, s.sources...)
	// pak files win over loose files, higher numbers over lower ones
	for i := 0; ; i++ {
		pfp := filepath.Join(dir, fmt.Sprintf("pak%d.pak", i))
		p, err := pack.NewPackReader(pfp)
		if err != nil {
			break
		}
		s.packs = append(s.packs, p)
		s.sources = append([]source{packSource{p}}, s.sources...)
	}
}

func (s *SearchPath) Open(name string) (File, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	name = filepath.ToSlash(name)
	for _, src := range s.sources {
		f, err := src.open(name)
		if err == nil {
			return f, nil
		}
	}
	return nil, errors.Wrap(os.ErrNotExist, name)
}

func (s *SearchPath) ReadFile(name string) ([]byte, error) {
	file, err := s.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// Close releases all opened pak files.
func (s *SearchPath) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var first error
	for _, p := range s.packs {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.packs = nil
	s.sources = nil
	return first
}

var (
	defaultPath SearchPath
)

// UseBaseDir makes dir (and optionally game below it) the default search path.
func UseBaseDir(dir, game string) {
	defaultPath.Close()
	defaultPath.AddDir(dir)
	if game != "" {
		defaultPath.AddDir(filepath.Join(dir, game))
	}
}

func Open(name string) (File, error) {
	return defaultPath.Open(name)
}

func ReadFile(name string) ([]byte, error) {
	return defaultPath.ReadFile(name)
}

func isSep(c uint8) bool {
	return c == '/' || c == '\\'
}

func Ext(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func StripExt(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
