// Package prefs stores small user preferences, such as the last sidebar
// selection, as flat files via diskv.
package prefs

import (
	"strconv"

	"github.com/peterbourgon/diskv/v3"
)

const (
	keyRow     = "last.row"
	keyType    = "last.type"
	keyProject = "last.project"
	keyName    = "last.name"
	keyNote    = "last.note"
)

// Selection is the last confirmed sidebar selection.
type Selection struct {
	Row        int
	Type       string
	ProjectURL string
	Name       string
}

// Store reads and writes preferences below a base directory.
type Store struct {
	d *diskv.Diskv
}

// Open creates a preference store rooted at dir
func Open(dir string) *Store {
	return &Store{d: diskv.New(diskv.Options{
		BasePath:     dir,
		CacheSizeMax: 64 * 1024,
	})}
}

func (s *Store) read(key string) string {
	if !s.d.Has(key) {
		return ""
	}
	val, err := s.d.Read(key)
	if err != nil {
		return ""
	}
	return string(val)
}

// Last returns the persisted selection. A missing selection has Row -1.
func (s *Store) Last() Selection {
	row := -1
	if raw := s.read(keyRow); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			row = n
		}
	}
	return Selection{
		Row:        row,
		Type:       s.read(keyType),
		ProjectURL: s.read(keyProject),
		Name:       s.read(keyName),
	}
}

// SetLast persists the selection.
func (s *Store) SetLast(sel Selection) error {
	values := map[string]string{
		keyRow:     strconv.Itoa(sel.Row),
		keyType:    sel.Type,
		keyProject: sel.ProjectURL,
		keyName:    sel.Name,
	}
	for key, val := range values {
		if err := s.d.Write(key, []byte(val)); err != nil {
			return err
		}
	}
	return nil
}

// LastNote returns the path of the last opened note, if any.
func (s *Store) LastNote() string {
	return s.read(keyNote)
}

// SetLastNote persists the path of the last opened note.
func (s *Store) SetLastNote(path string) error {
	return s.d.Write(keyNote, []byte(path))
}
