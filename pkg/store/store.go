// Package store keeps drawing documents in a folder on an afero filesystem.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chazu/sewcustom/pkg/drawing"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

const (
	// DefaultUploadName is used when an upload carries no filename.
	DefaultUploadName = "unknown.txt"

	savePrefix = "drawing_"
	timeLayout = "20060102_150405"
)

var (
	ErrNotFound    = errors.New("drawing not found")
	ErrInvalidName = errors.New("invalid drawing name")
	ErrInvalidJSON = errors.New("invalid drawing JSON")
)

// Store keeps drawing documents as JSON files in a single folder.
type Store struct {
	fs  afero.Fs
	dir string
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the clock used to name saved drawings.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New opens the folder dir, creating it when missing.
func New(fs afero.Fs, dir string, opts ...Option) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create storage folder %s", dir)
	}

	s := &Store{fs: fs, dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Path returns the on-disk path of name. name must be a bare file name.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", errors.Wrapf(ErrInvalidName, "'%s'", name)
	}
	return filepath.Join(s.dir, name), nil
}

// Save stores raw JSON under a timestamped name and returns that name. When
// the name is taken a _N suffix is added.
func (s *Store) Save(raw []byte) (string, error) {
	content, err := indent(raw)
	if err != nil {
		return "", err
	}

	base := savePrefix + s.now().Format(timeLayout)
	for n := 1; ; n++ {
		name := base + ".json"
		if n > 1 {
			name = fmt.Sprintf("%s_%d.json", base, n)
		}

		err := s.create(name, content)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", errors.Wrapf(err, "failed to save drawing %s", name)
		}
	}
}

func (s *Store) create(name string, content []byte) error {
	f, err := s.fs.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// Upload stores an uploaded document. A .txt name becomes .json and any
// other extension gets .json appended. data may be the document itself or
// a JSON string holding it. An existing file of the same name is replaced.
func (s *Store) Upload(filename string, data []byte) (string, error) {
	name := UploadName(filename)
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return "", errors.Wrap(ErrInvalidJSON, err.Error())
		}
		data = []byte(inner)
	}

	content, err := indent(data)
	if err != nil {
		return "", err
	}

	if err := afero.WriteFile(s.fs, path, content, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write upload %s", name)
	}

	return name, nil
}

// UploadName maps an uploaded file name to the stored name.
func UploadName(filename string) string {
	filename = strings.TrimSpace(strings.ReplaceAll(filename, `\`, "/"))
	if filename == "" {
		filename = DefaultUploadName
	}
	name := filepath.Base(filename)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return name
	case ".txt":
		return strings.TrimSuffix(name, filepath.Ext(name)) + ".json"
	default:
		return name + ".json"
	}
}

// Entry describes a stored file.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Entries returns the files with one of the given extensions, newest name
// first. With no extensions every file is returned.
func (s *Store) Entries(exts ...string) ([]Entry, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list storage folder %s", s.dir)
	}

	infos = lo.Filter(infos, func(fi os.FileInfo, _ int) bool {
		if fi.IsDir() {
			return false
		}
		return len(exts) == 0 || lo.Contains(exts, strings.ToLower(filepath.Ext(fi.Name())))
	})

	entries := lo.Map(infos, func(fi os.FileInfo, _ int) Entry {
		return Entry{Name: fi.Name(), Size: fi.Size(), ModTime: fi.ModTime()}
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name > entries[j].Name
	})

	return entries, nil
}

// List returns the names Entries would.
func (s *Store) List(exts ...string) ([]string, error) {
	entries, err := s.Entries(exts...)
	if err != nil {
		return nil, err
	}
	return lo.Map(entries, func(e Entry, _ int) string { return e.Name }), nil
}

func (s *Store) ReadRaw(name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	buf, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(ErrNotFound, "'%s'", name)
		}
		return nil, errors.Wrapf(err, "failed to read drawing %s", name)
	}

	return buf, nil
}

// Load reads and parses a stored drawing.
func (s *Store) Load(name string) (*drawing.Drawing, error) {
	buf, err := s.ReadRaw(name)
	if err != nil {
		return nil, err
	}

	d, err := drawing.Parse(buf)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidJSON, "%s: %v", name, err)
	}

	return d, nil
}

// indent validates raw and re-indents it with two spaces. Unknown fields
// are kept as written.
func indent(raw []byte) ([]byte, error) {
	if !json.Valid(raw) {
		return nil, ErrInvalidJSON
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, errors.Wrap(ErrInvalidJSON, err.Error())
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}
