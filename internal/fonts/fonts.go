// Package fonts loads the regular and bold font resources once per run and
// hands out sized faces.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ErrFontUnavailable is returned when a font resource cannot be read or parsed.
var ErrFontUnavailable = errors.New("font unavailable")

// Weight selects one of the two loaded fonts.
type Weight int

const (
	Regular Weight = iota
	Bold
)

func (w Weight) String() string {
	if w == Bold {
		return "bold"
	}
	return "regular"
}

// builtin maps logical names to the embedded Go fonts.
var builtin = map[string][]byte{
	"goregular": goregular.TTF,
	"gobold":    gobold.TTF,
	"gomedium":  gomedium.TTF,
	"gomono":    gomono.TTF,
}

// Set holds the parsed fonts. Parsed fonts are safe to share; faces are not.
type Set struct {
	regular *opentype.Font
	bold    *opentype.Font
	names   [2]string
	data    [2][]byte
}

// Load parses both fonts. Each name is a logical name or a file path.
func Load(regular, bold string) (*Set, error) {
	s := &Set{names: [2]string{regular, bold}}
	var err error
	if s.regular, s.data[Regular], err = parse(regular); err != nil {
		return nil, err
	}
	if s.bold, s.data[Bold], err = parse(bold); err != nil {
		return nil, err
	}
	return s, nil
}

// Default returns the embedded Go regular and bold fonts.
func Default() *Set {
	s, err := Load("goregular", "gobold")
	if err != nil {
		panic(err)
	}
	return s
}

// Parse loads one font by logical name or path.
func Parse(name string) (*opentype.Font, error) {
	f, _, err := parse(name)
	return f, err
}

func parse(name string) (*opentype.Font, []byte, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	data, ok := builtin[key]
	if !ok {
		var err error
		data, err = os.ReadFile(name)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrFontUnavailable, name, err)
		}
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrFontUnavailable, name, err)
	}
	return f, data, nil
}

// Data returns the raw font file of a weight.
func (s *Set) Data(w Weight) []byte { return s.data[w] }

// Name returns the configured name of a weight.
func (s *Set) Name(w Weight) string { return s.names[w] }

// NewFace creates a face of the given weight and pixel size.
func (s *Set) NewFace(w Weight, size float64) (font.Face, error) {
	f := s.regular
	if w == Bold {
		f = s.bold
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s at %.1fpx: %v", ErrFontUnavailable, s.names[w], size, err)
	}
	return face, nil
}

type faceKey struct {
	w    Weight
	size float64
}

// Faces caches faces by weight and size. It is not safe for concurrent use;
// give each goroutine its own.
type Faces struct {
	set   *Set
	cache map[faceKey]font.Face
}

// NewFaces returns an empty cache over set.
func NewFaces(set *Set) *Faces {
	return &Faces{set: set, cache: make(map[faceKey]font.Face)}
}

// Get returns a cached face, creating it on first use.
func (f *Faces) Get(w Weight, size float64) (font.Face, error) {
	k := faceKey{w, size}
	if face, ok := f.cache[k]; ok {
		return face, nil
	}
	face, err := f.set.NewFace(w, size)
	if err != nil {
		return nil, err
	}
	f.cache[k] = face
	return face, nil
}

// Close releases every cached face.
func (f *Faces) Close() error {
	var errs []error
	for k, face := range f.cache {
		if err := face.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(f.cache, k)
	}
	return errors.Join(errs...)
}
