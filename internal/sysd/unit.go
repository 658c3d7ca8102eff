package sysd

import (
	"fmt"
	"strings"

	"ct-host/internal/utils"

	"github.com/iancoleman/orderedmap"
)

// Section is one named block of a unit descriptor. Keys keep their
// insertion order, and a key may carry several values (systemd reads
// repeated Environment= lines as a list).
type Section struct {
	name    string
	entries *orderedmap.OrderedMap
}

// NewSection creates an empty section with the given header name.
func NewSection(name string) *Section {
	return &Section{
		name:    name,
		entries: orderedmap.New(),
	}
}

// Name returns the section header name.
func (s *Section) Name() string {
	return s.name
}

// Len returns the number of distinct keys in the section.
func (s *Section) Len() int {
	return len(s.entries.Keys())
}

/**
 * Set a key to a single value, replacing prior values
 * @param {string} key - Directive name
 * @param {string} value - Directive value
 * @returns {error} Returns error if the key or value is malformed
 */
func (s *Section) Set(key, value string) error {
	if err := checkEntry(key, value); err != nil {
		return err
	}
	s.entries.Set(key, []string{value})
	return nil
}

/**
 * Append a value to a key, keeping earlier values
 * @param {string} key - Directive name
 * @param {string} value - Directive value, written verbatim
 * @returns {error} Returns error if the key or value is malformed
 * @description
 * - Used for repeatable directives such as Environment=; values are
 *   emitted one line per value in the order they were added
 */
func (s *Section) Add(key, value string) error {
	if err := checkEntry(key, value); err != nil {
		return err
	}
	var values []string
	if prev, ok := s.entries.Get(key); ok {
		values = prev.([]string)
	}
	s.entries.Set(key, append(values, value))
	return nil
}

// Get returns the values recorded for a key.
func (s *Section) Get(key string) ([]string, bool) {
	v, ok := s.entries.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]string), true
}

// Keys in a unit directive must form a single `Key=value` line; a key
// containing '=' or either side containing a newline would silently
// change the descriptor's meaning, so both are rejected at build time.
func checkEntry(key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("unit directive key must not be empty")
	}
	if strings.ContainsAny(key, "=\n[]") {
		return fmt.Errorf("invalid unit directive key %q", key)
	}
	if strings.Contains(value, "\n") {
		return fmt.Errorf("unit directive %s: value must be a single line", key)
	}
	return nil
}

// Unit is an ordered collection of sections serialized into the
// supervisor's unit file grammar.
type Unit struct {
	sections []*Section
}

// NewUnit creates an empty unit descriptor.
func NewUnit() *Unit {
	return &Unit{}
}

// AddSection appends a section; sections render in insertion order.
func (u *Unit) AddSection(s *Section) {
	u.sections = append(u.sections, s)
}

// Section returns the first section with the given name, or nil.
func (u *Unit) Section(name string) *Section {
	for _, s := range u.sections {
		if s.name == name {
			return s
		}
	}
	return nil
}

/**
 * Serialize the unit descriptor
 * @returns {string} The unit file text, sections in order, blank line between
 */
func (u *Unit) Render() string {
	var b strings.Builder
	for i, s := range u.sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s]\n", s.name)
		for _, key := range s.entries.Keys() {
			values, _ := s.entries.Get(key)
			for _, value := range values.([]string) {
				fmt.Fprintf(&b, "%s=%s\n", key, value)
			}
		}
	}
	return b.String()
}

/**
 * Write the rendered unit descriptor to disk
 * @param {string} path - Unit file destination
 * @returns {error} Returns error on any write failure
 * @description
 * - The write is atomic (temp file then rename), so the supervisor can
 *   never observe a half-written unit file
 */
func (u *Unit) WriteFile(path string) error {
	return utils.WriteFileAtomic(path, []byte(u.Render()), 0644)
}
