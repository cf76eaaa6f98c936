package inifile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// File represents a parsed INI file.
type File struct {
	Sections []Section
}

// Section represents a named section in an INI file.
type Section struct {
	Name   string     // e.g., "db", "backup"
	Values []KeyValue // preserves order
}

// KeyValue represents a key-value pair.
type KeyValue struct {
	Key   string
	Value string
	Line  int
}

// Parse reads an INI file from the given reader.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	var currentSection *Section

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := strings.ToLower(strings.TrimSpace(strings.Trim(line, "[]")))
			if s := f.Section(name); s != nil {
				currentSection = s
				continue
			}
			f.Sections = append(f.Sections, Section{Name: name})
			currentSection = &f.Sections[len(f.Sections)-1]
			continue
		}

		if currentSection == nil {
			continue // Ignore keys before any section
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		currentSection.Values = append(currentSection.Values, KeyValue{
			Key:   strings.ToLower(strings.TrimSpace(key)),
			Value: strings.TrimSpace(value),
			Line:  lineNo,
		})
	}

	return f, scanner.Err()
}

// ParseFile reads and parses an INI file from disk.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Section returns the section with the given name (case-insensitive).
func (f *File) Section(name string) *Section {
	name = strings.ToLower(name)
	for i := range f.Sections {
		if f.Sections[i].Name == name {
			return &f.Sections[i]
		}
	}
	return nil
}

// Get returns the last value for a key in a section.
func (f *File) Get(section, key string) string {
	s := f.Section(section)
	if s == nil {
		return ""
	}
	return s.Get(key)
}

// GetList splits a comma-separated value, dropping empty entries.
func (f *File) GetList(section, key string) []string {
	var result []string
	for _, part := range strings.Split(f.Get(section, key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// GetBool parses true/false/1/0/yes/no. ok is false when the key is absent.
func (f *File) GetBool(section, key string) (value bool, ok bool, err error) {
	raw := f.Get(section, key)
	if raw == "" {
		return false, false, nil
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true, true, nil
	case "false", "0", "no":
		return false, true, nil
	default:
		return false, true, fmt.Errorf("invalid boolean value for %s.%s: %q (expected true/false/1/0)", section, key, raw)
	}
}

// GetInt parses an integer value. ok is false when the key is absent.
func (f *File) GetInt(section, key string) (value int, ok bool, err error) {
	raw := f.Get(section, key)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("invalid integer value for %s.%s: %q", section, key, raw)
	}
	return n, true, nil
}

// Get returns the last value for a key (case-insensitive).
func (s *Section) Get(key string) string {
	key = strings.ToLower(key)
	var result string
	for _, kv := range s.Values {
		if kv.Key == key {
			result = kv.Value
		}
	}
	return result
}

// HasKey returns true if the section contains the given key.
func (s *Section) HasKey(key string) bool {
	key = strings.ToLower(key)
	for _, kv := range s.Values {
		if kv.Key == key {
			return true
		}
	}
	return false
}
