// Package source tracks the text handed to Compartment.Evaluate so that
// errors.Position can point back at a line and column.
package source

import "strings"

// SourceFile is a named span of script text. Name is purely for error
// messages; the core never touches a filesystem (§6.1 forbids it from
// allocating outside the supplied buffer, and it has no file-loading
// surface at all).
type SourceFile struct {
	Name    string
	Content string
	lines   []string
}

// NewSourceFile wraps sourceText under the given display name.
func NewSourceFile(name, content string) *SourceFile {
	return &SourceFile{Name: name, Content: content}
}

// NewEvalSource wraps content under the display name "<eval>".
func NewEvalSource(content string) *SourceFile {
	return NewSourceFile("<eval>", content)
}

// Lines returns the source split into lines, computed once.
func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}
