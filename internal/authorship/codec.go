package authorship

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/satyamtg/git-ai/internal/lineset"
)

// ErrMalformedLog wraps every parse failure of the two-section format.
var ErrMalformedLog = errors.New("malformed authorship log")

const divider = "---"

// Emit serializes the log to the wire format: an attestation section, a
// literal "---" divider line, then the metadata JSON. Files appear in
// insertion order; entries within a file keep their recorded order so that
// later entries can mask earlier ones. Metadata fields are emitted in a fixed
// order and prompt keys in sorted order, so identical logs hash identically.
func (l *Log) Emit() ([]byte, error) {
	var b strings.Builder

	for _, f := range l.Attestations {
		var entries []Entry
		for _, e := range f.Entries {
			if !e.Lines.IsEmpty() {
				entries = append(entries, e)
			}
		}
		if len(entries) == 0 {
			continue
		}
		path, err := encodePath(f.Path)
		if err != nil {
			return nil, err
		}
		b.WriteString(path)
		b.WriteByte('\n')
		for _, e := range entries {
			if _, ok := l.Metadata.Prompts[e.Hash]; !ok {
				return nil, fmt.Errorf("attestation %s in %s has no prompt record", e.Hash, f.Path)
			}
			b.WriteString("  ")
			b.WriteString(e.Hash)
			b.WriteByte(' ')
			b.WriteString(e.Lines.String())
			b.WriteByte('\n')
		}
	}

	b.WriteString(divider)
	b.WriteByte('\n')

	// The messages key is required by the schema even when no transcript was
	// captured; a nil slice would serialize as null.
	for _, p := range l.Metadata.Prompts {
		if p.Messages == nil {
			p.Messages = []Message{}
		}
	}

	// encoding/json writes map keys sorted, which is exactly the determinism
	// the format needs.
	meta, err := json.MarshalIndent(&l.Metadata, "", "  ")
	if err != nil {
		return nil, err
	}
	b.Write(meta)
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// Parse reads the wire format back into a Log.
func Parse(data []byte) (*Log, error) {
	lines := strings.Split(string(data), "\n")

	dividerAt := -1
	for i, line := range lines {
		if line == divider {
			dividerAt = i
			break
		}
	}
	if dividerAt < 0 {
		return nil, fmt.Errorf("%w: missing %q divider", ErrMalformedLog, divider)
	}

	log := &Log{}
	var current *FileAttestation
	for i, line := range lines[:dividerAt] {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "  ") {
			if strings.HasPrefix(line, "   ") || strings.HasPrefix(line[2:], "\t") {
				return nil, fmt.Errorf("%w: bad indentation on line %d", ErrMalformedLog, i+1)
			}
			if current == nil {
				return nil, fmt.Errorf("%w: attestation entry before any file path on line %d", ErrMalformedLog, i+1)
			}
			entry, err := parseEntry(line[2:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedLog, i+1, err)
			}
			current.Entries = append(current.Entries, entry)
			continue
		}
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			return nil, fmt.Errorf("%w: bad indentation on line %d", ErrMalformedLog, i+1)
		}
		path, err := decodePath(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedLog, i+1, err)
		}
		log.Attestations = append(log.Attestations, FileAttestation{Path: path})
		current = &log.Attestations[len(log.Attestations)-1]
	}

	metaText := strings.Join(lines[dividerAt+1:], "\n")
	if err := json.Unmarshal([]byte(metaText), &log.Metadata); err != nil {
		return nil, fmt.Errorf("%w: metadata JSON: %v", ErrMalformedLog, err)
	}
	if log.Metadata.SchemaVersion == "" {
		return nil, fmt.Errorf("%w: missing schema_version", ErrMalformedLog)
	}
	if log.Metadata.Prompts == nil {
		log.Metadata.Prompts = make(map[string]*PromptRecord)
	}
	for _, p := range log.Metadata.Prompts {
		for _, m := range p.Messages {
			switch m.Type {
			case "user", "assistant", "tool_use":
			default:
				return nil, fmt.Errorf("%w: prompt message type %q", ErrMalformedLog, m.Type)
			}
		}
	}
	// Drop attestation files that carried no entries; the emitter never
	// writes them, but a hand-edited log may.
	log.Compact()
	for _, f := range log.Attestations {
		for _, e := range f.Entries {
			if _, ok := log.Metadata.Prompts[e.Hash]; !ok {
				return nil, fmt.Errorf("%w: attestation %s in %s has no prompt record", ErrMalformedLog, e.Hash, f.Path)
			}
		}
	}
	return log, nil
}

func parseEntry(s string) (Entry, error) {
	space := strings.IndexByte(s, ' ')
	if space < 0 {
		return Entry{}, fmt.Errorf("entry %q missing range spec", s)
	}
	hash, spec := s[:space], s[space+1:]
	if !validSessionHash(hash) {
		return Entry{}, fmt.Errorf("invalid session hash %q", hash)
	}
	set, err := lineset.Parse(spec)
	if err != nil {
		return Entry{}, err
	}
	if set.IsEmpty() {
		return Entry{}, fmt.Errorf("entry %q has empty range spec", s)
	}
	return Entry{Hash: hash, Lines: set}, nil
}

// validSessionHash accepts 16-hex hashes, plus 7..16-hex prefixes written by
// older tools.
func validSessionHash(s string) bool {
	if len(s) < 7 || len(s) > 16 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// encodePath quotes paths containing whitespace. Paths containing a double
// quote cannot be represented (the format has no escaping) and are rejected.
func encodePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty file path")
	}
	if strings.ContainsRune(path, '"') {
		return "", fmt.Errorf("file path %q contains a double quote", path)
	}
	if strings.ContainsAny(path, " \t\n") {
		return `"` + path + `"`, nil
	}
	return path, nil
}

func decodePath(line string) (string, error) {
	if strings.HasPrefix(line, `"`) {
		if len(line) < 2 || !strings.HasSuffix(line, `"`) {
			return "", fmt.Errorf("unterminated quoted path %q", line)
		}
		path := line[1 : len(line)-1]
		if path == "" {
			return "", fmt.Errorf("empty quoted path")
		}
		return path, nil
	}
	if strings.ContainsRune(line, '"') {
		return "", fmt.Errorf("path %q contains a double quote", line)
	}
	return line, nil
}
