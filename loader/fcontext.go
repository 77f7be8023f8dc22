package loader

import (
	"bufio"
	"io"
	"strings"

	"github.com/avkit/avpolicy/policy"
)

// FileTypeLetter is one of the file_contexts filetype markers (spec
// §6: "{-d,-c,-b,--,-p,-l,-s, any}").
type FileTypeLetter string

const (
	FileTypeDir    FileTypeLetter = "-d"
	FileTypeChar   FileTypeLetter = "-c"
	FileTypeBlock  FileTypeLetter = "-b"
	FileTypeRegular FileTypeLetter = "--"
	FileTypeFIFO   FileTypeLetter = "-p"
	FileTypeLink   FileTypeLetter = "-l"
	FileTypeSocket FileTypeLetter = "-s"
	FileTypeAny    FileTypeLetter = "any"
)

// FileContextEntry is one path/context row from a file_contexts
// database (spec §6's file-context collaborator).
type FileContextEntry struct {
	Path     string
	FileType FileTypeLetter
	Context  string // raw "user:role:type:range" form, uninterpreted
}

// FileContextLoader reads a file_contexts-style database: whitespace-
// separated "path [filetype] context" lines, '#' comments, blank lines
// skipped. Grounded on the same line-oriented reader shape as
// TextLoader, since the original's file_contexts grammar is likewise
// one record per line.
type FileContextLoader struct{}

func NewFileContextLoader() *FileContextLoader { return &FileContextLoader{} }

// Load reads every entry from r.
func (l *FileContextLoader) Load(r io.Reader) ([]FileContextEntry, error) {
	scanner := bufio.NewScanner(r)
	var out []FileContextEntry
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if idx := strings.IndexByte(text, '#'); idx >= 0 {
			text = text[:idx]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, &ParseError{Line: line, Message: "file_contexts entry needs a path and a context"}
		}
		entry := FileContextEntry{Path: fields[0]}
		if len(fields) == 2 {
			entry.FileType = FileTypeAny
			entry.Context = fields[1]
		} else {
			ft, ok := parseFileTypeLetter(fields[1])
			if !ok {
				return nil, &ParseError{Line: line, Message: "unrecognized filetype letter " + fields[1]}
			}
			entry.FileType = ft
			entry.Context = fields[2]
		}
		out = append(out, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, policy.WrapError(policy.ErrMalformedPolicy, "reading file_contexts", err)
	}
	return out, nil
}

func parseFileTypeLetter(s string) (FileTypeLetter, bool) {
	switch FileTypeLetter(s) {
	case FileTypeDir, FileTypeChar, FileTypeBlock, FileTypeRegular, FileTypeFIFO, FileTypeLink, FileTypeSocket, FileTypeAny:
		return FileTypeLetter(s), true
	}
	return "", false
}
