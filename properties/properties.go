// Package properties publishes build properties to the places a CI build
// can consume them.
package properties

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
	"github.com/input-output-hk/catalyst-forge-libs/maven/fs"
)

// GitHubOutputEnv names the file GitHub Actions reads step outputs from.
const GitHubOutputEnv = "GITHUB_OUTPUT"

// Sink accepts string key/value properties.
type Sink interface {
	Define(key, value string) error
	Flush() error
}

// DefineAll defines every property in props in key order and flushes sink.
func DefineAll(sink Sink, props map[string]string) error {
	for _, k := range SortedKeys(props) {
		if err := sink.Define(k, props[k]); err != nil {
			return err
		}
	}
	return sink.Flush()
}

// SortedKeys returns the keys of props in lexical order.
func SortedKeys(props map[string]string) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MapSink collects properties in memory.
type MapSink map[string]string

// Define implements Sink.
func (m MapSink) Define(key, value string) error {
	m[key] = value
	return nil
}

// Flush implements Sink.
func (m MapSink) Flush() error { return nil }

// FileSink writes a Java .properties file on Flush, replacing the file.
type FileSink struct {
	fs    fs.Filesystem
	path  string
	props map[string]string
}

// NewFileSink creates a sink writing to path.
func NewFileSink(filesystem fs.Filesystem, path string) *FileSink {
	return &FileSink{fs: filesystem, path: path, props: map[string]string{}}
}

// Define implements Sink.
func (s *FileSink) Define(key, value string) error {
	s.props[key] = value
	return nil
}

// Flush implements Sink.
func (s *FileSink) Flush() error {
	var sb strings.Builder
	for _, k := range SortedKeys(s.props) {
		sb.WriteString(escape(k, true))
		sb.WriteByte('=')
		sb.WriteString(escape(s.props[k], false))
		sb.WriteByte('\n')
	}
	if err := s.fs.WriteFileAtomic(s.path, []byte(sb.String()), 0o644); err != nil {
		return errors.WrapWithContext(err, errors.CodeIO, "failed to write properties file",
			map[string]interface{}{"path": s.path})
	}
	return nil
}

// escape applies the .properties escaping rules for keys or values.
func escape(s string, key bool) string {
	var sb strings.Builder
	for i, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '=', ':', '#', '!':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case ' ':
			if key || i == 0 {
				sb.WriteByte('\\')
			}
			sb.WriteRune(r)
		default:
			if r > 0xffff {
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(&sb, `\u%04x\u%04x`, hi, lo)
				continue
			}
			if r > 0x7e {
				fmt.Fprintf(&sb, `\u%04x`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// GitHubOutputSink appends name=value lines to the GitHub Actions output
// file. Dots in keys become underscores so outputs are valid identifiers.
type GitHubOutputSink struct {
	path  string
	lines []string
	open  func(path string) (io.WriteCloser, error)
}

// NewGitHubOutputSink creates a sink for the file named by GITHUB_OUTPUT.
// It fails with CodeInvalidConfig when the variable is unset.
func NewGitHubOutputSink() (*GitHubOutputSink, error) {
	path := os.Getenv(GitHubOutputEnv)
	if path == "" {
		return nil, errors.Newf(errors.CodeInvalidConfig, "%s is not set", GitHubOutputEnv)
	}
	return &GitHubOutputSink{path: path, open: appendFile}, nil
}

func appendFile(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// Define implements Sink.
func (s *GitHubOutputSink) Define(key, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return errors.Newf(errors.CodeInvalidInput, "output %q spans multiple lines", key)
	}
	s.lines = append(s.lines, strings.ReplaceAll(key, ".", "_")+"="+value+"\n")
	return nil
}

// Flush implements Sink. Lines are kept when writing or closing fails.
func (s *GitHubOutputSink) Flush() error {
	if len(s.lines) == 0 {
		return nil
	}
	details := map[string]interface{}{"path": s.path}
	f, err := s.open(s.path)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeIO, "failed to open GitHub output file", details)
	}

	if _, err := io.WriteString(f, strings.Join(s.lines, "")); err != nil {
		_ = f.Close()
		return errors.WrapWithContext(err, errors.CodeIO, "failed to write GitHub output file", details)
	}
	if err := f.Close(); err != nil {
		return errors.WrapWithContext(err, errors.CodeIO, "failed to close GitHub output file", details)
	}
	s.lines = nil
	return nil
}
