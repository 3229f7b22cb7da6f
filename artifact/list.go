package artifact

import (
	"bufio"
	"io"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/maven/errors"
)

var scopes = map[string]bool{
	"compile":  true,
	"provided": true,
	"runtime":  true,
	"test":     true,
	"system":   true,
	"import":   true,
}

// ParseList reads the output of
// mvn dependency:list -DoutputAbsoluteArtifactFilename=true.
//
// Each dependency line has the form
//
//	groupId:artifactId:type[:classifier]:version:scope:/absolute/file
//
// optionally followed by " -- module name" or " (optional)". Lines that do
// not match, such as headers and blank lines, are ignored. Artifacts are
// returned in the order they appear.
func ParseList(r io.Reader) ([]Artifact, error) {
	var out []Artifact
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if a, ok := parseLine(sc.Text()); ok {
			out = append(out, a)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeArtifactResolution, "failed to read dependency list")
	}
	return out, nil
}

func parseLine(line string) (Artifact, bool) {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "[INFO]"))
	if i := strings.Index(line, " -- "); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(strings.TrimSuffix(line, "(optional)"))
	parts := strings.Split(line, ":")
	var a Artifact
	switch {
	case len(parts) >= 6 && scopes[parts[4]]:
		a = Artifact{Type: parts[2], Version: parts[3], Scope: parts[4], File: strings.Join(parts[5:], ":")}
	case len(parts) >= 7 && scopes[parts[5]]:
		a = Artifact{Type: parts[2], Classifier: parts[3], Version: parts[4], Scope: parts[5], File: strings.Join(parts[6:], ":")}
	default:
		return Artifact{}, false
	}
	a.GroupID, a.ArtifactID = parts[0], parts[1]
	if a.GroupID == "" || a.ArtifactID == "" || a.File == "" {
		return Artifact{}, false
	}
	return a, true
}
