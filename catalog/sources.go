package catalog

import (
	"os"
	"path/filepath"
)

// Source names used in MissingSourceError.
const (
	SourceAnswers      = "answersembed"
	SourceAgencies     = "agencies"
	SourceIntroClosing = "introclosing"
	SourceConjunctions = "conjunctions"
)

// Source is a required input file in the data directory.
type Source struct {
	Name string
	File string
}

// RequiredSources lists the four sources Load needs, in report order.
var RequiredSources = []Source{
	{Name: SourceAnswers, File: "answersembed.db"},
	{Name: SourceAgencies, File: "agencies.db"},
	{Name: SourceIntroClosing, File: "introclosing.db"},
	{Name: SourceConjunctions, File: "conjunctions.json"},
}

// SourcePath returns the path of the named source inside dir.
// Unknown names yield an empty string.
func SourcePath(dir, name string) string {
	for _, src := range RequiredSources {
		if src.Name == name {
			return filepath.Join(dir, src.File)
		}
	}
	return ""
}

// missingSources returns the names of required sources that do not exist in dir.
func missingSources(dir string) []string {
	var missing []string
	for _, src := range RequiredSources {
		if _, err := os.Stat(filepath.Join(dir, src.File)); err != nil {
			missing = append(missing, src.Name)
		}
	}
	return missing
}
