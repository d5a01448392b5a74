package compose

import (
	"strings"

	"github.com/poiesic/answerdesk/core"
)

// AgencyLookup resolves agency names. *catalog.Catalog implements it.
type AgencyLookup interface {
	Agency(name string) (core.Agency, bool)
}

// ExpandNewlines replaces literal backslash-n sequences, as stored in the
// source tables, with real line breaks.
func ExpandNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// AgencyLine formats the contact line for an agency:
//
//	※ name(telpaid, website)
//
// The phone number and paid-call text are concatenated. Empty parts are left
// out along with their separator, and the parentheses are dropped when both
// are empty.
func AgencyLine(a core.Agency) string {
	telPaid := a.Tel + a.Paid
	var b strings.Builder
	b.WriteString("※ ")
	b.WriteString(a.Name)
	switch {
	case telPaid != "" && a.Website != "":
		b.WriteString("(" + telPaid + ", " + a.Website + ")")
	case telPaid != "":
		b.WriteString("(" + telPaid + ")")
	case a.Website != "":
		b.WriteString("(" + a.Website + ")")
	}
	return b.String()
}

// Preview renders a record for reading or copying.
//
// Agencies the lookup does not know are omitted. The result is trimmed of
// surrounding whitespace. A nil record renders as "".
func Preview(rec *core.AnswerRecord, conjunction string, agencies AgencyLookup) string {
	if rec == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(conjunction)
	b.WriteString(ExpandNewlines(rec.MainText))

	if agencies != nil {
		var lines []string
		for _, name := range rec.AgencyNames() {
			agency, ok := agencies.Agency(name)
			if !ok {
				continue
			}
			if agency.Name == "" {
				agency.Name = name
			}
			lines = append(lines, AgencyLine(agency))
		}
		if len(lines) > 0 {
			b.WriteString("\n")
			b.WriteString(strings.Join(lines, "\n"))
		}
	}
	return strings.TrimSpace(b.String())
}
