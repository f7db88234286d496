package sumstats

import (
	"fmt"
	"io"
	"strings"

	"github.com/csimplestring/go-csv/detector"
)

// MinHeaderDelimiters is the number of times a delimiter must occur in a
// header line before GuessHeaderDelimiter will choose it.
const MinHeaderDelimiters = 4

// headerDelimiters are tried in priority order.
var headerDelimiters = []string{"\t", " ", ","}

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	if len(delimiters) > 0 {
		return rune(delimiters[0][0])
	}

	return ','
}

// GuessHeaderDelimiter picks the first of tab, space and comma that occurs at
// least MinHeaderDelimiters times in the header line. There is no fallback:
// when nothing qualifies the boolean is false.
func GuessHeaderDelimiter(header string) (string, bool) {
	for _, delim := range headerDelimiters {
		if strings.Count(header, delim) >= MinHeaderDelimiters {
			return delim, true
		}
	}

	return "", false
}

// delimiterHint describes what a statistical delimiter detector makes of a
// header that GuessHeaderDelimiter rejected, so the user can see what went
// wrong.
func delimiterHint(header string) string {
	d := detector.New()
	candidates := d.DetectDelimiter(strings.NewReader(header+"\n"), '"')
	if len(candidates) == 0 {
		return fmt.Sprintf("A header needs at least %d tabs, spaces, or commas.", MinHeaderDelimiters)
	}

	return fmt.Sprintf("A header needs at least %d tabs, spaces, or commas; this one looks like it may be delimited by %q.", MinHeaderDelimiters, candidates)
}

// NewDelimiterError builds the FormatError returned when no delimiter can be
// guessed from a header line.
func NewDelimiterError(path, header string) *FormatError {
	return &FormatError{
		Path:   path,
		Line:   1,
		Values: RenderLine([]string{header}),
		Reason: "Cannot guess what delimiter to use to parse the header line",
		Hint:   delimiterHint(header),
	}
}
