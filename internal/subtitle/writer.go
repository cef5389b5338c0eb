package subtitle

import (
	"bufio"
	"fmt"
	"io"
)

// WriteVTT serializes bilingual records as a WebVTT document. Each cue gets
// a 1-based sequence number, a timing line, the primary text, and the
// secondary text on a second line when present.
func WriteVTT(w io.Writer, records []Record) error {
	buf := bufio.NewWriter(w)

	if _, err := fmt.Fprint(buf, "WEBVTT\n\n"); err != nil {
		return err
	}

	for i, record := range records {
		fmt.Fprintf(buf, "%d\n", i+1)
		fmt.Fprintf(buf, "%s --> %s\n", FormatTimecode(record.Start), FormatTimecode(record.End))
		fmt.Fprintf(buf, "%s", record.PrimaryText)
		if record.SecondaryText != "" {
			fmt.Fprintf(buf, "\n%s", record.SecondaryText)
		}
		if _, err := fmt.Fprint(buf, "\n\n"); err != nil {
			return err
		}
	}

	return buf.Flush()
}
