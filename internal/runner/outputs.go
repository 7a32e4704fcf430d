package runner

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"evalgo.org/packsmith/internal/apperr"
)

// Output is one GitHub Actions step output.
type Output struct {
	Key   string
	Value string
}

// format renders o for $GITHUB_OUTPUT. Multi-line values use the heredoc
// form with a random delimiter.
func (o Output) format() string {
	if !strings.ContainsAny(o.Value, "\r\n") {
		return fmt.Sprintf("%s=%s\n", o.Key, o.Value)
	}
	delim := "ghadelimiter_" + uuid.NewString()
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", o.Key, delim, o.Value, delim)
}

// WriteOutputs prints outputs to w and, when outputFile is set, appends
// them to it.
func WriteOutputs(w io.Writer, outputFile string, outputs []Output) error {
	var b strings.Builder
	for _, o := range outputs {
		b.WriteString(o.format())
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if outputFile == "" {
		return nil
	}

	f, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return apperr.IO("open step output file", outputFile, err)
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		return apperr.IO("write step outputs", outputFile, err)
	}
	return nil
}
