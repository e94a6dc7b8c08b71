package access

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mapoio/confstack"
)

// FileReporter appends single-line, glyph-annotated records to a log file,
// per spec.md §4.7's file sink. Writes are serialized by a mutex so
// concurrent Report calls interleave cleanly.
type FileReporter struct {
	mu   sync.Mutex
	f    *os.File
	now  func() time.Time
	proc string
}

var _ confstack.AccessReporter = (*FileReporter)(nil)

// Open appends to (creating if necessary, including parent directories)
// path, writing a header line identifying the current process.
func Open(path string) (*FileReporter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &confstack.IoError{Path: path, Cause: err}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &confstack.IoError{Path: path, Cause: err}
	}

	r := &FileReporter{f: f, now: time.Now, proc: fmt.Sprintf("pid=%d", os.Getpid())}
	if _, err := fmt.Fprintf(f, "# confstack access log opened %s %s\n", r.now().UTC().Format(time.RFC3339), r.proc); err != nil {
		f.Close()
		return nil, &confstack.IoError{Path: path, Cause: err}
	}
	return r, nil
}

// Close flushes and closes the underlying file.
func (r *FileReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}

func (r *FileReporter) Report(event confstack.AccessEvent) {
	glyph, attribution := classify(event)
	line := fmt.Sprintf("%s %s value=%s attribution=%s kind=%s type=%s location=%s time=%s\n",
		glyph,
		event.Metadata.Key.Dotted(),
		displayResult(event.Result),
		attribution,
		event.Metadata.Kind,
		event.Metadata.ValueType,
		formatLocation(event.Metadata.SourceLocation),
		event.Metadata.Timestamp.UTC().Format(time.RFC3339),
	)

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.f.WriteString(line)
}

// classify picks the status glyph and attribution string for event: ✅ for
// a successful provider-attributed result, 🟡 for a default/nil/conversion
// fallback, ❌ for an error.
func classify(event confstack.AccessEvent) (string, string) {
	if event.ResultErr != nil {
		return "❌", event.ResultErr.Error()
	}
	for _, pr := range event.ProviderResults {
		if pr.Err != nil {
			return "❌", pr.Err.Error()
		}
	}
	if event.ConversionError != nil {
		return "🟡", "conversion fallback: " + event.ConversionError.Error()
	}
	for _, pr := range event.ProviderResults {
		if pr.Result.Found() {
			return "✅", pr.ProviderName
		}
	}
	return "🟡", "default/nil"
}
