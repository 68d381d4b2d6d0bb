// Package progress tracks byte throughput of blobs streaming to or
// from the object store. File counts travel on the event stream; this
// package covers the inner byte stream of a single blob, for rate and
// progress bar display.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Reporter receives byte-level observations while blobs stream.
type Reporter interface {
	// SetTotal sets the number of blobs and bytes in the whole run
	SetTotal(blobs int, totalBytes int64)
	// Start begins tracking one blob
	Start(name string, size int64)
	// Update reports bytes moved so far for the current blob
	Update(transferred int64)
	// Complete marks the current blob as done
	Complete()
	// Error reports a failure on the current blob
	Error(err error)
}

// Callback is a function that receives progress observations
type Callback func(u Update)

// Update is one progress observation.
type Update struct {
	Kind           Kind
	Name           string
	Transferred    int64
	Size           int64
	BlobsDone      int
	BlobsTotal     int
	BytesDone      int64
	BytesTotal     int64
	BytesPerSecond float64
	Err            error
}

// Kind indicates what an observation reports
type Kind int

const (
	KindStart Kind = iota
	KindProgress
	KindComplete
	KindError
)

// CallbackReporter fans every observation into a callback function.
type CallbackReporter struct {
	callback    Callback
	mu          sync.Mutex
	name        string
	size        int64
	transferred int64
	blobsTotal  int
	bytesTotal  int64
	blobsDone   int
	bytesDone   int64
	startTime   time.Time
}

// NewCallbackReporter creates a reporter that forwards to callback.
func NewCallbackReporter(callback Callback) *CallbackReporter {
	return &CallbackReporter{callback: callback}
}

// SetTotal sets the number of blobs and bytes in the whole run.
func (r *CallbackReporter) SetTotal(blobs int, totalBytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobsTotal = blobs
	r.bytesTotal = totalBytes
}

// Start begins tracking one blob.
func (r *CallbackReporter) Start(name string, size int64) {
	r.mu.Lock()
	r.name = name
	r.size = size
	r.transferred = 0
	r.startTime = time.Now()

	update := Update{
		Kind:       KindStart,
		Name:       name,
		Size:       size,
		BlobsDone:  r.blobsDone,
		BlobsTotal: r.blobsTotal,
		BytesDone:  r.bytesDone,
		BytesTotal: r.bytesTotal,
	}
	callback := r.callback
	r.mu.Unlock()

	// Call outside the lock so callbacks may re-enter the reporter
	if callback != nil {
		callback(update)
	}
}

// Update reports bytes moved so far for the current blob.
func (r *CallbackReporter) Update(transferred int64) {
	r.mu.Lock()
	r.transferred = transferred

	var bytesPerSecond float64
	elapsed := time.Since(r.startTime).Seconds()
	if elapsed > 0 {
		bytesPerSecond = float64(transferred) / elapsed
	}

	update := Update{
		Kind:           KindProgress,
		Name:           r.name,
		Transferred:    transferred,
		Size:           r.size,
		BlobsDone:      r.blobsDone,
		BlobsTotal:     r.blobsTotal,
		BytesDone:      r.bytesDone + transferred,
		BytesTotal:     r.bytesTotal,
		BytesPerSecond: bytesPerSecond,
	}
	callback := r.callback
	r.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// Complete marks the current blob as done.
func (r *CallbackReporter) Complete() {
	r.mu.Lock()
	r.blobsDone++
	r.bytesDone += r.size

	update := Update{
		Kind:        KindComplete,
		Name:        r.name,
		Transferred: r.size,
		Size:        r.size,
		BlobsDone:   r.blobsDone,
		BlobsTotal:  r.blobsTotal,
		BytesDone:   r.bytesDone,
		BytesTotal:  r.bytesTotal,
	}
	callback := r.callback
	r.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// Error reports a failure on the current blob.
func (r *CallbackReporter) Error(err error) {
	r.mu.Lock()
	update := Update{
		Kind:       KindError,
		Name:       r.name,
		BlobsDone:  r.blobsDone,
		BlobsTotal: r.blobsTotal,
		BytesDone:  r.bytesDone,
		BytesTotal: r.bytesTotal,
		Err:        err,
	}
	callback := r.callback
	r.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// CountingReader wraps an io.Reader and reports bytes read.
type CountingReader struct {
	reader      io.Reader
	reporter    Reporter
	transferred int64
}

// NewCountingReader creates a progress-tracking reader.
func NewCountingReader(r io.Reader, reporter Reporter) *CountingReader {
	return &CountingReader{reader: r, reporter: reporter}
}

// Read implements io.Reader.
func (cr *CountingReader) Read(p []byte) (n int, err error) {
	n, err = cr.reader.Read(p)
	if n > 0 {
		cr.transferred += int64(n)
		if cr.reporter != nil {
			cr.reporter.Update(cr.transferred)
		}
	}
	return n, err
}

// CountingWriter wraps an io.Writer and reports bytes written.
type CountingWriter struct {
	writer      io.Writer
	reporter    Reporter
	transferred int64
}

// NewCountingWriter creates a progress-tracking writer.
func NewCountingWriter(w io.Writer, reporter Reporter) *CountingWriter {
	return &CountingWriter{writer: w, reporter: reporter}
}

// Write implements io.Writer.
func (cw *CountingWriter) Write(p []byte) (n int, err error) {
	n, err = cw.writer.Write(p)
	if n > 0 {
		cw.transferred += int64(n)
		if cw.reporter != nil {
			cw.reporter.Update(cw.transferred)
		}
	}
	return n, err
}

// NullReporter is a no-op reporter.
type NullReporter struct{}

func (NullReporter) SetTotal(blobs int, totalBytes int64) {}
func (NullReporter) Start(name string, size int64)        {}
func (NullReporter) Update(transferred int64)             {}
func (NullReporter) Complete()                            {}
func (NullReporter) Error(err error)                      {}

// FormatBytes renders a byte count for display.
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// FormatSpeed renders a transfer rate for display.
func FormatSpeed(bytesPerSecond float64) string {
	return FormatBytes(int64(bytesPerSecond)) + "/s"
}

// Bar renders a fixed-width progress bar.
func Bar(current, total int64, width int) string {
	if total == 0 {
		return ""
	}

	percent := float64(current) / float64(total)
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}

	bar := make([]byte, width)
	for i := 0; i < width; i++ {
		if i < filled {
			bar[i] = '='
		} else if i == filled {
			bar[i] = '>'
		} else {
			bar[i] = ' '
		}
	}

	return fmt.Sprintf("[%s] %5.1f%%", string(bar), percent*100)
}
