// Package mp3 decodes MP3 audio from URLs, local files or in-memory buffers
// into mono samples.
package mp3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/hajimehoshi/go-mp3"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

// DefaultMaxBytes caps how much encoded audio is read from one source.
const DefaultMaxBytes = 32 << 20

var (
	// ErrTooLarge reports encoded audio beyond the decoder's byte limit.
	ErrTooLarge = errors.New("mp3: audio exceeds size limit")
	// ErrLocalFilesDisabled reports a non-http(s) URL on a decoder built
	// without WithLocalFiles.
	ErrLocalFilesDisabled = errors.New("mp3: local files are disabled")
)

var _ ports.AudioDecoder = (*Decoder)(nil)

// Decoder implements ports.AudioDecoder with go-mp3.
type Decoder struct {
	client     *http.Client
	maxBytes   int64
	localFiles bool
	log        logging.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLocalFiles lets URLs without an http(s) scheme open local files.
func WithLocalFiles() Option {
	return func(d *Decoder) { d.localFiles = true }
}

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxBytes = n
		}
	}
}

// NewDecoder creates a decoder whose HTTP fetches time out after timeout.
// Only http(s) URLs and buffers are accepted unless WithLocalFiles is given.
func NewDecoder(timeout time.Duration, logger logging.Logger, opts ...Option) *Decoder {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	d := &Decoder{
		client:   &http.Client{Timeout: timeout},
		maxBytes: DefaultMaxBytes,
		log:      logger.WithFields(logging.Fields{"component": "mp3"}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode reads ref.Data when set, otherwise fetches ref.URL. With local files
// enabled, a URL without an http(s) scheme is opened as a path. Every failure
// is a *ports.DecodeError.
func (d *Decoder) Decode(ctx context.Context, ref domain.AudioRef) (domain.Samples, error) {
	source := ref.URL
	if len(ref.Data) > 0 {
		source = "buffer"
	}

	samples, err := d.decode(ctx, ref)
	if err != nil {
		return domain.Samples{}, &ports.DecodeError{Source: source, Err: err}
	}
	d.log.Debug("decoded audio", logging.Fields{
		"source":      source,
		"samples":     len(samples.Data),
		"sample_rate": samples.SampleRate,
	})
	return samples, nil
}

func (d *Decoder) decode(ctx context.Context, ref domain.AudioRef) (domain.Samples, error) {
	if len(ref.Data) > 0 {
		if int64(len(ref.Data)) > d.maxBytes {
			return domain.Samples{}, ErrTooLarge
		}
		return d.decodeReader(bytes.NewReader(ref.Data))
	}
	if ref.URL == "" {
		return domain.Samples{}, errors.New("no url or data")
	}

	body, err := d.open(ctx, ref.URL)
	if err != nil {
		return domain.Samples{}, err
	}
	defer body.Close()

	encoded, err := io.ReadAll(io.LimitReader(body, d.maxBytes+1))
	if err != nil {
		return domain.Samples{}, fmt.Errorf("read source: %w", err)
	}
	if int64(len(encoded)) > d.maxBytes {
		return domain.Samples{}, ErrTooLarge
	}
	return d.decodeReader(bytes.NewReader(encoded))
}

func (d *Decoder) open(ctx context.Context, url string) (io.ReadCloser, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		if !d.localFiles {
			return nil, ErrLocalFilesDisabled
		}
		f, err := os.Open(url)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (d *Decoder) decodeReader(r io.Reader) (domain.Samples, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return domain.Samples{}, fmt.Errorf("decode failed: %w", err)
	}

	var pcm bytes.Buffer
	if _, err := io.Copy(&pcm, dec); err != nil {
		return domain.Samples{}, fmt.Errorf("read failed: %w", err)
	}

	return domain.Samples{
		Data:       stereoToMono(pcm.Bytes()),
		SampleRate: dec.SampleRate(),
	}, nil
}

// stereoToMono converts interleaved 16-bit little-endian stereo PCM to mono
// samples in [-1, 1). A trailing partial frame is dropped.
func stereoToMono(pcm []byte) []float64 {
	out := make([]float64, len(pcm)/4)
	for i := range out {
		l := int16(pcm[4*i]) | int16(pcm[4*i+1])<<8
		r := int16(pcm[4*i+2]) | int16(pcm[4*i+3])<<8
		out[i] = (float64(l) + float64(r)) / 2 / 32768.0
	}
	return out
}
