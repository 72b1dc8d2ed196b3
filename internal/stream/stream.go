// Package stream implements the JSON transaction/result flow (spec.md §6):
// a streaming decoder for the transaction flow (stdlib encoding/json's
// token-based Decoder) and an element-at-a-time writer for the (subset,
// score) result flow (json.Marshal per element), rather than the original's generic
// data_stream.hpp template machinery — spec.md §1 marks the stream layer
// itself out of scope, so this package takes the simplest correct
// realization instead of reproducing that machinery (see DESIGN.md).
package stream

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrParse is the sentinel every malformed-input error wraps, per spec.md
// §7 "ParseError — malformed JSON, wrong bracket, numeric overflow."
var ErrParse = errors.New("stream: malformed input")

// Locator carries the byte offset and a short window of surrounding input
// around a parse failure, per spec.md §7 "a locator string (≈20 chars of
// input context)".
type Locator struct {
	Offset  int64
	Context string
}

func (l Locator) String() string {
	if l.Context == "" {
		return fmt.Sprintf("offset %d", l.Offset)
	}
	return fmt.Sprintf("offset %d, near %q", l.Offset, l.Context)
}

// ParseError reports a malformed-input failure at a Locator.
type ParseError struct {
	Loc Locator
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v (%s)", ErrParse, e.Err, e.Loc)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrParse, so callers can write
// errors.Is(err, stream.ErrParse) without caring about the Locator.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// AttrValue is one (attribute, value) pair of a transaction, framed on the
// wire as a two-element JSON array per spec.md §6.
type AttrValue struct {
	Attr  uint16
	Value uint8
}

func (av AttrValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{int(av.Attr), int(av.Value)})
}

func (av *AttrValue) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if pair[0] < 0 || pair[0] > math.MaxUint16 {
		return fmt.Errorf("attribute id %d out of range", pair[0])
	}
	if pair[1] < 0 || pair[1] > math.MaxUint8 {
		return fmt.Errorf("value id %d out of range", pair[1])
	}
	av.Attr = uint16(pair[0])
	av.Value = uint8(pair[1])
	return nil
}

// Transaction is one row: an ordered, unique-by-attribute list of
// (attribute, value) pairs.
type Transaction []AttrValue

// Result is one (subset, score) pair of the output flow, framed as a
// two-element JSON array: a sorted subset of attribute ids, then the
// floating-point score.
type Result struct {
	Subset []uint16
	Score  float64
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{r.Subset, r.Score})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &r.Subset); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &r.Score)
}

// trackWindow bounds how much trailing input a trackingReader remembers
// for a Locator — enough for spec.md's "≈20 chars of input context"
// without buffering the whole flow.
const trackWindow = 24

// trackingReader wraps an io.Reader, remembering the last trackWindow
// bytes read, so a json.Decoder error occurring partway through a large
// flow can still be reported with nearby context without this package
// ever holding the whole input in memory.
type trackingReader struct {
	r   io.Reader
	buf []byte
	off int64
}

func newTrackingReader(r io.Reader) *trackingReader {
	return &trackingReader{r: r}
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.off += int64(n)
		t.buf = append(t.buf, p[:n]...)
		if len(t.buf) > trackWindow {
			t.buf = t.buf[len(t.buf)-trackWindow:]
		}
	}
	return n, err
}

func (t *trackingReader) locator() Locator {
	return Locator{Offset: t.off, Context: string(t.buf)}
}

func (t *trackingReader) wrap(err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Loc: t.locator(), Err: err}
}

// ReadTransactions decodes the input transaction flow one element at a
// time via a streaming json.Decoder (spec.md §6 "Input stream"), so peak
// decoder memory stays proportional to one transaction rather than the
// whole flow. It still returns every transaction read, in order, since
// internal/partition's columnar build and the FP-tree build both take the
// full list of tuples.
func ReadTransactions(r io.Reader) ([]Transaction, error) {
	tr := newTrackingReader(bufio.NewReader(r))
	dec := json.NewDecoder(tr)

	if _, err := dec.Token(); err != nil {
		return nil, tr.wrap(err)
	}

	var txns []Transaction
	for dec.More() {
		var txn Transaction
		if err := dec.Decode(&txn); err != nil {
			return nil, tr.wrap(err)
		}
		txns = append(txns, txn)
	}

	if _, err := dec.Token(); err != nil {
		return nil, tr.wrap(err)
	}
	return txns, nil
}

// WriteResults encodes results as the output (subset, score) flow (spec.md
// §6 "Output stream"), one element at a time so a caller holding only a
// bounded top-K slice never needs to materialize a larger buffer. Results
// are written in the order given; cmd/smoothie passes internal/topk.Queue's
// Purge output, which is ordered best-first, not worst-first.
func WriteResults(w io.Writer, results []Result) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("["); err != nil {
		return err
	}
	for i, res := range results {
		if i > 0 {
			if _, err := bw.WriteString(","); err != nil {
				return err
			}
		}
		b, err := json.Marshal(res)
		if err != nil {
			return err
		}
		if _, err := bw.Write(b); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("]\n"); err != nil {
		return err
	}
	return bw.Flush()
}
