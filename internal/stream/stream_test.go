package stream

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestReadTransactionsParsesS1(t *testing.T) {
	// spec.md S1: [[[0,1]],[[0,0]]], target 0.
	txns, err := ReadTransactions(strings.NewReader(`[[[0,1]],[[0,0]]]`))
	if err != nil {
		t.Fatalf("ReadTransactions: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("len(txns) = %d, want 2", len(txns))
	}
	if txns[0][0] != (AttrValue{Attr: 0, Value: 1}) {
		t.Fatalf("txns[0][0] = %+v", txns[0][0])
	}
	if txns[1][0] != (AttrValue{Attr: 0, Value: 0}) {
		t.Fatalf("txns[1][0] = %+v", txns[1][0])
	}
}

func TestReadTransactionsParsesS2(t *testing.T) {
	// spec.md S2: 4 tuples over attrs 0 and 1.
	input := `[
		[[0,0],[1,0]],
		[[0,0],[1,0]],
		[[0,1],[1,1]],
		[[0,1],[1,1]]
	]`
	txns, err := ReadTransactions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTransactions: %v", err)
	}
	if len(txns) != 4 {
		t.Fatalf("len(txns) = %d, want 4", len(txns))
	}
	for _, txn := range txns {
		if len(txn) != 2 {
			t.Fatalf("transaction %+v should carry 2 attributes", txn)
		}
	}
}

func TestReadTransactionsEmptyFlow(t *testing.T) {
	txns, err := ReadTransactions(strings.NewReader(`[]`))
	if err != nil {
		t.Fatalf("ReadTransactions: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("len(txns) = %d, want 0", len(txns))
	}
}

func TestReadTransactionsMalformedWrapsParseError(t *testing.T) {
	_, err := ReadTransactions(strings.NewReader(`[[[0,1]], garbage]`))
	if err == nil {
		t.Fatal("expected an error for malformed input")
	}
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected errors.Is(err, ErrParse), got %v", err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a *ParseError, got %T", err)
	}
	if pe.Loc.Context == "" {
		t.Fatal("expected a non-empty Locator context")
	}
}

func TestReadTransactionsRejectsOutOfRangeValue(t *testing.T) {
	_, err := ReadTransactions(strings.NewReader(`[[[0,300]]]`))
	if err == nil {
		t.Fatal("expected an error for an out-of-range value id")
	}
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected errors.Is(err, ErrParse), got %v", err)
	}
}

func TestWriteResultsRoundTripsThroughAttrValueShape(t *testing.T) {
	results := []Result{
		{Subset: []uint16{0}, Score: 0.99},
		{Subset: []uint16{0, 1}, Score: 0.5},
	}
	var buf bytes.Buffer
	if err := WriteResults(&buf, results); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}

	got := strings.TrimSpace(buf.String())
	want := `[[[0],0.99],[[0,1],0.5]]`
	if got != want {
		t.Fatalf("WriteResults output = %q, want %q", got, want)
	}
}

func TestWriteResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, nil); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Fatalf("WriteResults(nil) = %q, want []", got)
	}
}
