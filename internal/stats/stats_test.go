package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWriteReportsTimeInSecondsAndPatternCount(t *testing.T) {
	r := Report{TotalTime: 1500 * time.Millisecond, PatternNumber: 42}
	var buf bytes.Buffer
	if err := r.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "total time: 1.5") {
		t.Fatalf("expected total time in seconds, got %q", out)
	}
	if !strings.Contains(out, "pattern number: 42") {
		t.Fatalf("expected pattern number line, got %q", out)
	}
}
