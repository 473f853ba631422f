package tracing

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestTracingFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "spans.json")

	if err := Init("modscope", "0.0.1", fname); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	ctx, span := StartSpan(context.Background(), "module.import", "INTERNAL")
	span.WithAttributes(map[string]string{"module": "plugin"})
	EndSpan(span, nil)
	_ = ctx

	data, err := os.ReadFile(fname)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("no data written to trace file")
	}
	if !bytes.Contains(data, []byte("module.import")) {
		t.Fatalf("span name missing from exported trace: %s", data)
	}
}
