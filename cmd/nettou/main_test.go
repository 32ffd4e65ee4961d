package main

import (
	"bytes"
	"mime/quotedprintable"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeReceipt(t *testing.T, dir, name, html string) {
	t.Helper()
	var buf bytes.Buffer
	w := quotedprintable.NewWriter(&buf)
	if _, err := w.Write([]byte(html)); err != nil {
		t.Fatalf("Failed to encode receipt: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to encode receipt: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	cliFilters = filters{}
	yamlOutput, showProducts, dumpRecords = false, false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("nettou %s failed: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	writeReceipt(t, dir, "receipt.html", `<table>
<tr class="items"><td>Mælk</td><td>2 stk</td><td>25,90</td></tr>
<tr class="items"><td>Cola</td><td>1 stk</td><td>4,50
+ pant 3,00</td></tr>
</table>`)

	out := runCLI(t, "parse", dir, "--yaml")
	if !strings.Contains(out, "trips: 1") || !strings.Contains(out, `total: "33.4"`) {
		t.Errorf("Unexpected yaml summary:\n%s", out)
	}

	out = runCLI(t, "parse", dir)
	if strings.Contains(out, "trips:") || !strings.Contains(out, "Processed 1 emails") {
		t.Errorf("Expected text summary after yaml run, got:\n%s", out)
	}

	out = runCLI(t, "parse", dir, "--dump", "--no-pant")
	if !strings.Contains(out, "Mælk") || strings.Contains(out, "Pant") {
		t.Errorf("Unexpected dump:\n%s", out)
	}
}
