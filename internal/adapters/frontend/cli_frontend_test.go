package frontend

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap/zaptest"

	"github.com/mikey/sms-spam-detector/internal/core"
)

func TestCliFrontendProcessMessage(t *testing.T) {
	f := NewCliFrontend(newService(t, 4), zaptest.NewLogger(t), true)
	var out bytes.Buffer
	f.SetOutput(&out)

	p, err := f.ProcessMessage(context.Background(), "Win a FREE prize now")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if !p.IsSpam() {
		t.Fatalf("expected spam, got %+v", p)
	}

	report := out.String()
	for _, want := range []string{"Model: sms-linear", "Verdict: Spam", `Normalized: "win free prize"`, "Score[1]:"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}

func TestCliFrontendNotSpam(t *testing.T) {
	f := NewCliFrontend(newService(t, 4), zaptest.NewLogger(t), false)
	var out bytes.Buffer
	f.SetOutput(&out)

	if _, err := f.ProcessMessage(context.Background(), "Lunch tomorrow?"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Verdict: Not Spam") {
		t.Fatalf("unexpected report:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Score[") {
		t.Fatalf("scores are only printed in verbose mode")
	}
}

func TestCliFrontendErrors(t *testing.T) {
	f := NewCliFrontend(newUnavailableService(t), zaptest.NewLogger(t), false)
	var out bytes.Buffer
	f.SetOutput(&out)

	if _, err := f.ProcessMessage(context.Background(), ""); !errors.Is(err, core.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := f.ProcessMessage(context.Background(), "free money"); !errors.Is(err, core.ErrArtifactsUnavailable) {
		t.Fatalf("expected ErrArtifactsUnavailable, got %v", err)
	}
	if !strings.Contains(out.String(), "Error:") {
		t.Fatalf("errors must be reported on the output")
	}
}

func TestCliFrontendVerbosePreviewKeepsRunesWhole(t *testing.T) {
	f := NewCliFrontend(newService(t, 4), zaptest.NewLogger(t), true)
	var out bytes.Buffer
	f.SetOutput(&out)

	// the odd leading byte puts the 160th byte inside an "é"
	message := "a" + strings.Repeat("é", 200)
	if _, err := f.ProcessMessage(context.Background(), message); err != nil {
		t.Fatal(err)
	}

	report := out.String()
	if !utf8.ValidString(report) {
		t.Fatalf("report is not valid UTF-8:\n%q", report)
	}
	want := "Text: a" + strings.Repeat("é", previewRunes-1) + "...\n"
	if !strings.Contains(report, want) {
		t.Fatalf("report missing truncated preview:\n%s", report)
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "short", n: 10, want: "short"},
		{in: "exact", n: 5, want: "exact"},
		{in: "abcdef", n: 3, want: "abc..."},
		{in: "日本語のテキスト", n: 3, want: "日本語..."},
		{in: "", n: 3, want: ""},
	}

	for _, tt := range tests {
		if got := preview(tt.in, tt.n); got != tt.want {
			t.Errorf("preview(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
