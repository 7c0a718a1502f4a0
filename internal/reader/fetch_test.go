package reader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCleanTextCollapsesWhitespaceAndPreservesParagraphs(t *testing.T) {
	t.Parallel()

	input := "  First   paragraph \n\n Second\tparagraph \r\n\r\nThird line "
	got := CleanText(input)
	want := "First paragraph\n\nSecond paragraph\n\nThird line"
	if got != want {
		t.Fatalf("CleanText mismatch\nwant: %q\ngot:  %q", want, got)
	}
}

func TestFetchTextPlain(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Hello   document\n\nSecond part"))
	}))
	t.Cleanup(server.Close)

	text, err := FetchText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch text: %v", err)
	}
	if text != "Hello document\n\nSecond part" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestFetchTextRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	t.Cleanup(server.Close)

	if _, err := FetchText(context.Background(), server.URL); err == nil || !strings.Contains(err.Error(), "410") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestFetchTextRequiresURL(t *testing.T) {
	t.Parallel()

	if _, err := FetchText(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for blank URL")
	}
}
