package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/zhubert/parley/internal/backend"
	"github.com/zhubert/parley/internal/chat"
	perrors "github.com/zhubert/parley/internal/errors"
)

func TestRunHistory(t *testing.T) {
	entries := []chat.HistoryEntry{
		{ID: "session-12", Title: "Opening hours"},
		{ID: "s-3", Title: ""},
		{ID: "session-1", Title: "Invoice question"},
	}

	tests := []struct {
		name    string
		entries []chat.HistoryEntry
		limit   int
		want    string
	}{
		{
			name:    "all entries aligned",
			entries: entries,
			want: "session-12  Opening hours\n" +
				"s-3         Session s-3\n" +
				"session-1   Invoice question\n",
		},
		{
			name:    "limit",
			entries: entries,
			limit:   1,
			want:    "session-12  Opening hours\n",
		},
		{
			name: "empty",
			want: "No sessions yet.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := backend.NewMockGateway()
			gw.SetHistory(tt.entries...)

			var out bytes.Buffer
			if err := runHistoryWith(context.Background(), gw, tt.limit, &out); err != nil {
				t.Fatalf("runHistoryWith() error = %v", err)
			}
			if got := out.String(); got != tt.want {
				t.Errorf("output =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRunHistory_Error(t *testing.T) {
	gw := backend.NewMockGateway()
	gw.SetHistoryError(perrors.NetworkUnreachable("backend.ListHistory", context.DeadlineExceeded))

	var out bytes.Buffer
	err := runHistoryWith(context.Background(), gw, 0, &out)
	if err == nil || !strings.Contains(err.Error(), "error listing sessions") {
		t.Fatalf("runHistoryWith() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want nothing", out.String())
	}
}
