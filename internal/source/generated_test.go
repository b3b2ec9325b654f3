package source

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"salonscout/internal/model"
)

func TestGeneratedGridIsDeterministic(t *testing.T) {
	adapter := NewGeneratedAdapter("高雄市", slog.New(slog.NewTextHandler(io.Discard, nil)))

	first, err := adapter.Harvest(context.Background(), "美甲", "左營")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := adapter.Harvest(context.Background(), "美睫", "左營")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != perAnchorGenerated {
		t.Fatalf("len = %d, want %d", len(first), perAnchorGenerated)
	}
	// The grid depends only on the anchor, not the keyword.
	if !reflect.DeepEqual(first, second) {
		t.Error("grids for the same anchor differ")
	}

	for _, raw := range first {
		if !strings.Contains(raw[model.KeyAddress], "高雄市左營區") {
			t.Errorf("address %q missing city/anchor", raw[model.KeyAddress])
		}
		if !strings.HasPrefix(raw[model.KeyPhone], "07-") {
			t.Errorf("phone %q not a landline shape", raw[model.KeyPhone])
		}
		if _, ok := raw[model.KeyURL]; ok {
			t.Error("placeholder entries must not carry a source URL")
		}
	}
}

func TestGeneratedGridVariesByAnchor(t *testing.T) {
	adapter := NewGeneratedAdapter("高雄市", slog.New(slog.NewTextHandler(io.Discard, nil)))

	left, _ := adapter.Harvest(context.Background(), "美甲", "左營")
	right, _ := adapter.Harvest(context.Background(), "美甲", "鳳山")

	if reflect.DeepEqual(left, right) {
		t.Error("different anchors produced identical grids")
	}
}
