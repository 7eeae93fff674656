package storage

import (
	"context"
	"strings"
	"testing"
)

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(context.Background(), Config{Kind: "oracle", Table: "sales"})
	if err == nil {
		t.Fatal("New accepted unknown backend")
	}
	if !strings.Contains(err.Error(), "oracle") {
		t.Errorf("error %q does not name the backend", err)
	}
}

func TestNew_RequiresTable(t *testing.T) {
	Register("test_kind", func(ctx context.Context, cfg Config) (Repository, error) {
		return &fakeRepo{}, nil
	})

	if _, err := New(context.Background(), Config{Kind: "test_kind"}); err == nil {
		t.Fatal("New accepted empty table")
	}
	repo, err := New(context.Background(), Config{Kind: "test_kind", Table: "sales"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer repo.Close()

	found := false
	for _, k := range Kinds() {
		if k == "test_kind" {
			found = true
		}
	}
	if !found {
		t.Errorf("Kinds() = %v, missing test_kind", Kinds())
	}
}
