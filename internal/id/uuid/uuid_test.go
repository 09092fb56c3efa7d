package uuid

import (
	"testing"

	goUUID "github.com/google/uuid"
)

func TestGeneratorNewID(t *testing.T) {
	t.Parallel()

	gen := New()
	id1, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	id2, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	if id1 == id2 {
		t.Fatalf("expected unique IDs, got %s and %s", id1, id2)
	}
	for _, id := range []string{id1, id2} {
		parsed, err := goUUID.Parse(id)
		if err != nil {
			t.Fatalf("id %s not a valid UUID: %v", id, err)
		}
		if parsed.Version() != 7 {
			t.Fatalf("expected UUID v7, got v%d", parsed.Version())
		}
	}
}
