package memory

import (
	"context"
	"testing"

	"menuflow/pkg/cart"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	// Unknown session loads as an empty cart.
	c, err := s.Load(ctx, "sid")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("expected empty cart, got %d lines", len(c.Lines))
	}

	if err := c.Add("p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Save(ctx, "sid", c); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx, "sid")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Lines) != 1 || got.Lines[0] != (cart.Line{ProductID: "p1", Quantity: 2}) {
		t.Fatalf("unexpected lines: %+v", got.Lines)
	}

	// Mutating a loaded cart must not leak into the store.
	got.Lines[0].Quantity = 99
	again, _ := s.Load(ctx, "sid")
	if again.Lines[0].Quantity != 2 {
		t.Fatalf("store state mutated through loaded copy")
	}

	if err := s.Delete(ctx, "sid"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c, _ = s.Load(ctx, "sid")
	if !c.IsEmpty() {
		t.Fatal("expected empty cart after delete")
	}
}
