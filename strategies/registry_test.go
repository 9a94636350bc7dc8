package strategies

import (
	"errors"
	"reflect"
	"testing"

	"krxbacktest/internal/engine"
)

func TestNewKnownStrategies(t *testing.T) {
	for _, id := range List() {
		t.Run(id, func(t *testing.T) {
			gen, err := New(id, nil)
			if err != nil {
				t.Fatalf("New(%q): %v", id, err)
			}
			if gen.Name() != id {
				t.Errorf("Name() = %q, want %q", gen.Name(), id)
			}
		})
	}
}

func TestNewUnknownStrategy(t *testing.T) {
	_, err := New("momentum", nil)
	if !errors.Is(err, engine.ErrUnknownStrategy) {
		t.Fatalf("err = %v, want ErrUnknownStrategy", err)
	}
}

func TestNewInvalidParams(t *testing.T) {
	if _, err := New("goldencross", map[string]float64{"short_period": 50, "long_period": 20}); err == nil {
		t.Fatal("expected parameter validation error")
	}
}

func TestList(t *testing.T) {
	want := []string{"bollinger", "goldencross", "rsireversal"}
	if got := List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}
