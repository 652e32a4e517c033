package domain

import (
	"testing"
)

func TestNewNode(t *testing.T) {
	t.Run("creates node with defaults", func(t *testing.T) {
		node := NewNode("llm-1", NodeKindLLM, NewPosition(10, 20))

		if node.ID != "llm-1" {
			t.Errorf("expected ID 'llm-1', got %s", node.ID)
		}
		if node.Type != NodeKindLLM {
			t.Errorf("expected type %s, got %s", NodeKindLLM, node.Type)
		}
		if node.Data == nil {
			t.Error("expected Data to be initialized")
		}
		if node.Selected {
			t.Error("expected new node to be unselected")
		}
	})
}

func TestNodeFields(t *testing.T) {
	node := NewNode("text-1", NodeKindText, Position{})
	node.Data["text"] = "hello"
	node.Data["rows"] = 4

	t.Run("gets string field", func(t *testing.T) {
		if got := node.FieldString("text"); got != "hello" {
			t.Errorf("expected 'hello', got %q", got)
		}
	})

	t.Run("non-string field reads as empty string", func(t *testing.T) {
		if got := node.FieldString("rows"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("missing field", func(t *testing.T) {
		if _, ok := node.Field("nope"); ok {
			t.Error("expected missing field")
		}
	})

	t.Run("nil data", func(t *testing.T) {
		n := &Node{ID: "x"}
		if _, ok := n.Field("text"); ok {
			t.Error("expected missing field on nil data")
		}
	})
}

func TestNodeWithField(t *testing.T) {
	orig := *NewNode("filter-1", NodeKindFilter, Position{})
	orig.Data["condition"] = "equals"
	orig.Data["value"] = ""

	updated := orig.WithField("value", "42")

	if updated.Data["value"] != "42" {
		t.Errorf("expected value '42', got %v", updated.Data["value"])
	}
	if updated.Data["condition"] != "equals" {
		t.Error("expected other fields to be preserved")
	}
	if orig.Data["value"] != "" {
		t.Error("expected original data map to be untouched")
	}
}

func TestNodeClone(t *testing.T) {
	orig := *NewNode("api-1", NodeKindAPI, NewPosition(1, 1))
	orig.Data["headers"] = map[string]any{"accept": "json"}
	orig.Data["tags"] = []any{"a", "b"}

	clone := orig.Clone()
	clone.Data["url"] = "changed"
	clone.Data["headers"].(map[string]any)["accept"] = "xml"
	clone.Data["tags"].([]any)[0] = "z"
	clone.Position.X = 99

	if _, ok := orig.Data["url"]; ok {
		t.Error("expected clone data to be independent")
	}
	if orig.Data["headers"].(map[string]any)["accept"] != "json" {
		t.Error("expected nested map to be copied")
	}
	if orig.Data["tags"].([]any)[0] != "a" {
		t.Error("expected nested slice to be copied")
	}
	if orig.Position.X != 1 {
		t.Error("expected position to be copied by value")
	}
}
