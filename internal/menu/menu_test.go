package menu_test

import (
	"testing"

	"github.com/avolkov/finaggbot/internal/menu"
)

func TestResolveKnownKeys(t *testing.T) {
	t.Parallel()

	keys := []string{
		menu.KeyStartMenu,
		menu.KeyMainMenu,
		menu.KeyBackToStart,
		menu.KeyMFOList,
		menu.KeyPTS,
		menu.KeyPledge,
		menu.KeyHelp,
		menu.KeyGetPTS,
		menu.KeyGetPledge,
		"mfo_express",
		"mfo_finmoll",
		"get_loan_express",
		"get_loan_finmoll",
	}

	for _, key := range keys {
		node, ok := menu.Resolve(key)
		if !ok {
			t.Errorf("Resolve(%q) = not found, want node", key)
			continue
		}
		if node.Text == "" {
			t.Errorf("Resolve(%q) returned node with empty text", key)
		}
		if len(node.Rows) == 0 {
			t.Errorf("Resolve(%q) returned node with no keyboard", key)
		}
	}
}

func TestResolveUnknownKey(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"", "nope", "mfo_unknown", "get_loan_unknown"} {
		if _, ok := menu.Resolve(key); ok {
			t.Errorf("Resolve(%q) = found, want not found", key)
		}
	}
}

func TestGraphIsClosed(t *testing.T) {
	t.Parallel()

	// Every key reachable from a keyboard must resolve, otherwise users
	// hit dead buttons.
	seen := map[string]bool{}
	queue := []string{menu.KeyBackToStart}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if seen[key] {
			continue
		}
		seen[key] = true

		node, ok := menu.Resolve(key)
		if !ok {
			t.Fatalf("key %q reachable from keyboard but not resolvable", key)
		}
		for _, row := range node.Rows {
			for _, btn := range row {
				if btn.Key != "" && btn.URL != "" {
					t.Errorf("button %q on %q has both key and URL", btn.Label, key)
				}
				if btn.Key == "" && btn.URL == "" {
					t.Errorf("button %q on %q has neither key nor URL", btn.Label, key)
				}
				if btn.Key != "" {
					queue = append(queue, btn.Key)
				}
			}
		}
	}

	if len(seen) < 20 {
		t.Errorf("reachable graph has %d nodes, want the full menu tree", len(seen))
	}
}

func TestTerminalNodesCarryConversionKeys(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"get_loan_express", "get_loan_rocket", menu.KeyGetPTS, menu.KeyGetPledge} {
		node, ok := menu.Resolve(key)
		if !ok {
			t.Fatalf("Resolve(%q) = not found", key)
		}
		if !node.Terminal {
			t.Errorf("node %q should be terminal", key)
		}
		if !menu.IsConversion(key) {
			t.Errorf("IsConversion(%q) = false, want true", key)
		}
	}

	if menu.IsConversion(menu.KeyMFOList) {
		t.Errorf("IsConversion(%q) = true, want false", menu.KeyMFOList)
	}
}
