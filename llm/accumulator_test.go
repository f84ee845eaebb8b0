package llm

import "testing"

func TestAccumulatorConcatenatesFragments(t *testing.T) {
	acc := NewToolCallAccumulator()
	acc.Add(ToolCallDelta{Index: 0, ID: "call_1", Name: "write_file"})
	acc.Add(ToolCallDelta{Index: 0, Arguments: `{"path":`})
	acc.Add(ToolCallDelta{Index: 0, Arguments: `"main.go"`})
	acc.Add(ToolCallDelta{Index: 0, Arguments: `}`})

	calls := acc.Finalize()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].ID != "call_1" || calls[0].Name != "write_file" {
		t.Errorf("unexpected identity: %+v", calls[0])
	}
	if got := string(calls[0].Arguments); got != `{"path":"main.go"}` {
		t.Errorf("arguments = %q, want concatenation of fragments", got)
	}
}

func TestAccumulatorOrdersByIndex(t *testing.T) {
	acc := NewToolCallAccumulator()
	acc.Add(ToolCallDelta{Index: 2, ID: "c", Name: "third", Arguments: "{}"})
	acc.Add(ToolCallDelta{Index: 0, ID: "a", Name: "first", Arguments: "{}"})
	acc.Add(ToolCallDelta{Index: 1, ID: "b", Name: "second", Arguments: "{}"})

	calls := acc.Finalize()
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	for i, want := range []string{"first", "second", "third"} {
		if calls[i].Name != want {
			t.Errorf("calls[%d].Name = %q, want %q", i, calls[i].Name, want)
		}
	}
}

func TestAccumulatorFinalizesOnce(t *testing.T) {
	acc := NewToolCallAccumulator()
	acc.Add(ToolCallDelta{Index: 0, ID: "x", Name: "t", Arguments: "{}"})

	if first := acc.Finalize(); len(first) != 1 {
		t.Fatalf("first finalize: got %d calls", len(first))
	}
	if second := acc.Finalize(); second != nil {
		t.Errorf("second finalize returned %v, want nil", second)
	}
}

func TestAccumulatorOpen(t *testing.T) {
	acc := NewToolCallAccumulator()
	if acc.Open() {
		t.Error("empty accumulator reports open slots")
	}
	acc.Add(ToolCallDelta{Index: 0, ID: "x"})
	if !acc.Open() {
		t.Error("accumulator with a slot reports no open slots")
	}
	acc.Finalize()
	if acc.Open() {
		t.Error("finalized accumulator reports open slots")
	}
}
