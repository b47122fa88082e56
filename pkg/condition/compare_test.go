package condition

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		op   Operator
		got  any
		want any
		out  bool
	}{
		{"equal strings", OpEqual, "red", "red", true},
		{"equal mixed numerics", OpEqual, 3, 3.0, true},
		{"equal mismatch", OpEqual, "red", "blue", false},
		{"not equal", OpNotEqual, 1, 2, true},
		{"greater", OpGreater, 5, 3, true},
		{"greater false on equal", OpGreater, 3, 3, false},
		{"greater or equal on equal", OpGreaterOrEqual, 3, 3, true},
		{"less", OpLess, 2, 3, true},
		{"less or equal", OpLessOrEqual, 3, 3, true},
		{"string ordering", OpLess, "apple", "banana", true},
		{"ordering with non-numbers", OpGreater, "apple", 3, false},
		{"number against string is not equal", OpEqual, 3, "3", false},
		{"unknown operator", Operator("~="), 1, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.op, tt.got, tt.want); got != tt.out {
				t.Errorf("Compare(%q, %v, %v) = %v, want %v", tt.op, tt.got, tt.want, got, tt.out)
			}
		})
	}
}

func TestCompareIncludes(t *testing.T) {
	if !Compare(OpIncludes, []any{"sword", "rope"}, "rope") {
		t.Error("Expected slice to include element")
	}
	if Compare(OpIncludes, []any{"sword"}, "rope") {
		t.Error("Did not expect slice to include element")
	}
	if !Compare(OpIncludes, []any{1, 2.0}, 2) {
		t.Error("Expected numeric membership across representations")
	}
	if Compare(OpIncludes, "stonework", "stone") {
		t.Error("includes is only defined for array values")
	}
	if Compare(OpIncludes, nil, "x") {
		t.Error("nil includes nothing")
	}
}

func TestAsNumber(t *testing.T) {
	if n, ok := AsNumber(int64(7)); !ok || n != 7 {
		t.Errorf("AsNumber(int64) = %v, %v", n, ok)
	}
	if n, ok := AsNumber(2.5); !ok || n != 2.5 {
		t.Errorf("AsNumber(float64) = %v, %v", n, ok)
	}
	if _, ok := AsNumber("7"); ok {
		t.Error("Strings are not numbers")
	}
	if _, ok := AsNumber(nil); ok {
		t.Error("nil is not a number")
	}
}

func TestTruthy(t *testing.T) {
	falsy := []any{nil, false, 0, 0.0, ""}
	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("Expected %#v to be falsy", v)
		}
	}

	truthy := []any{true, 1, -1, "no", []any{}, map[string]any{}}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("Expected %#v to be truthy", v)
		}
	}
}
