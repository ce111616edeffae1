package tabular

import (
	"encoding/json"
	"math"
	"testing"
)

func TestCleanField(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"123"`, "123"},
		{`""abc""`, "abc"},
		{`"a"b"`, `a"b`},
		{`a\b`, "ab"},
		{`"\"x\""`, `"x`},
		{"", ""},
		{`"`, ""},
	}

	for _, tt := range tests {
		if got := CleanField(tt.input); got != tt.want {
			t.Errorf("CleanField(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestInferValue(t *testing.T) {
	tests := []struct {
		input    string
		wantKind Kind
		want     any
	}{
		// Integers
		{"0", KindInt, int64(0)},
		{"123", KindInt, int64(123)},
		{"-45", KindInt, int64(-45)},
		{"+7", KindInt, int64(7)},
		{"007", KindInt, int64(7)},
		{"9223372036854775807", KindInt, int64(math.MaxInt64)},
		{" 7", KindInt, int64(7)},
		{"\t-3 ", KindInt, int64(-3)},

		// Overflowing integers fall through to float
		{"9223372036854775808", KindFloat, 9223372036854775808.0},

		// Floats
		{"12.5", KindFloat, 12.5},
		{"1.0", KindFloat, 1.0},
		{".5", KindFloat, 0.5},
		{"5.", KindFloat, 5.0},
		{"1e3", KindFloat, 1000.0},
		{"-2.5E-2", KindFloat, -0.025},
		{"2.5 ", KindFloat, 2.5},
		{"  1e2  ", KindFloat, 100.0},

		// Strings
		{"", KindString, ""},
		{"abc", KindString, "abc"},
		{"12abc", KindString, "12abc"},
		{"   ", KindString, "   "},
		{"1 000", KindString, "1 000"},
		{"- 7", KindString, "- 7"},
		{"1,5", KindString, "1,5"},
		{"NaN", KindString, "NaN"},
		{"Inf", KindString, "Inf"},
		{"0x1p-2", KindString, "0x1p-2"},
		{"1_000", KindString, "1_000"},
		{"1e999", KindString, "1e999"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := InferValue(tt.input)
			if got.Kind() != tt.wantKind {
				t.Fatalf("InferValue(%q).Kind() = %v, want %v", tt.input, got.Kind(), tt.wantKind)
			}
			if got.Interface() != tt.want {
				t.Errorf("InferValue(%q) = %v, want %v", tt.input, got.Interface(), tt.want)
			}
		})
	}
}

func TestValue_AsFloat(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		want    float64
		wantErr bool
	}{
		{name: "int widens", value: IntValue(3), want: 3},
		{name: "float passes", value: FloatValue(3.5), want: 3.5},
		{name: "numeric string", value: StringValue("4.25"), want: 4.25},
		{name: "padded numeric string", value: StringValue(" 4.25 "), want: 4.25},
		{name: "text fails", value: StringValue("abc"), wantErr: true},
		{name: "empty fails", value: StringValue(""), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.value.AsFloat()
			if tt.wantErr {
				if err == nil {
					t.Errorf("AsFloat() = %v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("AsFloat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("AsFloat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{IntValue(-12), "-12"},
		{FloatValue(12.5), "12.5"},
		{FloatValue(3), "3"},
		{StringValue("foo"), "foo"},
		{Value{}, ""},
	}
	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestRow_MarshalJSON(t *testing.T) {
	rows := Parse("z,a,m\nfoo,1,2.5\n")
	data, err := json.Marshal(rows[0])
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	want := `{"z":"foo","a":1,"m":2.5}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}
