package decimal

import "testing"

func TestArithmetic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b D
		op   func(a, b D) D
		want string
	}{
		{
			name: "add",
			a:    MustFromString("1.5"),
			b:    MustFromString("2.25"),
			op:   func(a, b D) D { return a.Add(b) },
			want: "3.75",
		},
		{
			name: "sub",
			a:    MustFromString("5"),
			b:    MustFromString("2"),
			op:   func(a, b D) D { return a.Sub(b) },
			want: "3",
		},
		{
			name: "mul",
			a:    MustFromString("2"),
			b:    MustFromString("3.5"),
			op:   func(a, b D) D { return a.Mul(b) },
			want: "7",
		},
		{
			name: "div",
			a:    MustFromString("10"),
			b:    MustFromString("4"),
			op:   func(a, b D) D { return a.Div(b) },
			want: "2.5",
		},
		{
			name: "div by zero yields infinity",
			a:    MustFromString("10"),
			b:    Zero,
			op:   func(a, b D) D { return a.Div(b) },
			want: "+inf",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tc.op(tc.a, tc.b).String()
			if got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestInfinityOrdering(t *testing.T) {
	t.Parallel()

	inf := Infinity()
	ten := MustFromString("10")

	if inf.Cmp(ten) <= 0 {
		t.Fatalf("infinity must compare greater than any finite value")
	}
	if ten.Cmp(inf) >= 0 {
		t.Fatalf("finite value must compare less than infinity")
	}
	if inf.Cmp(Infinity()) != 0 {
		t.Fatalf("infinity must compare equal to itself")
	}
	if !inf.IsInfinite() {
		t.Fatalf("Infinity() must report IsInfinite")
	}
	if ten.IsInfinite() {
		t.Fatalf("finite value must not report IsInfinite")
	}
}

func TestNewFromStringRejectsNegative(t *testing.T) {
	t.Parallel()

	if _, err := NewFromString("-1"); err == nil {
		t.Fatalf("expected error for negative value")
	}
}

func TestMaxMin(t *testing.T) {
	t.Parallel()

	a := MustFromString("3")
	b := MustFromString("7")

	if Max(a, b) != b {
		t.Fatalf("Max(3, 7) should be 7")
	}
	if Min(a, b) != a {
		t.Fatalf("Min(3, 7) should be 3")
	}
}
