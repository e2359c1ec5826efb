package mouse

import "testing"

func TestButtonString(t *testing.T) {
	tests := []struct {
		button Button
		want   string
	}{
		{ButtonNone, "none"},
		{ButtonLeft, "MouseLeft"},
		{ButtonMiddle, "MouseMiddle"},
		{ButtonRight, "MouseRight"},
		{Numbered(1), "Mouse1"},
		{Numbered(0), "Mouse0"},
		{Numbered(255), "Mouse255"},
	}

	for _, tt := range tests {
		if got := tt.button.String(); got != tt.want {
			t.Errorf("Button(%d).String() = %q, want %q", tt.button, got, tt.want)
		}
	}
}

func TestNumbered(t *testing.T) {
	b := Numbered(4)
	n, ok := b.Number()
	if !ok || n != 4 {
		t.Errorf("Numbered(4).Number() = %d, %v, want 4, true", n, ok)
	}
	if !b.IsNumbered() {
		t.Error("Numbered(4) should be numbered")
	}

	if _, ok := ButtonLeft.Number(); ok {
		t.Error("ButtonLeft should not be numbered")
	}
	if Numbered(1) == ButtonLeft {
		t.Error("Numbered(1) must not equal ButtonLeft")
	}
	if Numbered(3) == Numbered(4) {
		t.Error("different numbers must differ")
	}
}

func TestPosition(t *testing.T) {
	p := Position{X: 10, Y: -5}
	if !p.Equal(Position{X: 10, Y: -5}) {
		t.Error("expected equal positions")
	}
	if p.Equal(Position{X: 10, Y: 5}) {
		t.Error("expected different positions")
	}
	if got := p.String(); got != "10,-5" {
		t.Errorf("String() = %q, want %q", got, "10,-5")
	}
}
