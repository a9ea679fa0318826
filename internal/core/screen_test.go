package core

import (
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if c := s.GetCell(x, y); c.Rune != ' ' || c.Color != ColorDefault {
				t.Fatalf("new screen should be blank, got %+v at (%d, %d)", c, x, y)
			}
		}
	}
}

func TestNewScreenNegative(t *testing.T) {
	s := NewScreen(-5, -1)
	if s.Width() != 0 || s.Height() != 0 {
		t.Errorf("negative size should clamp to 0x0, got %dx%d", s.Width(), s.Height())
	}
	if s.String() != "" {
		t.Errorf("empty screen String() = %q", s.String())
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.Set(5, 5, 'X')
	if s.Get(5, 5) != 'X' {
		t.Errorf("Get(5, 5) = %q, expected 'X'", s.Get(5, 5))
	}

	s.SetCell(2, 3, '#', ColorGreen)
	if c := s.GetCell(2, 3); c.Rune != '#' || c.Color != ColorGreen {
		t.Errorf("GetCell(2, 3) = %+v", c)
	}

	// Out of bounds should be silent
	s.Set(-1, 0, 'A')
	s.Set(100, 0, 'A')
	s.Set(0, -1, 'A')
	s.Set(0, 100, 'A')

	if s.Get(-1, 0) != ' ' || s.Get(100, 0) != ' ' {
		t.Error("out of bounds Get should return space")
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(4, 3)
	s.SetCell(1, 1, 'X', ColorRed)
	s.Clear()

	if c := s.GetCell(1, 1); c != blank {
		t.Errorf("after Clear got %+v, expected blank", c)
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(10, 2)
	s.DrawText(2, 0, "héllo", ColorCyan)

	if s.Row(0) != "  héllo   " {
		t.Errorf("Row(0) = %q", s.Row(0))
	}
	if s.GetCell(3, 0).Color != ColorCyan {
		t.Error("text should carry its color")
	}

	// Clipped at the right edge
	s.DrawText(8, 1, "abc", ColorDefault)
	if s.Row(1) != "        ab" {
		t.Errorf("Row(1) = %q", s.Row(1))
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(11, 1)
	s.DrawTextCentered(0, "abc", ColorDefault)

	if s.Row(0) != "    abc    " {
		t.Errorf("Row(0) = %q", s.Row(0))
	}
}

func TestScreenTint(t *testing.T) {
	s := NewScreen(5, 2)
	s.DrawText(0, 0, "a b", ColorDefault)
	s.DrawText(0, 1, "cd", ColorDefault)

	s.Tint(NewRect(0, 0, 2, 1), ColorGreen)

	if s.GetCell(0, 0).Color != ColorGreen {
		t.Error("cell inside rect should be tinted")
	}
	if s.GetCell(1, 0).Color != ColorDefault {
		t.Error("spaces should not be tinted")
	}
	if s.GetCell(2, 0).Color != ColorDefault || s.GetCell(0, 1).Color != ColorDefault {
		t.Error("cells outside rect should keep their color")
	}

	// Rect partly off-screen must not panic
	s.Tint(NewRect(-3, -3, 100, 100), ColorRed)
	if s.GetCell(1, 1).Color != ColorRed {
		t.Error("oversized rect should tint the visible part")
	}
}

func TestScreenString(t *testing.T) {
	s := NewScreen(3, 2)
	s.Set(0, 0, 'a')
	s.Set(2, 1, 'z')

	if got := s.String(); got != "a  \n  z" {
		t.Errorf("String() = %q", got)
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(5, 5)
	s.Set(1, 1, 'X')

	s.Resize(8, 3)
	if s.Width() != 8 || s.Height() != 3 {
		t.Errorf("after Resize got %dx%d", s.Width(), s.Height())
	}
	if s.Get(1, 1) != ' ' {
		t.Error("Resize should clear the buffer")
	}

	// Same size is a no-op
	s.Set(0, 0, 'Y')
	s.Resize(8, 3)
	if s.Get(0, 0) != 'Y' {
		t.Error("Resize to the same size should keep content")
	}
}

func TestScreenRowOutOfRange(t *testing.T) {
	s := NewScreen(4, 1)
	if s.Row(5) != "    " {
		t.Errorf("Row(5) = %q", s.Row(5))
	}
}

func TestRect(t *testing.T) {
	r := NewRect(2, 3, 4, 5)

	if r.Right() != 6 || r.Bottom() != 8 {
		t.Errorf("edges = (%d, %d)", r.Right(), r.Bottom())
	}

	tests := []struct {
		x, y int
		want bool
	}{
		{2, 3, true},
		{5, 7, true},
		{6, 3, false},
		{2, 8, false},
		{1, 4, false},
	}
	for _, tc := range tests {
		if got := r.Contains(tc.x, tc.y); got != tc.want {
			t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, got, tc.want)
		}
	}

	c := NewRect(0, 0, 20, 10).Centered(6, 4)
	if c != NewRect(7, 3, 6, 4) {
		t.Errorf("Centered() = %+v", c)
	}
	big := NewRect(0, 0, 5, 5).Centered(10, 10)
	if big.X != 0 || big.Y != 0 {
		t.Errorf("oversized Centered() should pin to origin, got %+v", big)
	}
}

func TestMinMax(t *testing.T) {
	if Min(3, 4) != 3 || Max(3, 4) != 4 {
		t.Error("Min/Max wrong")
	}
}

func TestActionString(t *testing.T) {
	if ActionRestart.String() != "Restart" || Action(99).String() != "Unknown" {
		t.Error("Action.String wrong")
	}
}
