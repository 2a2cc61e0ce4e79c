package shaping

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShape_LatinUnchanged(t *testing.T) {
	s := New().Shape("Hello")
	assert.Equal(t, Shaped{Text: "Hello", Direction: LTR}, s)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Direction
	}{
		{"empty", "", LTR},
		{"neutral only", "123 !?", LTR},
		{"latin", "Great product", LTR},
		{"arabic", "خدمة ممتازة", RTL},
		{"hebrew", "שלום", RTL},
		{"leading digits skipped", "2024 رائع", RTL},
		{"first strong wins", "OK رائع", LTR},
		{"punctuation before arabic", "« رائع »", RTL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.in))
		})
	}
}

func TestShape_HebrewReversedWithoutJoining(t *testing.T) {
	s := New().Shape("שלום")
	assert.Equal(t, RTL, s.Direction)
	assert.Equal(t, "םולש", s.Text)
}

func TestReshape_JoiningAndLamAlef(t *testing.T) {
	// seen (initial) + lam-alef ligature (final) + meem (isolated, alef never joins forward)
	assert.Equal(t, "ﺳﻼﻡ", Reshape("سلام"))
}

func TestReshape_RightJoiningLetters(t *testing.T) {
	// ain initial, dal final, dal isolated: dal never joins to the next letter.
	assert.Equal(t, "ﻋﺪﺩ", Reshape("عدد"))
}

func TestReshape_HamzaDoesNotJoin(t *testing.T) {
	// beh before hamza stays isolated because hamza has no final form.
	assert.Equal(t, "ﺏﺀ", Reshape("بء"))
}

func TestReshape_DiacriticsAreTransparent(t *testing.T) {
	// beh + fatha + teh: beh still joins to teh across the mark.
	assert.Equal(t, "ﺑَﺖ", Reshape("بَت"))
}

func TestReshape_Idempotent(t *testing.T) {
	once := Reshape("شكرا جزيلا على الخدمة")
	assert.Equal(t, once, Reshape(once))
	assert.Equal(t, "plain text", Reshape("plain text"))
}

func TestShape_Arabic(t *testing.T) {
	s := New().Shape("سلام")
	assert.Equal(t, RTL, s.Direction)
	assert.Equal(t, "ﻡﻼﺳ", s.Text)
}

func TestShape_EmbeddedRTLInLTR(t *testing.T) {
	s := New().Shape("I love سلام")
	assert.Equal(t, LTR, s.Direction)
	assert.Equal(t, "I love ﻡﻼﺳ", s.Text)
}

func TestShape_NumbersKeepOrderInRTL(t *testing.T) {
	s := New().Shape("عدد 123")
	assert.Equal(t, RTL, s.Direction)
	assert.Contains(t, s.Text, "123")
	// The first logical letter is drawn rightmost.
	assert.True(t, strings.HasSuffix(s.Text, "ﻋ"), "got %q", s.Text)
}

func TestShape_HarakatStayOnTheirLetter(t *testing.T) {
	// meem+fatha, reh, hah, beh, alef. Reversal keeps the fatha after meem.
	want := "\uFE8E\uFE92\uFEA3\uFEAE\uFEE3\u064E"

	s := New().Shape("مَرحبا")
	assert.Equal(t, RTL, s.Direction)
	assert.Equal(t, want, s.Text)

	embedded := New().Shape("I said مَرحبا")
	assert.Equal(t, "I said "+want, embedded.Text)
}

func TestShape_ShaddaAndKasraStayTogether(t *testing.T) {
	s := New().Shape("شدِّ")
	runes := []rune(s.Text)
	// The last logical letter is drawn first, followed by both of its marks.
	assert.Equal(t, []rune{0xFEAA, 0x0650, 0x0651, 0xFEB7}, runes)
}

func TestNewWithJoiner(t *testing.T) {
	calls := 0
	j := JoinFunc(func(s string) string {
		calls++
		return s
	})
	sh := NewWithJoiner(j)

	assert.Equal(t, "םולש", sh.Shape("שלום").Text)
	assert.Equal(t, "Hello", sh.Shape("Hello").Text)
	assert.Equal(t, 1, calls, "latin-only text is never joined")

	assert.Equal(t, New().Shape("سلام"), NewWithJoiner(nil).Shape("سلام"))
}

func TestShapeParagraph_ImposedDirection(t *testing.T) {
	s := New().ShapeParagraph("Hello سلام", RTL)
	assert.Equal(t, RTL, s.Direction)
	assert.True(t, strings.HasSuffix(s.Text, "Hello"), "got %q", s.Text)
	assert.True(t, strings.HasPrefix(s.Text, "ﻡ"), "got %q", s.Text)
}

func TestShapeParagraph_LatinOnlyIsUntouched(t *testing.T) {
	s := New().ShapeParagraph("Thanks (again)", RTL)
	assert.Equal(t, "Thanks (again)", s.Text)
	assert.Equal(t, RTL, s.Direction)
}

func TestHasRTL(t *testing.T) {
	assert.False(t, HasRTL("abc 123"))
	assert.True(t, HasRTL("abc ب"))
	assert.True(t, HasRTL("ﺳ"))
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "ltr", LTR.String())
	assert.Equal(t, "rtl", RTL.String())
}
