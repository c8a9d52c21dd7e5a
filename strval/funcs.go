package strval

import (
	"bytes"
	"fmt"
	"strconv"
)

// Transforming string functions backing the language's LEN, ASC, CHR$,
// LEFT$, RIGHT$, MID$, INSTR, STR$, VAL, UCASE$, LCASE$ and TRIM$
// builtins. Each transform allocates a new value; inputs are borrowed.

// Upper returns s with ASCII letters upper-cased.
func (h *Heap) Upper(s *Value) *Value {
	h.checkLive(s, "string_upper")
	b := s.Bytes()
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return h.newValue(b)
}

// Lower returns s with ASCII letters lower-cased.
func (h *Heap) Lower(s *Value) *Value {
	h.checkLive(s, "string_lower")
	b := s.Bytes()
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return h.newValue(b)
}

// Trim returns s with leading and trailing ASCII whitespace removed.
func (h *Heap) Trim(s *Value) *Value {
	h.checkLive(s, "string_trim")
	b := s.bytes()
	start, end := 0, len(b)
	for start < end && isSpace(b[start]) {
		start++
	}
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return h.newValue(append([]byte(nil), b[start:end]...))
}

// Left returns the first n bytes of s, clamped to its length.
func (h *Heap) Left(s *Value, n int32) *Value {
	h.checkLive(s, "string_left")
	if n <= 0 {
		return h.newValue(nil)
	}
	b := s.bytes()
	if int(n) > len(b) {
		n = int32(len(b))
	}
	return h.newValue(append([]byte(nil), b[:n]...))
}

// Right returns the last n bytes of s, clamped to its length.
func (h *Heap) Right(s *Value, n int32) *Value {
	h.checkLive(s, "string_right")
	if n <= 0 {
		return h.newValue(nil)
	}
	b := s.bytes()
	if int(n) > len(b) {
		n = int32(len(b))
	}
	return h.newValue(append([]byte(nil), b[len(b)-int(n):]...))
}

// Mid returns n bytes of s starting at the 1-based position start,
// clamped to the content. Out-of-range arguments yield the empty string.
func (h *Heap) Mid(s *Value, start, n int32) *Value {
	h.checkLive(s, "string_mid")
	if start < 1 || n <= 0 {
		return h.newValue(nil)
	}
	b := s.bytes()
	idx := int(start - 1)
	if idx >= len(b) {
		return h.newValue(nil)
	}
	end := idx + int(n)
	if end > len(b) {
		end = len(b)
	}
	return h.newValue(append([]byte(nil), b[idx:end]...))
}

// Char returns a one-byte string holding the low byte of code (CHR$).
func (h *Heap) Char(code int32) *Value {
	return h.newValue([]byte{byte(code)})
}

// FromFloat formats value the way the language's STR$ does (%g, six
// significant digits).
func (h *Heap) FromFloat(value float32) *Value {
	return h.Alloc(fmt.Sprintf("%.6g", float64(value)))
}

// Len returns the content length in bytes (LEN).
func Len(s *Value) int32 {
	return s.Len()
}

// Asc returns the first byte of s, or 0 for an empty or nil value (ASC).
func Asc(s *Value) int32 {
	if s == nil || len(s.bytes()) == 0 {
		return 0
	}
	return int32(s.bytes()[0])
}

// Index returns the 1-based position of find within s, 0 when absent
// (INSTR). An empty needle matches at position 1.
func Index(s, find *Value) int32 {
	if s == nil || find == nil {
		return 0
	}
	if find.Len() == 0 {
		return 1
	}
	if s.Len() == 0 {
		return 0
	}
	i := bytes.Index(s.bytes(), find.bytes())
	if i < 0 {
		return 0
	}
	return int32(i) + 1
}

// Val parses the leading numeric prefix of s, returning 0 on no parse
// (VAL). Matches the original's atof semantics.
func Val(s *Value) float32 {
	if s == nil || s.Len() == 0 {
		return 0
	}
	b := s.bytes()
	i := 0
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	start := i
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}
	digits := false
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
		digits = true
	}
	if i < len(b) && b[i] == '.' {
		i++
		for i < len(b) && b[i] >= '0' && b[i] <= '9' {
			i++
			digits = true
		}
	}
	if digits && i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		j := i + 1
		if j < len(b) && (b[j] == '+' || b[j] == '-') {
			j++
		}
		expDigits := false
		for j < len(b) && b[j] >= '0' && b[j] <= '9' {
			j++
			expDigits = true
		}
		if expDigits {
			i = j
		}
	}
	if !digits {
		return 0
	}
	f, err := strconv.ParseFloat(string(b[start:i]), 32)
	if err != nil {
		return 0
	}
	return float32(f)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
