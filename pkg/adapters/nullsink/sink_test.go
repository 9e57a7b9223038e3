package nullsink

import "testing"

func TestSink_Counts(t *testing.T) {
	s := New()
	s.Write([]byte{1, 2, 3})
	s.Write(nil)
	if s.Writes() != 2 || s.Bytes() != 3 {
		t.Errorf("Writes=%d Bytes=%d, want 2 and 3", s.Writes(), s.Bytes())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}
