package ops

import "testing"

func TestComputeShowWindowNoContextNoLimit(t *testing.T) {
	start, end := computeShowWindow(10, 15, 0, 0, 100)
	if start != 10 || end != 15 {
		t.Errorf("got [%d,%d], want [10,15]", start, end)
	}
}

func TestComputeShowWindowContextClampsAtZero(t *testing.T) {
	start, _ := computeShowWindow(2, 5, 10, 0, 100)
	if start != 0 {
		t.Errorf("start = %d, want 0", start)
	}
}

func TestComputeShowWindowHeadLimitShrinksEnd(t *testing.T) {
	start, end := computeShowWindow(10, 50, 0, 5, 100)
	if start != 10 || end != 14 {
		t.Errorf("got [%d,%d], want [10,14]", start, end)
	}
}

func TestComputeShowWindowClampsToLineCount(t *testing.T) {
	_, end := computeShowWindow(10, 50, 0, 0, 20)
	if end != 19 {
		t.Errorf("end = %d, want 19", end)
	}
}

func TestComputeShowWindowEndNeverBeforeStart(t *testing.T) {
	start, end := computeShowWindow(10, 2, 0, 0, 100)
	if end < start {
		t.Errorf("end (%d) < start (%d)", end, start)
	}
}
