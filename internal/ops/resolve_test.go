package ops

import "testing"

func TestWithinRootSamePath(t *testing.T) {
	if !withinRoot("/a/b", "/a/b") {
		t.Error("a root should be within itself")
	}
}

func TestWithinRootNestedFile(t *testing.T) {
	if !withinRoot("/a/b", "/a/b/c/d.go") {
		t.Error("expected a nested file to be within the root")
	}
}

func TestWithinRootSiblingIsNotWithin(t *testing.T) {
	if withinRoot("/a/b", "/a/c/d.go") {
		t.Error("a sibling directory should not be within the root")
	}
}

func TestWithinRootParentIsNotWithin(t *testing.T) {
	if withinRoot("/a/b/c", "/a/b") {
		t.Error("a parent directory should not be within a narrower root")
	}
}
