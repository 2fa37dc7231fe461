package util

import (
	"testing"
)

func TestList(t *testing.T) {
	list := NewList[int](4)
	list.Add(1)
	list.Add(2)
	list.Add(3)
	if list.Length() != 3 {
		t.Errorf("list.Length() = %v; want 3", list.Length())
	}
	list.Remove(1)
	if list.Length() != 2 || list.Get(0) != 1 || list.Get(1) != 3 {
		t.Errorf("unexpected list content after remove: %v", list)
	}
	list.Set(0, 5)
	if list[0] != 5 {
		t.Errorf("list[0] = %v; want 5", list[0])
	}
}

func TestDict(t *testing.T) {
	dict := NewDict[string, int](4)
	dict.Set("a", 1)
	dict.Set("b", 2)
	if !dict.ContainsKey("a") || dict.Get("b") != 2 {
		t.Errorf("unexpected dict content: %v", dict)
	}
	dict.Delete("a")
	if dict.ContainsKey("a") || dict.Length() != 1 {
		t.Errorf("unexpected dict content after delete: %v", dict)
	}
}

func TestOptional(t *testing.T) {
	some := Some(42)
	if !some.HasValue() || some.Value != 42 {
		t.Errorf("Some(42) = %v", some)
	}
	none := None[int]()
	if none.HasValue() {
		t.Errorf("None() should not have a value")
	}
}
