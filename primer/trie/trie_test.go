package trie

import "testing"

func TestPutGetRoundTrip(t *testing.T) {
	var tr Trie
	tr = Put(tr, "hello", 42)
	tr = Put(tr, "help", 7)
	tr = Put(tr, "hel", "partial")

	if v, ok := Get[int](tr, "hello"); !ok || v != 42 {
		t.Fatalf("Get(hello) = %v, %v", v, ok)
	}
	if v, ok := Get[int](tr, "help"); !ok || v != 7 {
		t.Fatalf("Get(help) = %v, %v", v, ok)
	}
	if v, ok := Get[string](tr, "hel"); !ok || v != "partial" {
		t.Fatalf("Get(hel) = %v, %v", v, ok)
	}
	if _, ok := Get[int](tr, "he"); ok {
		t.Fatalf("Get(he) should be absent")
	}
}

func TestGetEmptyKey(t *testing.T) {
	var tr Trie
	if _, ok := Get[int](tr, ""); ok {
		t.Fatalf("empty trie should not contain the empty key")
	}
	tr = Put(tr, "", 99)
	if v, ok := Get[int](tr, ""); !ok || v != 99 {
		t.Fatalf("Get(\"\") = %v, %v", v, ok)
	}
}

func TestGetWrongTypeIsAbsent(t *testing.T) {
	var tr Trie
	tr = Put(tr, "k", 5)
	if _, ok := Get[string](tr, "k"); ok {
		t.Fatalf("Get with mismatched type should report absent, not panic or succeed")
	}
}

func TestPutOverwritesWithoutMutatingOldVersion(t *testing.T) {
	var tr Trie
	v1 := Put(tr, "k", 1)
	v2 := Put(v1, "k", 2)

	if v, ok := Get[int](v1, "k"); !ok || v != 1 {
		t.Fatalf("old version mutated: got %v, %v", v, ok)
	}
	if v, ok := Get[int](v2, "k"); !ok || v != 2 {
		t.Fatalf("new version wrong: got %v, %v", v, ok)
	}
}

func TestPutSharesUntouchedSubtrees(t *testing.T) {
	var tr Trie
	tr = Put(tr, "abc", 1)
	tr = Put(tr, "abd", 2)
	tr = Put(tr, "xyz", 3)

	before := tr.root.children['x']
	tr2 := Put(tr, "abc", 10)
	after := tr2.root.children['x']

	if before != after {
		t.Fatalf("untouched subtree 'x...' was not structurally shared")
	}
	if v, ok := Get[int](tr, "abc"); !ok || v != 1 {
		t.Fatalf("original trie mutated: got %v, %v", v, ok)
	}
	if v, ok := Get[int](tr2, "abc"); !ok || v != 10 {
		t.Fatalf("new trie missing update: got %v, %v", v, ok)
	}
}

func TestRemoveAbsentKeyReturnsSameHandle(t *testing.T) {
	var tr Trie
	tr = Put(tr, "k", 1)
	out := Remove(tr, "nope")
	if out.root != tr.root {
		t.Fatalf("Remove of absent key should return the identical root handle")
	}
}

func TestRemovePrunesValuelessChildlessNodes(t *testing.T) {
	var tr Trie
	tr = Put(tr, "a", 1)
	tr = Remove(tr, "a")
	if tr.root != nil {
		t.Fatalf("removing the only key should prune back to a nil root")
	}
	if _, ok := Get[int](tr, "a"); ok {
		t.Fatalf("removed key should be absent")
	}
}

func TestRemoveKeepsValueWhenNodeHasOtherChildren(t *testing.T) {
	var tr Trie
	tr = Put(tr, "a", 1)
	tr = Put(tr, "ab", 2)
	tr = Remove(tr, "a")

	if _, ok := Get[int](tr, "a"); ok {
		t.Fatalf("'a' should be absent after removal")
	}
	if v, ok := Get[int](tr, "ab"); !ok || v != 2 {
		t.Fatalf("'ab' should survive removal of 'a': got %v, %v", v, ok)
	}
}

func TestRemoveDoesNotMutateOldVersion(t *testing.T) {
	var tr Trie
	tr = Put(tr, "a", 1)
	tr = Put(tr, "ab", 2)
	tr2 := Remove(tr, "ab")

	if v, ok := Get[int](tr, "ab"); !ok || v != 2 {
		t.Fatalf("old version mutated by Remove: got %v, %v", v, ok)
	}
	if _, ok := Get[int](tr2, "ab"); ok {
		t.Fatalf("new version should not have 'ab'")
	}
}
