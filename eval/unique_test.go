package eval

import "testing"

func TestUniqueSetFirstOccurrence(t *testing.T) {
	u := NewUniqueSet()
	if !u.Insert(1, 100) {
		t.Fatal("first insert should report true")
	}
}

func TestUniqueSetRepeatOccurrence(t *testing.T) {
	u := NewUniqueSet()
	u.Insert(1, 100)
	if u.Insert(1, 100) {
		t.Fatal("repeat insert should report false")
	}
}

func TestUniqueSetDistinguishesDeviceAndInode(t *testing.T) {
	u := NewUniqueSet()
	u.Insert(1, 100)
	if !u.Insert(2, 100) {
		t.Fatal("same inode on a different device is a distinct identity")
	}
	if !u.Insert(1, 200) {
		t.Fatal("same device with a different inode is a distinct identity")
	}
}
