// Package fomitchevlist implements FomitchevList: Fomitchev & Ruppert's
// lock-free sorted linked list with backlinks ("Lock-Free Linked Lists and
// Skip Lists"). Each node's successor pointer carries two bits — mark
// ("this node is logically deleted") and flag ("the node holding this
// pointer is being helped to remove its successor") — plus a backlink set
// to the predecessor observed at the moment deletion began, so a helper
// that finds its predecessor marked can walk backlinks instead of
// restarting a full search from head.
//
// Deletion is tryFlag (claim the predecessor's edge into the victim) then
// helpFlagged (mark the victim, then physically unlink it) — any thread
// that sees a flagged edge, not just the original remover, can and does
// finish the job, which is what makes this lock-free rather than merely
// obstruction-free.
package fomitchevlist

import (
	"sync/atomic"

	"github.com/gaarutyunov/concurrent-collections/internal/reclaim"
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
)

type ref struct {
	next    *node
	marked  bool
	flagged bool
}

type node struct {
	key      ckv.Key
	val      ckv.Value
	succ     atomic.Pointer[ref]
	backlink atomic.Pointer[node]
}

func newRef(n *node, marked, flagged bool) *ref {
	return &ref{next: n, marked: marked, flagged: flagged}
}

// FomitchevList is a lock-free sorted linked set with backlink-assisted helping.
type FomitchevList struct {
	head *node
	tail *node
	dom  *reclaim.Domain
}

var _ ckv.Set = (*FomitchevList)(nil)

// New creates an empty FomitchevList.
func New() *FomitchevList {
	tail := &node{key: ckv.MaxKey}
	head := &node{key: ckv.MinKey}
	head.succ.Store(newRef(tail, false, false))
	tail.succ.Store(newRef(nil, false, false))
	return &FomitchevList{head: head, tail: tail, dom: reclaim.NewDomain()}
}

// helpMarked physically unlinks del from prev once del is known marked and
// prev's edge into it is flagged; a single attempt, matching the original's
// "best effort, someone will have already done it if this fails" shape.
func (l *FomitchevList) helpMarked(prev, del *node) {
	old := prev.succ.Load()
	if old.next != del || old.marked || !old.flagged {
		return
	}
	next := del.succ.Load().next
	if prev.succ.CompareAndSwap(old, newRef(next, false, false)) {
		l.dom.Retire(del)
	}
}

// tryMark sets del's own mark bit, helping along any flagged deletion of
// del's successor that it observes along the way.
func (l *FomitchevList) tryMark(del *node) {
	for {
		old := del.succ.Load()
		if old.marked {
			return
		}
		if old.flagged {
			l.helpFlagged(del, old.next)
			continue
		}
		del.succ.CompareAndSwap(old, newRef(old.next, true, false))
	}
}

// helpFlagged finishes a deletion that has already won tryFlag: record the
// backlink, mark the victim, then physically unlink it.
func (l *FomitchevList) helpFlagged(prev, del *node) {
	del.backlink.Store(prev)
	if !del.succ.Load().marked {
		l.tryMark(del)
	}
	l.helpMarked(prev, del)
}

// tryFlag claims prev's edge into target for deletion, walking backlinks
// past any predecessor that has itself since been marked and then
// re-searching for target; it returns (nil, false) once target is no
// longer in the list.
func (l *FomitchevList) tryFlag(prevIn, target *node) (result *node, ok bool) {
	prev := prevIn
	for {
		cur := prev.succ.Load()
		if cur.next == target && !cur.marked && cur.flagged {
			return prev, false
		}
		if cur.next == target && !cur.marked && !cur.flagged {
			if prev.succ.CompareAndSwap(cur, newRef(target, false, true)) {
				return prev, true
			}
		}
		cur = prev.succ.Load()
		if cur.next == target && !cur.marked && cur.flagged {
			return prev, false
		}
		for prev.succ.Load().marked {
			b := prev.backlink.Load()
			if b == nil {
				break
			}
			prev = b
		}
		var del *node
		prev, del = l.search(target.key)
		if del != target {
			return nil, false
		}
	}
}

// search returns (pred, curr) with pred the last node whose key < key and
// curr the first node whose key >= key, helping unlink any marked node it
// finds still linked from pred along the way.
func (l *FomitchevList) search(key ckv.Key) (pred, curr *node) {
	pred = l.head
	curr = pred.succ.Load().next

	for curr.key < key {
		for {
			nr := curr.succ.Load()
			pr := pred.succ.Load()
			if !(nr.marked && (!pr.marked || pr.next != curr)) {
				break
			}
			if pr.next == curr {
				l.helpMarked(pred, curr)
			}
			curr = pred.succ.Load().next
		}
		if curr.key < key {
			pred = curr
			curr = pred.succ.Load().next
		}
	}
	return pred, curr
}

// Insert adds (key, val) iff key is not already present. Uses curr (the
// first node with key >= target) for the duplicate check, unlike the
// original source's add(), which checked the predecessor's key — see
// DESIGN.md for why that isn't replicated here.
func (l *FomitchevList) Insert(key ckv.Key, val ckv.Value) bool {
	g := l.dom.Enter()
	defer g.Exit()

	pred, curr := l.search(key)
	if curr.key == key {
		return false
	}

	newNode := &node{key: key, val: val}
	for {
		predSucc := pred.succ.Load()
		if predSucc.flagged {
			l.helpFlagged(pred, predSucc.next)
		} else if predSucc.next == curr && !predSucc.marked {
			newNode.succ.Store(newRef(curr, false, false))
			if pred.succ.CompareAndSwap(predSucc, newRef(newNode, false, false)) {
				return true
			}
			result := pred.succ.Load()
			if !result.marked && result.flagged {
				l.helpFlagged(pred, result.next)
			}
			for pred.succ.Load().marked {
				b := pred.backlink.Load()
				if b == nil {
					break
				}
				pred = b
			}
		}
		pred, curr = l.search(key)
		if curr.key == key {
			return false
		}
	}
}

// Remove deletes the entry with key if present.
func (l *FomitchevList) Remove(key ckv.Key) (ckv.Value, bool) {
	g := l.dom.Enter()
	defer g.Exit()

	pred, del := l.search(key)
	if del.key != key {
		return 0, false
	}

	resultNode, ok := l.tryFlag(pred, del)
	if resultNode != nil {
		l.helpFlagged(resultNode, del)
	}
	if !ok {
		return 0, false
	}
	return del.val, true
}

// Contains reports whether key is present and not logically deleted. Like
// Insert, this checks curr (the located node), not the predecessor.
func (l *FomitchevList) Contains(key ckv.Key) bool {
	g := l.dom.Enter()
	defer g.Exit()

	_, curr := l.search(key)
	if curr == l.tail {
		return false
	}
	return curr.key == key && !curr.succ.Load().marked
}
