// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"context"
	"time"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/util"
	"github.com/cockroachdb/physopt/pkg/util/log"
)

// ErrInvalidPlan marks errors returned when a plan tree or memo violates a
// structural invariant that individual operators cannot check on their own.
var ErrInvalidPlan = errors.New("invalid physical plan")

// Memo is a forest of physical plans that share structure. Every group holds
// one or more alternative expressions producing the same rows; an expression
// is an operator whose inputs are other groups. Structurally identical
// operators over the same input groups are stored once.
//
// Deduplication uses PhysicalOperator.Hash to pick a bucket and
// PhysicalOperator.Equals to confirm a match, so unequal operators that share
// a digest are kept apart.
//
// A Memo is not safe for concurrent use; operators stored in it are.
type Memo struct {
	// groups is indexed by GroupID-1.
	groups []memoGroup

	// buckets maps an expression key to the expressions sharing that key.
	buckets map[uint64][]exprRef

	root GroupID

	// collisionEvery rate-limits the warnings about digest collisions.
	collisionEvery log.EveryN

	stats struct {
		dedups     int
		collisions int
	}
}

// GroupExpr is one alternative of a memo group.
type GroupExpr struct {
	Op       PhysicalOperator
	Children []GroupID
}

type memoGroup struct {
	exprs []GroupExpr
}

type exprRef struct {
	group GroupID
	ord   int
}

// Init prepares the memo for use, discarding anything it held.
func (m *Memo) Init() {
	*m = Memo{
		buckets:        make(map[uint64][]exprRef),
		collisionEvery: log.Every(10 * time.Second),
	}
}

func (m *Memo) ensureInit() {
	if m.buckets == nil {
		m.Init()
	}
}

// MemoizeExpr adds the tree rooted at e to the memo bottom-up and returns the
// group of the root. Subtrees equal to ones already in the memo resolve to
// the existing groups. The group of every node is recorded in the node.
func (m *Memo) MemoizeExpr(ctx context.Context, e *Expr) GroupID {
	m.ensureInit()
	children := make([]GroupID, len(e.inputs))
	for i, in := range e.inputs {
		children[i] = m.MemoizeExpr(ctx, in)
	}
	if grp, ok := m.lookup(ctx, e.op, children); ok {
		m.stats.dedups++
		log.VEventf(ctx, 2, "%s deduplicated into G%d", e.op.Op(), grp)
		e.group = grp
		return grp
	}
	m.groups = append(m.groups, memoGroup{})
	grp := GroupID(len(m.groups))
	m.addExpr(grp, e.op, children)
	log.VEventf(ctx, 3, "%s added as G%d", e.op.Op(), grp)
	e.group = grp
	return grp
}

// AddAlternative adds an expression to an existing group. It returns false
// if an equal expression is already in the group. It is an error to add an
// expression that already belongs to another group, to refer to groups that
// don't exist, or to pass the wrong number of children for op.
func (m *Memo) AddAlternative(
	ctx context.Context, grp GroupID, op PhysicalOperator, children ...GroupID,
) (bool, error) {
	m.ensureInit()
	if !m.validGroup(grp) {
		return false, errors.Mark(errors.Newf("group G%d does not exist", grp), ErrInvalidPlan)
	}
	if op == nil {
		return false, errors.AssertionFailedf("alternative has no operator")
	}
	if n := op.Op().ChildCount(); n != len(children) {
		return false, errors.Mark(
			errors.Newf("%s expects %d children, found %d", op.Op(), n, len(children)), ErrInvalidPlan)
	}
	for _, c := range children {
		if !m.validGroup(c) {
			return false, errors.Mark(errors.Newf("child group G%d does not exist", c), ErrInvalidPlan)
		}
		if m.reaches(c, grp) {
			return false, errors.Mark(
				errors.Newf("%s in G%d would depend on itself through G%d", op.Op(), grp, c),
				ErrInvalidPlan)
		}
	}
	if existing, ok := m.lookup(ctx, op, children); ok {
		if existing != grp {
			return false, errors.Mark(
				errors.Newf("%s already belongs to G%d, not G%d", op.Op(), existing, grp), ErrInvalidPlan)
		}
		return false, nil
	}
	m.addExpr(grp, op, children)
	log.VEventf(ctx, 2, "%s added to G%d", op.Op(), grp)
	return true, nil
}

// Lookup returns the group holding an expression equal to op over the given
// children.
func (m *Memo) Lookup(op PhysicalOperator, children ...GroupID) (GroupID, bool) {
	if m.buckets == nil || op == nil {
		return 0, false
	}
	return m.lookup(context.Background(), op, children)
}

func (m *Memo) lookup(ctx context.Context, op PhysicalOperator, children []GroupID) (GroupID, bool) {
	for _, ref := range m.buckets[exprKey(op, children)] {
		ge := &m.groups[ref.group-1].exprs[ref.ord]
		if op.Equals(ge.Op) && groupsEqual(children, ge.Children) {
			return ref.group, true
		}
		m.stats.collisions++
		if ok, skipped := m.collisionEvery.ShouldLog(); ok {
			log.Warningf(ctx, "hash collision between %s and %s in G%d (%d so far, %d not logged)",
				op.Op(), ge.Op.Op(), ref.group, m.stats.collisions, skipped)
		}
	}
	return 0, false
}

func (m *Memo) addExpr(grp GroupID, op PhysicalOperator, children []GroupID) {
	g := &m.groups[grp-1]
	g.exprs = append(g.exprs, GroupExpr{Op: op, Children: append([]GroupID(nil), children...)})
	key := exprKey(op, children)
	m.buckets[key] = append(m.buckets[key], exprRef{group: grp, ord: len(g.exprs) - 1})
}

// reaches returns true if target is reachable from grp through the inputs of
// any of its expressions. Each group is explored once.
func (m *Memo) reaches(grp, target GroupID) bool {
	var visited util.FastIntSet
	stack := []GroupID{grp}
	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if g == target {
			return true
		}
		if visited.Contains(int(g)) {
			continue
		}
		visited.Add(int(g))
		for _, ge := range m.groups[g-1].exprs {
			stack = append(stack, ge.Children...)
		}
	}
	return false
}

func (m *Memo) validGroup(grp GroupID) bool {
	return grp >= 1 && int(grp) <= len(m.groups)
}

// GroupCount returns the number of groups.
func (m *Memo) GroupCount() int { return len(m.groups) }

// ExprCount returns the number of expressions across all groups.
func (m *Memo) ExprCount() int {
	n := 0
	for i := range m.groups {
		n += len(m.groups[i].exprs)
	}
	return n
}

// GroupSize returns the number of alternatives in the group.
func (m *Memo) GroupSize(grp GroupID) int {
	return len(m.group(grp).exprs)
}

// Expr returns the ord-th alternative of the group. The caller must not
// modify the returned child list.
func (m *Memo) Expr(grp GroupID, ord int) GroupExpr {
	return m.group(grp).exprs[ord]
}

func (m *Memo) group(grp GroupID) *memoGroup {
	if !m.validGroup(grp) {
		panic(errors.AssertionFailedf("group G%d does not exist", grp))
	}
	return &m.groups[grp-1]
}

// Root returns the group set by SetRoot, or 0.
func (m *Memo) Root() GroupID { return m.root }

// SetRoot records the group holding the root of the plan.
func (m *Memo) SetRoot(grp GroupID) {
	m.group(grp)
	m.root = grp
}

// DedupCount returns the number of memoized expressions that resolved to an
// existing group.
func (m *Memo) DedupCount() int { return m.stats.dedups }

// ExtractExpr rebuilds a plan tree from grp using the first alternative of
// every group.
func (m *Memo) ExtractExpr(grp GroupID) *Expr {
	ge := m.group(grp).exprs[0]
	e := &Expr{op: ge.Op, group: grp, inputs: make([]*Expr, len(ge.Children))}
	for i, c := range ge.Children {
		e.inputs[i] = m.ExtractExpr(c)
	}
	return e
}

// MemoryEstimate returns a rough estimate of the bytes held by the memo's own
// structures. Operators are shared with the caller and only counted by
// pointer.
func (m *Memo) MemoryEstimate() int64 {
	const (
		groupSize = int64(unsafe.Sizeof(memoGroup{}))
		exprSize  = int64(unsafe.Sizeof(GroupExpr{}))
		refSize   = int64(unsafe.Sizeof(exprRef{}))
		idSize    = int64(unsafe.Sizeof(GroupID(0)))
		// A map entry holds the key and a slice header.
		bucketSize = int64(unsafe.Sizeof(uint64(0)) + unsafe.Sizeof([]exprRef{}))
	)
	est := int64(unsafe.Sizeof(*m)) + int64(cap(m.groups))*groupSize
	for i := range m.groups {
		est += int64(cap(m.groups[i].exprs)) * exprSize
		for _, ge := range m.groups[i].exprs {
			est += int64(len(ge.Children)) * idSize
		}
	}
	est += int64(len(m.buckets))*bucketSize + int64(m.ExprCount())*refSize
	return est
}

func exprKey(op PhysicalOperator, children []GroupID) uint64 {
	h := op.Hash()
	for _, c := range children {
		h = util.FNV64AddUint64(h, uint64(c))
	}
	return h
}

func groupsEqual(a, b []GroupID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
