// Copyright 2016 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package rowexec

import (
	"container/heap"
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/physopt/pkg/sql/opt/memo"
	"github.com/cockroachdb/physopt/pkg/sql/sem/tree"
	"github.com/cockroachdb/physopt/pkg/util/log"
)

// sorterBase sorts the input rows according to the specified ordering.
type sorterBase struct {
	processorBase

	// ords and desc describe the ordering in terms of positions in the input
	// rows.
	ords []int
	desc []bool

	rows []sortRow
	i    int
}

// sortRow is a buffered input row, along with its position in the input.
// The position breaks ties so that rows that compare equal are emitted in
// input order by every sorter.
type sortRow struct {
	row tree.Datums
	seq int
}

func (s *sorterBase) init(name string, op *memo.SortOp, input RowSource) error {
	produced := input.OutputCols()
	ordering := op.Ordering()
	s.ords = make([]int, len(ordering))
	s.desc = make([]bool, len(ordering))
	for i, oc := range ordering {
		ord, ok := produced.Find(oc.ID())
		if !ok {
			return errors.AssertionFailedf(
				"ordering column %d is not produced by the sort input %s", oc.ID(), produced)
		}
		s.ords[i] = ord
		s.desc[i] = oc.Descending()
	}
	return s.processorBase.init(name, op.Attrs(), produced, input)
}

// less returns true if a sorts before b.
func (s *sorterBase) less(a, b sortRow) bool {
	for i, ord := range s.ords {
		c := a.row[ord].Compare(b.row[ord])
		if s.desc[i] {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
	}
	return a.seq < b.seq
}

// Next is part of the RowSource interface. It is shared between the
// sortAllProcessor and the sortTopKProcessor.
func (s *sorterBase) Next(ctx context.Context) (tree.Datums, error) {
	for s.state == stateRunning {
		if err := s.checkCancel(ctx); err != nil {
			return nil, err
		}
		if s.i >= len(s.rows) {
			s.state = stateExhausted
			break
		}
		row := s.rows[s.i].row
		s.i++
		out, err := s.processRowHelper(ctx, row)
		if err != nil {
			return nil, err
		}
		if out != nil {
			return out, nil
		}
	}
	return nil, nil
}

// Close is part of the RowSource interface.
func (s *sorterBase) Close(ctx context.Context) {
	s.rows = nil
	s.processorBase.Close(ctx)
}

// NewSorter returns a processor for a sort operator over the given input.
//
// If the sort has a limit and no predicate, only the first k rows of the
// ordering can ever be emitted, so a top-k sorter is used.
func NewSorter(op *memo.SortOp, input RowSource) (RowSource, error) {
	attrs := op.Attrs()
	if attrs.Limit.IsSet() && attrs.Predicate == nil {
		return newSortTopKProcessor(op, input, attrs.Limit.Rows())
	}
	return newSortAllProcessor(op, input)
}

// sortAllProcessor reads all input rows into memory and sorts them in place.
// It has a worst-case time complexity of O(n*log(n)) and a worst-case space
// complexity of O(n).
type sortAllProcessor struct {
	sorterBase
}

var _ RowSource = &sortAllProcessor{}

const sortAllProcName = "sortAll"

func newSortAllProcessor(op *memo.SortOp, input RowSource) (RowSource, error) {
	proc := &sortAllProcessor{}
	if err := proc.sorterBase.init(sortAllProcName, op, input); err != nil {
		return nil, err
	}
	return proc, nil
}

// Start is part of the RowSource interface.
func (s *sortAllProcessor) Start(ctx context.Context) error {
	if err := s.startInternal(ctx); err != nil {
		return err
	}
	if s.state != stateRunning {
		return nil
	}
	if err := s.fill(ctx); err != nil {
		return s.moveToExhausted(err)
	}
	return nil
}

// fill reads all rows from the input and sorts them.
func (s *sortAllProcessor) fill(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := s.input.Next(ctx)
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		s.rows = append(s.rows, sortRow{row: row, seq: len(s.rows)})
	}
	sort.Slice(s.rows, func(i, j int) bool { return s.less(s.rows[i], s.rows[j]) })
	log.VEventf(ctx, 2, "sorted %d rows", len(s.rows))
	return nil
}

// sortTopKProcessor keeps a max-heap of the k smallest rows seen so far. A
// new row replaces the top of the heap if it sorts before it. When the input
// is exhausted, the heap is sorted in place. It has a worst-case time
// complexity of O(n*log(k)) and a worst-case space complexity of O(k).
type sortTopKProcessor struct {
	sorterBase
	k int64
}

var _ RowSource = &sortTopKProcessor{}
var _ heap.Interface = &sortTopKProcessor{}

const sortTopKProcName = "sortTopK"

var errSortTopKZeroK = errors.New("invalid value 0 for k")

func newSortTopKProcessor(op *memo.SortOp, input RowSource, k int64) (RowSource, error) {
	proc := &sortTopKProcessor{k: k}
	if err := proc.sorterBase.init(sortTopKProcName, op, input); err != nil {
		return nil, err
	}
	return proc, nil
}

// Start is part of the RowSource interface.
func (s *sortTopKProcessor) Start(ctx context.Context) error {
	if err := s.startInternal(ctx); err != nil {
		return err
	}
	// A zero limit exhausts the processor before any row is read.
	if s.state != stateRunning {
		return nil
	}
	if s.k == 0 {
		return s.moveToExhausted(errors.NewAssertionErrorWithWrappedErrf(errSortTopKZeroK,
			"error running top k sorter"))
	}
	if err := s.fill(ctx); err != nil {
		return s.moveToExhausted(err)
	}
	return nil
}

func (s *sortTopKProcessor) fill(ctx context.Context) error {
	seq := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := s.input.Next(ctx)
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		r := sortRow{row: row, seq: seq}
		seq++
		if int64(len(s.rows)) < s.k {
			heap.Push(s, r)
		} else if s.less(r, s.rows[0]) {
			s.rows[0] = r
			heap.Fix(s, 0)
		}
	}
	// Pop the rows in reverse order to sort the heap in place.
	n := len(s.rows)
	for i := n - 1; i > 0; i-- {
		s.rows[0], s.rows[i] = s.rows[i], s.rows[0]
		s.rows = s.rows[:i]
		heap.Fix(s, 0)
	}
	s.rows = s.rows[:n]
	log.VEventf(ctx, 2, "kept %d of %d rows", n, seq)
	return nil
}

// Len is part of heap.Interface.
func (s *sortTopKProcessor) Len() int { return len(s.rows) }

// Less is part of heap.Interface. The heap is a max-heap.
func (s *sortTopKProcessor) Less(i, j int) bool { return s.less(s.rows[j], s.rows[i]) }

// Swap is part of heap.Interface.
func (s *sortTopKProcessor) Swap(i, j int) { s.rows[i], s.rows[j] = s.rows[j], s.rows[i] }

// Push is part of heap.Interface.
func (s *sortTopKProcessor) Push(x interface{}) { s.rows = append(s.rows, x.(sortRow)) }

// Pop is part of heap.Interface.
func (s *sortTopKProcessor) Pop() interface{} {
	n := len(s.rows)
	r := s.rows[n-1]
	s.rows = s.rows[:n-1]
	return r
}
