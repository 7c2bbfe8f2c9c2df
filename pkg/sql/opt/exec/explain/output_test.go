// Copyright 2020 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package explain_test

import (
	"testing"

	"github.com/cockroachdb/physopt/pkg/sql/opt/exec/explain"
	"github.com/cockroachdb/physopt/pkg/sql/sem/types"
	"github.com/cockroachdb/physopt/pkg/util/leaktest"
	"github.com/stretchr/testify/require"
)

func TestOutputBuilder(t *testing.T) {
	defer leaktest.AfterTest(t)()

	example := func(flags explain.Flags) *explain.OutputBuilder {
		ob := explain.NewOutputBuilder(flags)
		ob.AddField("distributed", "false")
		ob.EnterNode("render", explain.ResultColumns{{Name: "a", Typ: types.Int}, {Name: "b", Typ: types.String}})
		ob.AddField("render 0", "foo")
		{
			ob.EnterNode("join", explain.ResultColumns{{Name: "x", Typ: types.Int}})
			ob.AddField("type", "outer")
			{
				ob.EnterNode("scan", explain.ResultColumns{{Name: "x", Typ: types.Int}})
				ob.AddField("table", "foo")
				ob.LeaveNode()
			}
			{
				ob.EnterNode("scan", nil) // Columns should show up as "()".
				ob.AddField("table", "bar")
				ob.LeaveNode()
			}
			ob.LeaveNode()
		}
		ob.LeaveNode()
		return ob
	}

	require.Equal(t, `distributed: false

• render
│ render 0: foo
│
└── • join
    │ type: outer
    │
    ├── • scan
    │     table: foo
    │
    └── • scan
          table: bar
`, example(explain.Flags{}).BuildString())

	require.Equal(t, `distributed: false

• render
│ columns: (a int, b string)
│ render 0: foo
│
└── • join
    │ columns: (x int)
    │ type: outer
    │
    ├── • scan
    │     columns: (x int)
    │     table: foo
    │
    └── • scan
          columns: ()
          table: bar
`, example(explain.Flags{Verbose: true, ShowTypes: true}).BuildString())

	require.Equal(t, []explain.Row{
		{Field: "distributed", Description: "false"},
		{Level: 1, Node: "render"},
		{Level: 1, Node: "render", Field: "render 0", Description: "foo"},
		{Level: 2, Node: "join"},
		{Level: 2, Node: "join", Field: "type", Description: "outer"},
		{Level: 3, Node: "scan"},
		{Level: 3, Node: "scan", Field: "table", Description: "foo"},
		{Level: 3, Node: "scan"},
		{Level: 3, Node: "scan", Field: "table", Description: "bar"},
	}, example(explain.Flags{}).BuildExplainRows())
}

func TestEmptyOutputBuilder(t *testing.T) {
	defer leaktest.AfterTest(t)()

	ob := explain.NewOutputBuilder(explain.Flags{Verbose: true})
	require.Equal(t, "", ob.BuildString())
	require.Empty(t, ob.BuildStringRows())
	require.Panics(t, ob.LeaveNode)
}

func TestMakeFlags(t *testing.T) {
	defer leaktest.AfterTest(t)()

	f, err := explain.MakeFlags("VERBOSE")
	require.NoError(t, err)
	require.Equal(t, explain.Flags{Verbose: true}, f)

	f, err = explain.MakeFlags("types")
	require.NoError(t, err)
	require.Equal(t, explain.Flags{Verbose: true, ShowTypes: true}, f)

	f, err = explain.MakeFlags("shape", "")
	require.NoError(t, err)
	require.Equal(t, explain.Flags{HideValues: true}, f)

	_, err = explain.MakeFlags("shape", "verbose")
	require.Error(t, err)
	_, err = explain.MakeFlags("opt")
	require.ErrorContains(t, err, `unknown EXPLAIN option "opt"`)
}
