package hcl

import "github.com/hashicorp/hcl/v2"

// taskBlock is the raw shape of a `task` block. The region lists stay as
// expressions until translation so diagnostics can point at them.
type taskBlock struct {
	Name      string         `hcl:"name,label"`
	Reads     hcl.Expression `hcl:"reads,optional"`
	Writes    hcl.Expression `hcl:"writes,optional"`
	BusyUS    int            `hcl:"busy_us,optional"`
	AsyncOps  int            `hcl:"async_ops,optional"`
	DependsOn []string       `hcl:"depends_on,optional"`
}

// runtimeBlock is the raw shape of the `runtime` block.
type runtimeBlock struct {
	Workers      int    `hcl:"workers,optional"`
	Architecture string `hcl:"architecture,optional"`
	QueueDepth   int    `hcl:"queue_depth,optional"`
}

// fileRoot decodes all recognized top-level blocks from any grid file.
type fileRoot struct {
	Runtime *runtimeBlock `hcl:"runtime,block"`
	Tasks   []*taskBlock  `hcl:"task,block"`
	Remain  hcl.Body      `hcl:",remain"`
}
