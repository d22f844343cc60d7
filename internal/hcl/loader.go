package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgridgo/internal/config"
	"github.com/vk/taskgridgo/internal/ctxlog"
)

// Loader is the HCL-specific implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under the given paths and merges the blocks
// into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{Runtime: &config.Runtime{}}

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if root.Runtime != nil {
			mergeRuntime(model.Runtime, root.Runtime)
		}
		for _, tb := range root.Tasks {
			task, err := l.translateTask(tb)
			if err != nil {
				return nil, fmt.Errorf("in file %s: %w", file, err)
			}
			model.Tasks = append(model.Tasks, task)
		}
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("HCL loading complete.", "tasks", len(model.Tasks))
	return model, nil
}

func mergeRuntime(dst *config.Runtime, src *runtimeBlock) {
	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
	if src.Architecture != "" {
		dst.Architecture = src.Architecture
	}
	if src.QueueDepth != 0 {
		dst.QueueDepth = src.QueueDepth
	}
}

// translateTask converts the HCL-specific task schema into the agnostic
// model, evaluating the region-list expressions.
func (l *Loader) translateTask(tb *taskBlock) (*config.Task, error) {
	reads, err := regionList(tb.Reads)
	if err != nil {
		return nil, fmt.Errorf("task %q: reads: %w", tb.Name, err)
	}
	writes, err := regionList(tb.Writes)
	if err != nil {
		return nil, fmt.Errorf("task %q: writes: %w", tb.Name, err)
	}
	return &config.Task{
		Name:      tb.Name,
		Reads:     reads,
		Writes:    writes,
		BusyUS:    tb.BusyUS,
		AsyncOps:  tb.AsyncOps,
		DependsOn: tb.DependsOn,
	}, nil
}

// regionList evaluates a reads/writes expression into region descriptors.
// An absent attribute yields an empty list.
func regionList(expr hcl.Expression) ([]config.Region, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid region list: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("region list must be a list of strings")
	}

	var out []config.Region
	for it := val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		if v.IsNull() || v.Type() != cty.String {
			return nil, fmt.Errorf("region entries must be strings")
		}
		r, err := ParseRegion(v.AsString())
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ParseRegion parses a "base+length" region literal, with the base in any Go
// integer literal form.
func ParseRegion(s string) (config.Region, error) {
	base, length, ok := strings.Cut(s, "+")
	if !ok {
		return config.Region{}, fmt.Errorf("region %q: want base+length", s)
	}
	b, err := strconv.ParseUint(strings.TrimSpace(base), 0, 64)
	if err != nil {
		return config.Region{}, fmt.Errorf("region %q: bad base: %w", s, err)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(length), 10, 64)
	if err != nil {
		return config.Region{}, fmt.Errorf("region %q: bad length: %w", s, err)
	}
	if n == 0 {
		return config.Region{}, fmt.Errorf("region %q: zero length", s)
	}
	return config.Region{Base: b, Length: n}, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of the .hcl
// files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access path %s: %w", path, err)
		}
		if !info.IsDir() {
			if _, dup := seen[path]; !dup {
				seen[path] = struct{}{}
				allFiles = append(allFiles, path)
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(p) != ".hcl" {
				return nil
			}
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				allFiles = append(allFiles, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	return allFiles, nil
}
