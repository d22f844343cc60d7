package config

import "fmt"

// Model is the fully loaded workload description.
type Model struct {
	Runtime *Runtime
	Tasks   []*Task
}

// Runtime holds execution settings for the resource pool.
type Runtime struct {
	// Workers is the number of execution resources. Zero means "use the
	// CLI/default value".
	Workers int
	// Architecture tags every resource; purely informational for the
	// scheduling policy.
	Architecture string
	// QueueDepth suggests a ready-queue size. The runtime enforces a safe
	// minimum so release fan-out can never block the pool against itself.
	QueueDepth int
}

// Task declares one schedulable unit: the regions it accesses, how much
// simulated compute it performs, and how many asynchronous device operations
// it launches.
type Task struct {
	Name      string
	Reads     []Region
	Writes    []Region
	BusyUS    int
	AsyncOps  int
	DependsOn []string
}

// Region is a half-open memory interval [Base, Base+Length) used for
// dependency discovery.
type Region struct {
	Base   uint64
	Length uint64
}

// Validate checks cross-references and obvious mistakes in the model.
func (m *Model) Validate() error {
	names := make(map[string]struct{}, len(m.Tasks))
	for _, t := range m.Tasks {
		if t.Name == "" {
			return fmt.Errorf("task with empty name")
		}
		if _, dup := names[t.Name]; dup {
			return fmt.Errorf("duplicate task name %q", t.Name)
		}
		names[t.Name] = struct{}{}
		for _, r := range append(append([]Region{}, t.Reads...), t.Writes...) {
			if r.Length == 0 {
				return fmt.Errorf("task %q: zero-length region 0x%x", t.Name, r.Base)
			}
		}
		if t.AsyncOps < 0 || t.BusyUS < 0 {
			return fmt.Errorf("task %q: negative busy_us or async_ops", t.Name)
		}
	}
	for _, t := range m.Tasks {
		for _, dep := range t.DependsOn {
			if _, ok := names[dep]; !ok {
				return fmt.Errorf("task %q depends on unknown task %q", t.Name, dep)
			}
			if dep == t.Name {
				return fmt.Errorf("task %q depends on itself", t.Name)
			}
		}
	}
	return nil
}
