package app

import (
	"context"
	"sync"

	"github.com/vk/taskgridgo/internal/depgraph"
	"github.com/vk/taskgridgo/internal/domain"
	"github.com/vk/taskgridgo/internal/scheduler"
	"github.com/vk/taskgridgo/internal/work"
)

// gridSource adapts the scheduling policy's ready queue to the resource
// Source interface and routes completions back into the domain.
type gridSource struct {
	ctx    context.Context
	policy *scheduler.FIFO
	dom    *domain.Domain

	mu     sync.Mutex
	byItem map[work.Item]depgraph.Object
	errs   []error
}

func newGridSource(ctx context.Context, policy *scheduler.FIFO, dom *domain.Domain) *gridSource {
	return &gridSource{
		ctx:    ctx,
		policy: policy,
		dom:    dom,
		byItem: make(map[work.Item]depgraph.Object),
	}
}

func (s *gridSource) Next(ctx context.Context) (work.Item, bool) {
	obj, ok := s.policy.Next(ctx)
	if !ok {
		return nil, false
	}
	item := obj.DepNode().Work()
	s.mu.Lock()
	s.byItem[item] = obj
	s.mu.Unlock()
	return item, true
}

func (s *gridSource) Done(item work.Item, err error) {
	s.mu.Lock()
	obj := s.byItem[item]
	delete(s.byItem, item)
	if err != nil {
		s.errs = append(s.errs, err)
	}
	s.mu.Unlock()

	if obj != nil {
		s.dom.Finished(s.ctx, obj)
	}
}

// Errors returns every work-item failure seen so far.
func (s *gridSource) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]error, len(s.errs))
	copy(out, s.errs)
	return out
}
