package network

import (
	"github.com/dd0wney/plexnet/pkg/logging"
	"github.com/dd0wney/plexnet/pkg/modelerr"
)

// task asks for a species to be offered to its features.
type task struct {
	species *Species
	depth   int
}

// enqueue schedules sp for expansion. The notified flag is set here, before
// any generator sees sp, so a species reached again while its own expansion is
// pending is not queued twice. A negative depth suppresses expansion.
func (n *Network) enqueue(sp *Species, depth int) {
	if sp.notified || depth < 0 {
		return
	}
	sp.notified = true
	n.queue = append(n.queue, task{species: sp, depth: depth})
	if n.metrics != nil {
		n.metrics.ObserveQueueLength(len(n.queue) - n.head)
	}
}

// drain processes queued tasks in FIFO order until none are left.
func (n *Network) drain() error {
	for n.head < len(n.queue) {
		t := n.queue[n.head]
		n.head++
		if err := n.process(t); err != nil {
			n.abandon()
			return err
		}
	}
	n.queue = n.queue[:0]
	n.head = 0
	return nil
}

// abandon drops pending tasks. Their species can be expanded again later.
func (n *Network) abandon() {
	for _, t := range n.queue[n.head:] {
		t.species.notified = false
	}
	n.log.Debug("queue abandoned", logging.Count(len(n.queue)-n.head))
	n.queue = n.queue[:0]
	n.head = 0
}

func (n *Network) process(t task) error {
	sp := t.species
	fam := sp.Family
	if !fam.connected {
		if err := n.connect(fam); err != nil {
			return err
		}
	}

	for _, c := range fam.conns {
		ctx := Context{Species: sp, Pos: c.pos}
		c.feat.contexts = append(c.feat.contexts, ctx)
		for _, sub := range c.feat.subscribers {
			if err := n.respond(sub, ctx, t.depth); err != nil {
				return n.generatorFailed(sub.gen, err)
			}
		}
	}

	if n.metrics != nil {
		n.metrics.RecordNotification(t.depth > 0)
	}
	return nil
}

func (n *Network) respond(sub subscription, ctx Context, depth int) error {
	g := sub.gen
	switch g.kind {
	case Dimerize:
		return n.dimerize(g, sub.side, ctx, depth)
	case Decompose:
		return n.decompose(g, ctx, depth)
	case UniMol:
		return n.modify(g, ctx, depth)
	case Omni:
		return n.modify(g, ctx, depth)
	}
	return nil
}

func (n *Network) generatorFailed(g *generator, err error) error {
	err = modelerr.New(g.kind.String()).Rule(g.name).Cause(err).Err()
	class := "configuration"
	if modelerr.IsDefect(err) {
		class = "defect"
	}
	n.log.Warn("reaction generation failed",
		logging.Generator(g.kind.String()),
		logging.Rule(g.name),
		logging.String("class", class),
		logging.Error(err))
	if n.metrics != nil {
		n.metrics.RecordGeneratorError(g.kind.String(), class)
	}
	return err
}
