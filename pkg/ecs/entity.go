package ecs

import "fmt"

// Entity encodes a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits. The generation increments on destroy to
// invalidate stale references.
//
// Slot indexes start at 1, so the zero Entity never identifies a live entity.
type Entity uint64

func newEntity(index, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// Index returns the slot index of the entity.
func (e Entity) Index() uint32 { return uint32(e) }

// Generation returns the generation of the entity's slot at creation time.
func (e Entity) Generation() uint32 { return uint32(e >> 32) }

// IsZero reports whether e is the zero Entity ("no entity").
func (e Entity) IsZero() bool { return e == 0 }

// String returns a compact form such as "e12v0", or "none" for the zero Entity.
func (e Entity) String() string {
	if e.IsZero() {
		return "none"
	}
	return fmt.Sprintf("e%dv%d", e.Index(), e.Generation())
}

// entityPool allocates entities with generational indices and a free list.
type entityPool struct {
	generations []uint32
	live        []bool
	freeList    []uint32
	alive       int
}

func newEntityPool() entityPool {
	return entityPool{
		// slot 0 is reserved for the zero Entity
		generations: make([]uint32, 1, 256),
		live:        make([]bool, 1, 256),
		freeList:    make([]uint32, 0, 64),
	}
}

func (p *entityPool) create() Entity {
	p.alive++
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.live[idx] = true
		return newEntity(idx, p.generations[idx])
	}
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 0)
	p.live = append(p.live, true)
	return newEntity(idx, 0)
}

func (p *entityPool) isAlive(e Entity) bool {
	idx := e.Index()
	if idx == 0 || int(idx) >= len(p.generations) {
		return false
	}
	return p.live[idx] && p.generations[idx] == e.Generation()
}

// destroy frees the slot of e. It reports false for stale or unknown handles.
func (p *entityPool) destroy(e Entity) bool {
	if !p.isAlive(e) {
		return false
	}
	idx := e.Index()
	p.generations[idx]++
	p.live[idx] = false
	p.freeList = append(p.freeList, idx)
	p.alive--
	return true
}
