package effect

import "log"

// Context owns the effect slots of a renderer and the result states the DSP
// reports for them.
type Context struct {
	effects          []Effect
	resultStateCount uint32
	cpuStates        []ResultState
	dspStates        []ResultState
}

// NewContext creates a Context without slots.
func NewContext() *Context {
	return &Context{}
}

// Initialize creates count inert slots. It may only be called once.
func (c *Context) Initialize(count, resultStateCount uint32) {
	if c.effects != nil {
		log.Panic("effect context initialized twice")
	}

	c.effects = make([]Effect, count)
	for i := range c.effects {
		e := NewBaseEffect()
		e.NodeID = NodeID(i)
		c.effects[i] = e
	}

	c.resultStateCount = resultStateCount
}

// InitializeResultStates hands the context the storage of the result states
// the guest reads (cpu) and the DSP writes (dsp).
func (c *Context) InitializeResultStates(cpu, dsp []ResultState) {
	if uint32(len(cpu)) != c.resultStateCount ||
		uint32(len(dsp)) != c.resultStateCount {
		log.Panicf("need %d result states, got %d and %d",
			c.resultStateCount, len(cpu), len(dsp))
	}

	c.cpuStates = cpu
	c.dspStates = dsp
}

// GetCount returns the number of slots.
func (c *Context) GetCount() uint32 {
	return uint32(len(c.effects))
}

// GetEffect returns the slot at index.
func (c *Context) GetEffect(index int) Effect {
	if index < 0 || index >= len(c.effects) {
		log.Panicf("effect index %d out of range [0, %d)",
			index, len(c.effects))
	}

	return c.effects[index]
}

// Effects returns all the slots in order.
func (c *Context) Effects() []Effect {
	return c.effects
}

// Reset replaces the slot at index with an inert slot of another kind. The
// buffers of the old slot are released first. The node id is kept.
func (c *Context) Reset(
	index int,
	kind Type,
	mapper BufferMapper,
) (Effect, error) {
	old := c.GetEffect(index)

	e, err := NewEffect(kind)
	if err != nil {
		return nil, err
	}

	old.ForceUnmapBuffers(mapper)
	e.Base().NodeID = old.Base().NodeID
	c.effects[index] = e

	return e, nil
}

// GetState returns the result state the guest reads for the slot at index.
func (c *Context) GetState(index int) *ResultState {
	if index < 0 || index >= len(c.cpuStates) {
		log.Panicf("result state index %d out of range [0, %d)",
			index, len(c.cpuStates))
	}

	return &c.cpuStates[index]
}

// GetDspState returns the result state the DSP writes for the slot at index.
func (c *Context) GetDspState(index int) *ResultState {
	if index < 0 || index >= len(c.dspStates) {
		log.Panicf("result state index %d out of range [0, %d)",
			index, len(c.dspStates))
	}

	return &c.dspStates[index]
}

// UpdateResultStateForCommandGeneration publishes what the DSP wrote for
// every slot to the states the guest reads.
func (c *Context) UpdateResultStateForCommandGeneration() {
	for i := 0; i < len(c.effects) && i < len(c.cpuStates); i++ {
		c.effects[i].UpdateResultState(&c.cpuStates[i], &c.dspStates[i])
	}
}
