// Package renderer runs the effect side of an audio renderer instance: it
// carves the work buffer, applies the guest update every frame and resolves
// the view the command generator consumes.
package renderer

import (
	"fmt"
	"slices"
	"sync"

	"github.com/sarchlab/audren/behaviour"
	"github.com/sarchlab/audren/effect"
	"github.com/sarchlab/audren/hooking"
	"github.com/sarchlab/audren/mem/pool"
	"github.com/sarchlab/audren/mem/workbuffer"
	"github.com/sarchlab/audren/updater"
)

// HookPosFrameStart triggers before the command view of a frame is built.
// The item is the frame number.
var HookPosFrameStart = &hooking.HookPos{Name: "FrameStart"}

// HookPosFrameEnd triggers after the command view of a frame is built. The
// item is the frame number and the detail is the []CommandTarget.
var HookPosFrameEnd = &hooking.HookPos{Name: "FrameEnd"}

// CommandTarget is what the command generator needs to know about one slot.
type CommandTarget struct {
	Index           int
	NodeID          uint32
	Type            effect.Type
	IsEnabled       bool
	UsageState      effect.UsageState
	MixID           int32
	ProcessingOrder uint32
	WorkBuffers     []uint64
}

// System is a renderer instance.
type System struct {
	hooking.HookableBase

	lock sync.Mutex

	name  string
	space pool.AddressSpace

	config            Config
	behaviour         *behaviour.Context
	effects           *effect.Context
	pools             []pool.State
	systemPool        pool.State
	isInitialized     bool
	isActive          bool
	elapsedFrameCount uint64
}

// Name returns the name of the renderer.
func (s *System) Name() string {
	return s.name
}

// Config returns the configuration the renderer was initialized with.
func (s *System) Config() Config {
	return s.config
}

// Initialize sets the renderer up inside workBuffer. Memory pools and result
// states live in the work buffer for the whole life of the renderer.
func (s *System) Initialize(cfg Config, workBuffer []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.isInitialized {
		return fmt.Errorf("%w: %s is already initialized",
			behaviour.InvalidExecutionContext, s.name)
	}

	if !behaviour.CheckValidRevision(cfg.Revision) {
		return fmt.Errorf("%w: unknown revision 0x%x",
			behaviour.OperationFailed, cfg.Revision)
	}

	required := GetWorkBufferSize(cfg)
	if uint64(len(workBuffer)) < required {
		return fmt.Errorf("%w: need 0x%x bytes, got 0x%x",
			behaviour.WorkBufferTooSmall, required, len(workBuffer))
	}

	alloc := workbuffer.New(workBuffer)

	poolCount := uint64(cfg.MemoryPoolCount())
	pools := workbuffer.AllocateSlice[pool.State](
		alloc, poolCount, pool.StateAlignment)
	if poolCount > 0 && pools == nil {
		return behaviour.WorkBufferTooSmall
	}

	for i := range pools {
		pools[i].Init(pool.LocationCPU)
	}

	resultStateCount := cfg.resultStateCount()
	effects := effect.NewContext()
	effects.Initialize(cfg.EffectCount, resultStateCount)

	if resultStateCount > 0 {
		cpu := workbuffer.AllocateSlice[effect.ResultState](
			alloc, uint64(resultStateCount), ResultStateAlignment)
		dsp := workbuffer.AllocateSlice[effect.ResultState](
			alloc, uint64(resultStateCount), ResultStateAlignment)
		if cpu == nil || dsp == nil {
			return behaviour.WorkBufferTooSmall
		}

		effects.InitializeResultStates(cpu, dsp)
	}

	bc := behaviour.NewContext()
	bc.SetUserRevision(cfg.Revision)

	s.systemPool.Init(pool.LocationDSP)
	if cfg.WorkBufferAddress != 0 {
		mapper := pool.NewMapper(s.space, nil, false)
		if !mapper.InitializeSystemPool(&s.systemPool,
			cfg.WorkBufferAddress, uint64(len(workBuffer))) {
			return fmt.Errorf("%w: cannot map the work buffer",
				behaviour.OperationFailed)
		}
	}

	s.config = cfg
	s.behaviour = bc
	s.effects = effects
	s.pools = pools
	s.isInitialized = true

	return nil
}

// Start marks the renderer as running.
func (s *System) Start() {
	s.lock.Lock()
	s.isActive = true
	s.lock.Unlock()
}

// Stop marks the renderer as stopped.
func (s *System) Stop() {
	s.lock.Lock()
	s.isActive = false
	s.lock.Unlock()
}

// IsActive tells if the renderer is running.
func (s *System) IsActive() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.isActive
}

// ElapsedFrameCount returns the number of frames generated so far.
func (s *System) ElapsedFrameCount() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.elapsedFrameCount
}

func (s *System) mustBeInitialized() error {
	if !s.isInitialized {
		return fmt.Errorf("%w: %s is not initialized",
			behaviour.InvalidExecutionContext, s.name)
	}

	return nil
}

// Update applies one update blob from the guest and writes the status blob
// into output. The first failing section aborts the update.
func (s *System) Update(input, output []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.mustBeInitialized(); err != nil {
		return err
	}

	clear(output)

	u, err := updater.New(input, output, s.behaviour)
	if err != nil {
		return err
	}
	u.WithHooks(s)

	if err := u.UpdateBehaviourContext(); err != nil {
		return err
	}

	mapper := pool.NewMapper(s.space, s.pools,
		s.behaviour.IsMemoryPoolForceMappingEnabled())

	steps := []func() error{
		func() error { return u.UpdateMemoryPools(mapper, s.pools) },
		u.SkipVoices,
		func() error { return u.UpdateEffects(s.effects, s.isActive, mapper) },
		u.SkipMixesAndSinks,
		u.UpdateErrorInfo,
		func() error { return u.UpdateRendererInfo(s.elapsedFrameCount) },
		u.CheckConsumedSize,
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	return nil
}

// GenerateCommands resolves the usage state of every slot for this frame and
// returns the slots the command generator has to process, ordered by mix and
// processing order. Slots of the Invalid kind and slots whose buffers are
// unmapped are left out.
func (s *System) GenerateCommands() []CommandTarget {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.mustBeInitialized() != nil {
		return nil
	}

	frame := s.elapsedFrameCount
	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosFrameStart,
		Item:   frame,
	})

	pool.ClearUsage(s.pools)

	targets := make([]CommandTarget, 0, s.effects.GetCount())
	for i, e := range s.effects.Effects() {
		e.UpdateForCommandGeneration()

		base := e.Base()
		if e.Type() == effect.TypeInvalid || base.BufferUnmapped {
			continue
		}

		target := CommandTarget{
			Index:           i,
			NodeID:          base.NodeID,
			Type:            e.Type(),
			IsEnabled:       base.IsEnabled,
			UsageState:      base.UsageState,
			MixID:           base.MixID,
			ProcessingOrder: base.ProcessingOrder,
			WorkBuffers:     make([]uint64, len(base.WorkBuffers)),
		}

		for j := range target.WorkBuffers {
			target.WorkBuffers[j] = e.GetWorkBuffer(j)
		}

		targets = append(targets, target)
	}

	slices.SortStableFunc(targets, compareTargets)

	s.effects.UpdateResultStateForCommandGeneration()
	s.elapsedFrameCount++

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosFrameEnd,
		Item:   frame,
		Detail: targets,
	})

	return targets
}

func compareTargets(a, b CommandTarget) int {
	if a.MixID != b.MixID {
		if a.MixID < b.MixID {
			return -1
		}

		return 1
	}

	switch {
	case a.ProcessingOrder < b.ProcessingOrder:
		return -1
	case a.ProcessingOrder > b.ProcessingOrder:
		return 1
	default:
		return 0
	}
}
