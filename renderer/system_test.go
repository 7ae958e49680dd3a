package renderer

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/audren/behaviour"
	"github.com/sarchlab/audren/effect"
	"github.com/sarchlab/audren/hooking"
	"github.com/sarchlab/audren/mem/pool"
	"github.com/sarchlab/audren/updater"
)

type frameHook struct {
	positions []*hooking.HookPos
	targets   []CommandTarget
}

func (h *frameHook) Func(ctx hooking.HookCtx) {
	h.positions = append(h.positions, ctx.Pos)
	if ctx.Pos == HookPosFrameEnd {
		h.targets = ctx.Detail.([]CommandTarget)
	}
}

func reverbRecord(
	isNew, isEnabled bool,
	mixID int32,
	order uint32,
	base uint64,
) effect.InParameter {
	p := effect.InParameter{
		Type:            effect.TypeReverb,
		IsNew:           isNew,
		IsEnabled:       isEnabled,
		MixID:           mixID,
		ProcessingOrder: order,
		BufferBase:      base,
		BufferSize:      0x1000,
	}
	Expect(effect.EncodeSpecific(&p,
		effect.ReverbParameter{ChannelCountMax: 2, ChannelCount: 2})).
		To(Succeed())

	return p
}

var _ = Describe("System", func() {
	var (
		cfg    Config
		system *System
		space  *pool.PageTable
		output []byte
	)

	attach := pool.InParameter{
		CPUAddress: 0x10000,
		Size:       0x4000,
		State:      pool.UserStateRequestAttach,
	}

	encode := func(in *updater.Input) []byte {
		blob, err := in.Encode()
		Expect(err).NotTo(HaveOccurred())
		return blob
	}

	BeforeEach(func() {
		cfg = Config{
			Revision:    behaviour.MakeRevision(behaviour.LastRevision),
			EffectCount: 2,
		}
		space = pool.NewDefaultPageTable()
		system = MakeBuilder().WithAddressSpace(space).Build("Renderer")
		output = make([]byte, DefaultOutputSize)
	})

	Context("when initializing", func() {
		It("should reject a work buffer that is too small", func() {
			size := GetWorkBufferSize(cfg)

			err := system.Initialize(cfg, make([]byte, size-1))

			Expect(err).To(MatchError(behaviour.WorkBufferTooSmall))
		})

		It("should reject an unknown revision", func() {
			cfg.Revision = 0x1234

			err := system.Initialize(cfg, make([]byte, 0x10000))

			Expect(err).To(MatchError(behaviour.OperationFailed))
		})

		It("should only initialize once", func() {
			buf := make([]byte, GetWorkBufferSize(cfg))
			Expect(system.Initialize(cfg, buf)).To(Succeed())

			Expect(system.Initialize(cfg, buf)).
				To(MatchError(behaviour.InvalidExecutionContext))
		})

		It("should not carve result states before revision 9", func() {
			old := cfg
			old.Revision = behaviour.MakeRevision(behaviour.Revision8)

			Expect(old.resultStateCount()).To(BeZero())
			Expect(cfg.resultStateCount()).To(Equal(uint32(2)))
			Expect(system.Initialize(old, make([]byte, GetWorkBufferSize(old)))).
				To(Succeed())
		})

		It("should register the work buffer as a DSP pool", func() {
			cfg.WorkBufferAddress = 0x80000
			buf := make([]byte, GetWorkBufferSize(cfg))

			Expect(system.Initialize(cfg, buf)).To(Succeed())

			Expect(system.systemPool.IsMapped()).To(BeTrue())
			Expect(system.systemPool.Location).To(Equal(pool.LocationDSP))
			Expect(system.systemPool.CPUAddress).To(Equal(uint64(0x80000)))
		})

		It("should refuse to update before initialization", func() {
			err := system.Update(nil, output)

			Expect(err).To(MatchError(behaviour.InvalidExecutionContext))
			Expect(system.GenerateCommands()).To(BeNil())
		})
	})

	Context("when running frames", func() {
		BeforeEach(func() {
			Expect(system.Initialize(cfg, make([]byte, GetWorkBufferSize(cfg)))).
				To(Succeed())
			system.Start()
		})

		It("should order the command view by mix and processing order", func() {
			blob := encode(&updater.Input{
				Revision: cfg.Revision,
				Pools:    []pool.InParameter{attach, {}},
				Effects: []effect.InParameter{
					reverbRecord(true, true, 1, 0, 0x11000),
					reverbRecord(true, true, 0, 3, 0x12000),
				},
			})

			Expect(system.Update(blob, output)).To(Succeed())
			targets := system.GenerateCommands()

			Expect(targets).To(HaveLen(2))
			Expect(targets[0].Index).To(Equal(1))
			Expect(targets[0].NodeID).To(Equal(effect.NodeID(1)))
			Expect(targets[1].Index).To(Equal(0))
			Expect(targets[1].UsageState).To(Equal(effect.UsageStateEnabled))
			Expect(targets[1].WorkBuffers).
				To(Equal([]uint64{pool.DefaultDSPBase + 0x1000}))
			Expect(system.pools[0].IsUsed()).To(BeTrue())
			Expect(system.ElapsedFrameCount()).To(Equal(uint64(1)))
		})

		It("should leave out slots whose buffers are unmapped", func() {
			blob := encode(&updater.Input{
				Revision: cfg.Revision,
				Pools:    []pool.InParameter{attach, {}},
				Effects: []effect.InParameter{
					reverbRecord(true, true, 0, 0, 0x11000),
					reverbRecord(true, true, 0, 1, 0x90000),
				},
			})

			Expect(system.Update(blob, output)).To(Succeed())
			targets := system.GenerateCommands()

			Expect(targets).To(HaveLen(1))
			Expect(targets[0].Index).To(Equal(0))

			out, err := updater.DecodeOutput(output, 2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Errors).To(ConsistOf(
				behaviour.NewErrorInfo(behaviour.InvalidAddressInfo, 0x90000)))
		})

		It("should report disabled slots without a work buffer", func() {
			blob := encode(&updater.Input{
				Revision: cfg.Revision,
				Pools:    []pool.InParameter{attach, {}},
				Effects: []effect.InParameter{
					reverbRecord(true, false, 0, 0, 0x11000),
					{Type: effect.TypeInvalid},
				},
			})

			Expect(system.Update(blob, output)).To(Succeed())
			targets := system.GenerateCommands()

			Expect(targets).To(HaveLen(1))
			Expect(targets[0].IsEnabled).To(BeFalse())
			Expect(targets[0].UsageState).To(Equal(effect.UsageStateDisabled))
			Expect(targets[0].WorkBuffers).To(Equal([]uint64{0}))
		})

		It("should report the frame count to the guest", func() {
			blob := encode(&updater.Input{
				Revision: cfg.Revision,
				Pools:    []pool.InParameter{{}, {}},
				Effects:  make([]effect.InParameter, 2),
			})

			for i := 0; i < 3; i++ {
				Expect(system.Update(blob, output)).To(Succeed())
				system.GenerateCommands()
			}
			Expect(system.Update(blob, output)).To(Succeed())

			out, err := updater.DecodeOutput(output, 2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.ElapsedFrameCount).To(Equal(uint64(3)))
		})

		It("should invoke frame hooks around the command view", func() {
			hook := &frameHook{}
			system.AcceptHook(hook)

			blob := encode(&updater.Input{
				Revision: cfg.Revision,
				Pools:    []pool.InParameter{attach, {}},
				Effects: []effect.InParameter{
					reverbRecord(true, true, 0, 0, 0x11000),
					{Type: effect.TypeInvalid},
				},
			})
			Expect(system.Update(blob, output)).To(Succeed())
			hook.positions = nil

			targets := system.GenerateCommands()

			Expect(hook.positions).To(Equal([]*hooking.HookPos{
				HookPosFrameStart, HookPosFrameEnd,
			}))
			Expect(hook.targets).To(Equal(targets))
		})

		It("should hold frames while a slot is inspected", func() {
			blob := encode(&updater.Input{
				Revision: cfg.Revision,
				Pools:    []pool.InParameter{attach, {}},
				Effects: []effect.InParameter{
					reverbRecord(true, true, 0, 0, 0x11000),
					{Type: effect.TypeInvalid},
				},
			})
			Expect(system.Update(blob, output)).To(Succeed())

			framed := make(chan []CommandTarget)
			var seen effect.UsageState

			found := system.InspectEffect(0, func(e effect.Effect) {
				go func() { framed <- system.GenerateCommands() }()

				Consistently(framed, 50*time.Millisecond).ShouldNot(Receive())
				seen = e.Base().UsageState
			})

			Expect(found).To(BeTrue())
			Expect(seen).To(Equal(effect.UsageStateNew))
			Eventually(framed).Should(Receive(HaveLen(1)))
		})

		It("should not inspect slots out of range", func() {
			called := false
			inspect := func(effect.Effect) { called = true }

			Expect(system.InspectEffect(-1, inspect)).To(BeFalse())
			Expect(system.InspectEffect(2, inspect)).To(BeFalse())
			Expect(called).To(BeFalse())
		})

		It("should fail the frame when the guest changes revision", func() {
			blob := encode(&updater.Input{
				Revision: behaviour.MakeRevision(behaviour.Revision1),
				Pools:    []pool.InParameter{{}, {}},
				Effects:  make([]effect.InParameter, 2),
			})

			Expect(system.Update(blob, output)).
				To(MatchError(behaviour.InvalidUpdateInfo))
		})
	})

	It("should track whether the renderer runs", func() {
		Expect(system.Name()).To(Equal("Renderer"))
		Expect(system.IsActive()).To(BeFalse())

		system.Start()
		Expect(system.IsActive()).To(BeTrue())

		system.Stop()
		Expect(system.IsActive()).To(BeFalse())
	})
})

var _ = Describe("GetWorkBufferSize", func() {
	It("should be page aligned", func() {
		cfg := Config{
			Revision:    behaviour.MakeRevision(behaviour.LastRevision),
			EffectCount: 7,
			VoiceCount:  3,
		}

		size := GetWorkBufferSize(cfg)

		Expect(size % WorkBufferAlignment).To(BeZero())
		Expect(cfg.MemoryPoolCount()).To(Equal(uint32(19)))
	})
})
