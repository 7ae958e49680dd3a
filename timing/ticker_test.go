package timing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/audren/hooking"
	"go.uber.org/mock/gomock"
)

type frameHook struct {
	frames []uint64
}

func (h *frameHook) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	h.frames = append(h.frames, ctx.Item.(FrameEvent).Frame)
}

var _ = Describe("TickingComponent", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
		ticker   *MockTicker
		tc       *TickingComponent
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
		ticker = NewMockTicker(mockCtrl)
		tc = NewTickingComponent("Frames", engine, FrameRate, ticker)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should keep ticking while making progress", func() {
		gomock.InOrder(
			ticker.EXPECT().Tick().Return(true),
			ticker.EXPECT().Tick().Return(true),
			ticker.EXPECT().Tick().Return(false),
		)

		tc.TickNow()
		Expect(engine.Run()).To(Succeed())

		Expect(engine.CurrentTime()).
			To(BeNumerically("~", 2*FrameRate.Period(), 1e-12))
		Expect(tc.Name()).To(Equal("Frames"))
		Expect(tc.Ticks()).To(Equal(uint64(3)))
	})

	It("should number the frame events by cycle", func() {
		ticker.EXPECT().Tick().Return(true).Times(2)
		ticker.EXPECT().Tick().Return(false)
		hook := &frameHook{}
		engine.AcceptHook(hook)

		tc.TickNow()
		Expect(engine.Run()).To(Succeed())

		Expect(hook.frames).To(Equal([]uint64{0, 1, 2}))
	})

	It("should not schedule the same tick twice", func() {
		ticker.EXPECT().Tick().Return(false)

		tc.TickNow()
		tc.TickNow()

		Expect(engine.Run()).To(Succeed())
	})
})
