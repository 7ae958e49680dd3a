package hooking

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type namedDomain struct {
	HookableBase
}

func (d *namedDomain) Name() string {
	return "Renderer"
}

type countingHook struct {
	calls []HookCtx
}

func (h *countingHook) Func(ctx HookCtx) {
	h.calls = append(h.calls, ctx)
}

var _ = Describe("HookableBase", func() {
	var (
		domain *namedDomain
	)

	BeforeEach(func() {
		domain = &namedDomain{}
	})

	It("should invoke all the hooks in order", func() {
		hook1 := &countingHook{}
		hook2 := &countingHook{}
		domain.AcceptHook(hook1)
		domain.AcceptHook(hook2)

		pos := &HookPos{Name: "Pos"}
		domain.InvokeHook(HookCtx{Domain: domain, Pos: pos, Item: 1})

		Expect(domain.NumHooks()).To(Equal(2))
		Expect(domain.Hooks()).To(Equal([]Hook{hook1, hook2}))
		Expect(hook1.calls).To(HaveLen(1))
		Expect(hook2.calls[0].Item).To(Equal(1))
	})

	It("should panic on duplicated hooks", func() {
		hook := &countingHook{}
		domain.AcceptHook(hook)

		Expect(func() { domain.AcceptHook(hook) }).To(Panic())
	})

	It("should stop invoking removed hooks", func() {
		hook1 := &countingHook{}
		hook2 := &countingHook{}
		domain.AcceptHook(hook1)
		domain.AcceptHook(hook2)

		Expect(domain.RemoveHook(hook1)).To(BeTrue())
		Expect(domain.RemoveHook(hook1)).To(BeFalse())

		domain.InvokeHook(HookCtx{Domain: domain, Pos: &HookPos{Name: "Pos"}})

		Expect(hook1.calls).To(BeEmpty())
		Expect(hook2.calls).To(HaveLen(1))
		Expect(domain.Hooks()).To(Equal([]Hook{hook2}))
	})

	It("should let a hook attach another hook while invoked", func() {
		late := &countingHook{}
		var adder adderHook
		adder = func(HookCtx) {
			if domain.NumHooks() == 1 {
				domain.AcceptHook(late)
			}
		}
		domain.AcceptHook(&adder)

		domain.InvokeHook(HookCtx{Domain: domain, Pos: &HookPos{Name: "Pos"}})
		domain.InvokeHook(HookCtx{Domain: domain, Pos: &HookPos{Name: "Pos"}})

		Expect(late.calls).To(HaveLen(1))
	})
})

type adderHook func(HookCtx)

func (h *adderHook) Func(ctx HookCtx) {
	(*h)(ctx)
}

var _ = Describe("LogHook", func() {
	var (
		buf    *bytes.Buffer
		domain *namedDomain
		pos1   *HookPos
		pos2   *HookPos
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		domain = &namedDomain{}
		pos1 = &HookPos{Name: "EffectUpdate"}
		pos2 = &HookPos{Name: "FrameEnd"}
	})

	It("should print the hook site", func() {
		hook := NewLogHook(log.New(buf, "", 0))

		hook.Func(HookCtx{Domain: domain, Pos: pos1, Item: "slot 3", Detail: "mapped"})

		Expect(buf.String()).To(Equal("Renderer EffectUpdate slot 3: mapped\n"))
	})

	It("should only print the selected positions", func() {
		hook := NewLogHook(log.New(buf, "", 0), pos2)

		hook.Func(HookCtx{Domain: domain, Pos: pos1, Item: 1})
		hook.Func(HookCtx{Domain: domain, Pos: pos2, Item: 2})

		Expect(buf.String()).To(Equal("Renderer FrameEnd 2\n"))
	})
})
