package effect

import (
	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/audren/behaviour"
	"github.com/sarchlab/audren/mem/pool"
	"go.uber.org/mock/gomock"
)

const dspOffset = 0x8000_0000

func attachOK(
	info *pool.AddressInfo,
	address, size uint64,
) (behaviour.ErrorInfo, bool) {
	info.Setup(address, size)
	info.ForceMap(dspOffset + address)

	return behaviour.ErrorInfo{}, true
}

func attachFail(
	info *pool.AddressInfo,
	address, size uint64,
) (behaviour.ErrorInfo, bool) {
	info.Setup(address, size)

	return behaviour.NewErrorInfo(behaviour.InvalidAddressInfo, address), false
}

func validPayload(kind Type) any {
	switch kind {
	case TypeAuxiliaryBuffer, TypeCaptureBuffer:
		return AuxiliaryBufferParameter{
			MixBufferCount:          2,
			SampleRate:              48000,
			BufferStorageSize:       0x100,
			SendBufferInfoAddress:   0x10000,
			ReturnBufferInfoAddress: 0x20000,
		}
	case TypeReverb:
		return ReverbParameter{ChannelCountMax: 2, ChannelCount: 2}
	case TypeReverb3d:
		return Reverb3dParameter{ChannelCountMax: 6, ChannelCount: 4}
	case TypeDelay:
		return DelayParameter{ChannelCountMax: 2, ChannelCount: 1}
	case TypeLimiter:
		return LimiterParameter{ChannelCountMax: 2, ChannelCount: 2}
	case TypeBiquadFilter:
		return BiquadFilterParameter{ChannelCount: 2}
	case TypeCompressor:
		return CompressorParameter{ChannelCountMax: 2, ChannelCount: 2}
	case TypeBufferMix:
		return BufferMixParameter{MixesCount: 1}
	default:
		return [0]byte{}
	}
}

func makeParameter(kind Type, isNew, isEnabled bool, payload any) InParameter {
	p := InParameter{
		Type:            kind,
		IsNew:           isNew,
		IsEnabled:       isEnabled,
		MixID:           3,
		ProcessingOrder: 7,
		BufferBase:      0x30000,
		BufferSize:      0x2000,
	}
	Expect(EncodeSpecific(&p, payload)).To(Succeed())

	return p
}

var allKinds = []Type{
	TypeBufferMix,
	TypeAuxiliaryBuffer,
	TypeDelay,
	TypeReverb,
	TypeReverb3d,
	TypeBiquadFilter,
	TypeLimiter,
	TypeCaptureBuffer,
	TypeCompressor,
}

var _ = ginkgo.Describe("Effect", func() {
	var (
		mockCtrl *gomock.Controller
		mapper   *MockBufferMapper
	)

	ginkgo.BeforeEach(func() {
		mockCtrl = gomock.NewController(ginkgo.GinkgoT())
		mapper = NewMockBufferMapper(mockCtrl)
	})

	ginkgo.AfterEach(func() {
		mockCtrl.Finish()
	})

	ginkgo.DescribeTable("creating slots",
		func(kind Type, workBufferCount int) {
			e, err := NewEffect(kind)

			Expect(err).NotTo(HaveOccurred())
			Expect(e.Type()).To(Equal(kind))
			Expect(e.Base().WorkBuffers).To(HaveLen(workBufferCount))
			Expect(e.Base().UsageState).To(Equal(UsageStateInvalid))
			Expect(e.Base().MixID).To(Equal(UnusedMixID))
		},
		ginkgo.Entry("invalid", TypeInvalid, 0),
		ginkgo.Entry("buffer mix", TypeBufferMix, 0),
		ginkgo.Entry("auxiliary buffer", TypeAuxiliaryBuffer, 2),
		ginkgo.Entry("capture buffer", TypeCaptureBuffer, 1),
		ginkgo.Entry("delay", TypeDelay, 1),
		ginkgo.Entry("reverb", TypeReverb, 1),
		ginkgo.Entry("reverb 3d", TypeReverb3d, 1),
		ginkgo.Entry("biquad filter", TypeBiquadFilter, 0),
		ginkgo.Entry("limiter", TypeLimiter, 1),
		ginkgo.Entry("compressor", TypeCompressor, 0),
	)

	ginkgo.It("should refuse unknown kinds", func() {
		_, err := NewEffect(Type(42))

		Expect(err).To(MatchError(ErrUnknownType))
	})

	ginkgo.It("should be disabled after command generation when not enabled", func() {
		mapper.EXPECT().
			TryAttachBuffer(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(attachOK).
			AnyTimes()

		for _, kind := range allKinds {
			e, _ := NewEffect(kind)
			p := makeParameter(kind, true, false, validPayload(kind))

			_, err := e.Update(&p, mapper)
			Expect(err).NotTo(HaveOccurred())

			e.UpdateForCommandGeneration()

			Expect(e.Base().UsageState).
				To(Equal(UsageStateDisabled), kind.String())
			Expect(e.StoreStatus(true)).To(Equal(StatusDisabled))
		}
	})

	ginkgo.It("should be enabled after command generation when mapped", func() {
		mapper.EXPECT().
			TryAttachBuffer(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(attachOK).
			AnyTimes()

		for _, kind := range allKinds {
			e, _ := NewEffect(kind)
			p := makeParameter(kind, true, true, validPayload(kind))

			e.Update(&p, mapper)
			e.UpdateForCommandGeneration()

			Expect(e.Base().UsageState).
				To(Equal(UsageStateEnabled), kind.String())
			Expect(e.Base().MixID).To(Equal(int32(3)))
			Expect(e.Base().ProcessingOrder).To(Equal(uint32(7)))
		}
	})

	ginkgo.It("should reject a record of another kind without changes", func() {
		e := NewReverbEffect()
		before := *e
		p := makeParameter(TypeDelay, true, true, validPayload(TypeDelay))

		_, err := e.Update(&p, mapper)

		Expect(err).To(MatchError(ErrTypeMismatch))
		Expect(*e).To(Equal(before))
		Expect(e.IsTypeValid(&p)).To(BeFalse())
	})

	ginkgo.It("should accept only invalid records in an invalid slot", func() {
		e := NewBaseEffect()
		p := InParameter{Type: TypeInvalid}

		_, err := e.Update(&p, mapper)
		Expect(err).NotTo(HaveOccurred())

		e.UpdateForCommandGeneration()
		Expect(e.UsageState).To(Equal(UsageStateInvalid))
		Expect(e.GetWorkBuffer(0)).To(BeZero())
	})

	ginkgo.DescribeTable("reporting the status",
		func(state UsageState, active bool, expected Status) {
			e := NewBaseEffect()
			e.UsageState = state

			Expect(e.StoreStatus(active)).To(Equal(expected))
		},
		ginkgo.Entry("active, new", UsageStateNew, true, StatusEnabled),
		ginkgo.Entry("active, enabled", UsageStateEnabled, true, StatusEnabled),
		ginkgo.Entry("active, disabled", UsageStateDisabled, true, StatusDisabled),
		ginkgo.Entry("inactive, new", UsageStateNew, false, StatusEnabled),
		ginkgo.Entry("inactive, enabled", UsageStateEnabled, false, StatusDisabled),
		ginkgo.Entry("inactive, disabled", UsageStateDisabled, false, StatusDisabled),
	)

	ginkgo.It("should only release mapped buffers", func() {
		e := NewAuxiliaryBufferEffect()
		attachOK(&e.WorkBuffers[1], 0x1000, 0x100)

		mapper.EXPECT().ForceUnmap(&e.WorkBuffers[1])

		e.ForceUnmapBuffers(mapper)
	})

	ginkgo.Context("auxiliary buffer", func() {
		var (
			e *AuxiliaryBufferEffect
			p InParameter
		)

		ginkgo.BeforeEach(func() {
			e = NewAuxiliaryBufferEffect()
			p = makeParameter(TypeAuxiliaryBuffer, true, true,
				validPayload(TypeAuxiliaryBuffer))
		})

		ginkgo.It("should attach both buffers with the storage and header size", func() {
			mapper.EXPECT().
				TryAttachBuffer(&e.WorkBuffers[0], uint64(0x10000), uint64(0x480)).
				DoAndReturn(attachOK)
			mapper.EXPECT().
				TryAttachBuffer(&e.WorkBuffers[1], uint64(0x20000), uint64(0x480)).
				DoAndReturn(attachOK)

			errorInfo, err := e.Update(&p, mapper)

			Expect(err).NotTo(HaveOccurred())
			Expect(errorInfo.IsError()).To(BeFalse())
			Expect(e.BufferUnmapped).To(BeFalse())
			Expect(e.UsageState).To(Equal(UsageStateNew))
			Expect(e.State).To(Equal(AuxiliaryBufferAddresses{
				SendBufferInfo:       dspOffset + 0x10040,
				SendBufferInfoBase:   dspOffset + 0x10080,
				ReturnBufferInfo:     dspOffset + 0x20040,
				ReturnBufferInfoBase: dspOffset + 0x20080,
			}))
		})

		ginkgo.It("should hand out distinct send and return buffers", func() {
			mapper.EXPECT().
				TryAttachBuffer(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(attachOK).
				Times(2)

			e.Update(&p, mapper)
			e.UpdateForCommandGeneration()

			send := e.GetWorkBuffer(0)
			ret := e.GetWorkBuffer(1)
			Expect(send).To(Equal(e.WorkBuffers[0].GetReference(false) +
				AuxiliaryBufferHeaderSize))
			Expect(ret).To(Equal(e.WorkBuffers[1].GetReference(false) +
				AuxiliaryBufferHeaderSize))
			Expect(send).NotTo(Equal(ret))
			Expect(e.GetWorkBuffer(2)).To(BeZero())
		})

		ginkgo.It("should stay mapped when only one buffer attaches", func() {
			mapper.EXPECT().
				TryAttachBuffer(&e.WorkBuffers[0], gomock.Any(), gomock.Any()).
				DoAndReturn(attachFail)
			mapper.EXPECT().
				TryAttachBuffer(&e.WorkBuffers[1], gomock.Any(), gomock.Any()).
				DoAndReturn(attachOK)

			errorInfo, _ := e.Update(&p, mapper)

			Expect(errorInfo.ErrorCode).To(Equal(behaviour.InvalidAddressInfo))
			Expect(errorInfo.ExtraErrorInfo).To(Equal(uint64(0x10000)))
			Expect(e.BufferUnmapped).To(BeFalse())
			Expect(e.GetWorkBuffer(0)).To(BeZero())
			Expect(e.GetWorkBuffer(1)).To(Equal(uint64(dspOffset + 0x20080)))
		})

		ginkgo.It("should be unmapped when no buffer attaches", func() {
			mapper.EXPECT().
				TryAttachBuffer(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(attachFail).
				Times(2)

			e.Update(&p, mapper)
			e.UpdateForCommandGeneration()

			Expect(e.BufferUnmapped).To(BeTrue())
			Expect(e.UsageState).To(Equal(UsageStateNew))
			Expect(e.State).To(Equal(AuxiliaryBufferAddresses{}))
		})

		ginkgo.It("should retry the attachment while unmapped", func() {
			mapper.EXPECT().
				TryAttachBuffer(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(attachFail).
				Times(2)
			e.Update(&p, mapper)

			mapper.EXPECT().
				TryAttachBuffer(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(attachOK).
				Times(2)
			p.IsNew = false
			e.Update(&p, mapper)
			e.UpdateForCommandGeneration()

			Expect(e.BufferUnmapped).To(BeFalse())
			Expect(e.UsageState).To(Equal(UsageStateEnabled))
		})
	})

	ginkgo.Context("capture buffer", func() {
		ginkgo.It("should attach only the send buffer", func() {
			e := NewCaptureBufferEffect()
			p := makeParameter(TypeCaptureBuffer, true, true,
				validPayload(TypeCaptureBuffer))

			mapper.EXPECT().
				TryAttachBuffer(&e.WorkBuffers[0], uint64(0x10000), uint64(0x480)).
				DoAndReturn(attachOK)

			e.Update(&p, mapper)
			e.UpdateForCommandGeneration()

			Expect(e.UsageState).To(Equal(UsageStateEnabled))
			Expect(e.GetWorkBuffer(0)).To(Equal(uint64(dspOffset + 0x10080)))
			Expect(e.GetWorkBuffer(1)).To(BeZero())
		})
	})

	ginkgo.Context("reverb", func() {
		var e *ReverbEffect

		ginkgo.BeforeEach(func() {
			e = NewReverbEffect()
		})

		enable := func() {
			mapper.EXPECT().
				TryAttachBuffer(&e.WorkBuffers[0], uint64(0x30000), uint64(0x2000)).
				DoAndReturn(attachOK)

			p := makeParameter(TypeReverb, true, true,
				ReverbParameter{ChannelCountMax: 2, ChannelCount: 2, DecayTime: 100})
			e.Update(&p, mapper)
			e.UpdateForCommandGeneration()
		}

		ginkgo.It("should become enabled once mapped", func() {
			enable()

			Expect(e.UsageState).To(Equal(UsageStateEnabled))
			Expect(e.Parameter.Status).To(Equal(UsageStateEnabled))
			Expect(e.GetWorkBuffer(0)).To(Equal(uint64(dspOffset + 0x30000)))
		})

		ginkgo.It("should drop a record with an invalid maximum channel count", func() {
			enable()
			before := *e

			p := makeParameter(TypeReverb, true, false,
				ReverbParameter{ChannelCountMax: 3, ChannelCount: 2, DecayTime: 9})
			p.MixID = 11
			_, err := e.Update(&p, mapper)

			Expect(err).NotTo(HaveOccurred())
			Expect(*e).To(Equal(before))
		})

		ginkgo.It("should copy but not apply a record with an invalid channel count",
			func() {
				p := makeParameter(TypeReverb, true, true,
					ReverbParameter{ChannelCountMax: 2, ChannelCount: 5})

				e.Update(&p, mapper)

				Expect(e.MixID).To(Equal(int32(3)))
				Expect(e.Parameter.ChannelCount).To(Equal(uint16(5)))
				Expect(e.IsEnabled).To(BeFalse())
				Expect(e.UsageState).To(Equal(UsageStateInvalid))
			})

		ginkgo.It("should go back to new right away on a remap", func() {
			enable()

			mapper.EXPECT().
				TryAttachBuffer(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(attachOK)
			p := makeParameter(TypeReverb, true, true, validPayload(TypeReverb))
			e.Update(&p, mapper)

			Expect(e.UsageState).To(Equal(UsageStateNew))
			Expect(e.Parameter.Status).To(Equal(UsageStateInvalid))
		})

		ginkgo.It("should keep a status that was not enabled", func() {
			e.Parameter.Status = UsageStateNew

			p := makeParameter(TypeReverb, false, true,
				ReverbParameter{
					ChannelCountMax: 2,
					ChannelCount:    2,
					Status:          UsageStateDisabled,
				})
			e.Update(&p, mapper)

			Expect(e.Parameter.Status).To(Equal(UsageStateNew))
		})

		ginkgo.It("should take the guest status over an enabled one", func() {
			enable()

			p := makeParameter(TypeReverb, false, true,
				ReverbParameter{
					ChannelCountMax: 2,
					ChannelCount:    2,
					Status:          UsageStateDisabled,
				})
			e.Update(&p, mapper)

			Expect(e.Parameter.Status).To(Equal(UsageStateDisabled))
		})

		ginkgo.It("should stay new while the buffer is unmapped", func() {
			mapper.EXPECT().
				TryAttachBuffer(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(attachFail)

			p := makeParameter(TypeReverb, true, true, validPayload(TypeReverb))
			errorInfo, _ := e.Update(&p, mapper)
			e.UpdateForCommandGeneration()

			Expect(errorInfo.ErrorCode).To(Equal(behaviour.InvalidAddressInfo))
			Expect(e.BufferUnmapped).To(BeTrue())
			Expect(e.UsageState).To(Equal(UsageStateNew))
			Expect(e.Parameter.Status).To(Equal(UsageStateInvalid))
			Expect(e.StoreStatus(false)).To(Equal(StatusEnabled))
		})

		ginkgo.It("should only hand out its buffer while enabled", func() {
			enable()

			p := makeParameter(TypeReverb, false, false, validPayload(TypeReverb))
			e.Update(&p, mapper)

			Expect(e.GetWorkBuffer(0)).To(BeZero())
		})

		ginkgo.It("should not change on repeated identical records", func() {
			enable()

			p := makeParameter(TypeReverb, false, true,
				ReverbParameter{ChannelCountMax: 2, ChannelCount: 2, DecayTime: 100})

			e.Update(&p, mapper)
			first := *e

			e.Update(&p, mapper)
			Expect(*e).To(Equal(first))

			e.Update(&p, mapper)
			Expect(*e).To(Equal(first))
		})
	})

	ginkgo.Context("limiter", func() {
		ginkgo.It("should report statistics only when enabled", func() {
			e := NewLimiterEffect()
			src := ResultState{}
			Expect(EncodeResultState(&src,
				LimiterStatistics{InputMax: [6]float32{0.5}})).To(Succeed())

			dst := ResultState{}
			e.UpdateResultState(&dst, &src)
			Expect(dst).To(Equal(ResultState{}))

			e.Parameter.StatisticsEnabled = true
			e.UpdateResultState(&dst, &src)

			stats, err := DecodeResultState[LimiterStatistics](&dst)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.InputMax[0]).To(Equal(float32(0.5)))

			e.InitializeResultState(&dst)
			Expect(dst).To(Equal(ResultState{}))
		})

		ginkgo.It("should clear a statistics reset after one frame", func() {
			e := NewLimiterEffect()
			e.Parameter.StatisticsReset = true

			e.UpdateForCommandGeneration()

			Expect(e.Parameter.StatisticsReset).To(BeFalse())
		})
	})

	ginkgo.Context("compressor", func() {
		ginkgo.It("should clear a statistics reset after one frame", func() {
			e := NewCompressorEffect()
			p := makeParameter(TypeCompressor, false, true,
				CompressorParameter{StatisticsReset: true})

			e.Update(&p, mapper)
			Expect(e.Parameter.StatisticsReset).To(BeTrue())

			e.UpdateForCommandGeneration()
			Expect(e.Parameter.StatisticsReset).To(BeFalse())
			Expect(e.Parameter.Status).To(Equal(UsageStateEnabled))
		})
	})
})
