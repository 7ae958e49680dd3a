// Package scenario describes a guest session in YAML and turns it into the
// update blobs the guest would send, one per frame.
//
// A scenario lists the renderer configuration and a sequence of frames. Each
// frame changes some pool and effect records. Records that a frame does not
// mention keep their previous content, as the guest keeps its parameter
// buffers between frames. The kind-specific payload of an effect is given
// under params with lower-cased field names, for example
//
//	params:
//	  channelcountmax: 2
//	  channelcount: 2
package scenario

import (
	"fmt"
	"os"

	"github.com/sarchlab/audren/behaviour"
	"github.com/sarchlab/audren/effect"
	"github.com/sarchlab/audren/renderer"
	"gopkg.in/yaml.v3"
)

// Scenario is the content of a scenario file.
type Scenario struct {
	Name              string  `yaml:"name"`
	Revision          int32   `yaml:"revision"`
	EffectCount       uint32  `yaml:"effect_count"`
	VoiceCount        uint32  `yaml:"voice_count"`
	WorkBufferAddress uint64  `yaml:"work_buffer_address"`
	ForceMapping      bool    `yaml:"force_mapping"`
	Frames            []Frame `yaml:"frames"`
}

// Frame is a change of the guest records. It is sent Repeat times, at least
// once.
type Frame struct {
	Repeat  int            `yaml:"repeat"`
	Pools   []PoolRequest  `yaml:"pools"`
	Effects []EffectRecord `yaml:"effects"`
}

// PoolRequest asks for a memory pool to be attached or detached.
type PoolRequest struct {
	Index   int    `yaml:"index"`
	Action  string `yaml:"action"`
	Address uint64 `yaml:"address"`
	Size    uint64 `yaml:"size"`
}

// EffectRecord replaces the record of one effect slot.
type EffectRecord struct {
	Index      int       `yaml:"index"`
	Type       string    `yaml:"type"`
	New        bool      `yaml:"new"`
	Enabled    bool      `yaml:"enabled"`
	MixID      int32     `yaml:"mix_id"`
	Order      uint32    `yaml:"order"`
	Buffer     uint64    `yaml:"buffer"`
	BufferSize uint64    `yaml:"buffer_size"`
	Params     yaml.Node `yaml:"params"`
}

// Pool actions.
const (
	ActionAttach = "attach"
	ActionDetach = "detach"
)

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	s := &Scenario{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scenario) validate() error {
	if !behaviour.CheckValidRevision(behaviour.MakeRevision(s.Revision)) {
		return fmt.Errorf("unknown revision %d", s.Revision)
	}

	poolCount := int(s.Config().MemoryPoolCount())

	for i, f := range s.Frames {
		if f.Repeat < 0 {
			return fmt.Errorf("frame %d: negative repeat", i)
		}

		for _, p := range f.Pools {
			if p.Index < 0 || p.Index >= poolCount {
				return fmt.Errorf("frame %d: pool %d out of range [0, %d)",
					i, p.Index, poolCount)
			}

			if p.Action != ActionAttach && p.Action != ActionDetach {
				return fmt.Errorf("frame %d: unknown pool action %q",
					i, p.Action)
			}
		}

		for _, e := range f.Effects {
			if e.Index < 0 || e.Index >= int(s.EffectCount) {
				return fmt.Errorf("frame %d: effect %d out of range [0, %d)",
					i, e.Index, s.EffectCount)
			}

			if _, err := effect.ParseType(e.Type); err != nil {
				return fmt.Errorf("frame %d: effect %d: %w", i, e.Index, err)
			}
		}
	}

	return nil
}

// Config returns the renderer configuration of the scenario.
func (s *Scenario) Config() renderer.Config {
	return renderer.Config{
		Revision:          behaviour.MakeRevision(s.Revision),
		EffectCount:       s.EffectCount,
		VoiceCount:        s.VoiceCount,
		WorkBufferAddress: s.WorkBufferAddress,
	}
}

// FrameCount returns the number of update blobs the scenario produces.
func (s *Scenario) FrameCount() uint64 {
	var n uint64
	for _, f := range s.Frames {
		n += uint64(max(f.Repeat, 1))
	}

	return n
}
