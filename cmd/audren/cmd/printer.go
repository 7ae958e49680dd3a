package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/audren/monitoring"
	"github.com/sarchlab/audren/renderer"
)

// framePrinter is a renderer.CommandSink that prints the command view of
// every frame.
type framePrinter struct {
	out      io.Writer
	progress *monitoring.ProgressBar
	failures int
}

func (p *framePrinter) Consume(result renderer.FrameResult) {
	if p.progress != nil {
		p.progress.FrameDone(result.Err != nil)
	}

	if result.Err != nil {
		p.failures++
		fmt.Fprintf(p.out, "frame %d: update failed: %v\n",
			result.Frame, result.Err)
	}

	fmt.Fprintf(p.out, "frame %d: %d commands\n",
		result.Frame, len(result.Commands))

	for _, c := range result.Commands {
		buffers := make([]string, len(c.WorkBuffers))
		for i, b := range c.WorkBuffers {
			buffers[i] = fmt.Sprintf("0x%x", b)
		}

		fmt.Fprintf(p.out, "  mix %d order %d slot %d %s %s [%s]\n",
			c.MixID, c.ProcessingOrder, c.Index, c.Type, c.UsageState,
			strings.Join(buffers, " "))
	}
}
