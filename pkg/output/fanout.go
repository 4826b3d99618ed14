package output

import (
	"sync"

	"github.com/pkg/errors"
)

// FanOutOutput writes every batch to all outputs in parallel.
type FanOutOutput struct {
	outputs []Output
}

// NewFanOutOutput creates an output that writes to all of outputs.
func NewFanOutOutput(outputs ...Output) *FanOutOutput {
	return &FanOutOutput{
		outputs: outputs,
	}
}

// WriteBatch waits for all outputs and reports the first failure.
func (f *FanOutOutput) WriteBatch(msgs [][]byte) error {
	if len(f.outputs) == 1 {
		return f.outputs[0].WriteBatch(msgs)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(f.outputs))
	for i, out := range f.outputs {
		wg.Add(1)
		go func(idx int, o Output) {
			defer wg.Done()
			errs[idx] = o.WriteBatch(msgs)
		}(i, out)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return errors.Wrapf(err, "output %d", i)
		}
	}
	return nil
}
