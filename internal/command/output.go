package command

import "bytes"

// binarySampleSize matches Git's heuristic for spotting binary output.
const binarySampleSize = 8000

// collector captures command output up to a size limit and drops binary output.
type collector struct {
	buffer    bytes.Buffer
	maxBytes  int
	truncated bool
	isBinary  bool
	checked   int
}

func newCollector(maxBytes int) *collector {
	return &collector{maxBytes: maxBytes}
}

func (c *collector) Write(p []byte) (int, error) {
	if c.isBinary {
		return len(p), nil
	}

	if c.checked < binarySampleSize {
		sample := p
		if remaining := binarySampleSize - c.checked; len(sample) > remaining {
			sample = sample[:remaining]
		}
		if bytes.IndexByte(sample, 0) >= 0 {
			c.isBinary = true
			c.truncated = true
			return len(p), nil
		}
		c.checked += len(sample)
	}

	remainingSpace := c.maxBytes - c.buffer.Len()
	if remainingSpace <= 0 {
		c.truncated = true
		return len(p), nil
	}

	toWrite := p
	if len(toWrite) > remainingSpace {
		toWrite = toWrite[:remainingSpace]
		c.truncated = true
	}

	if _, err := c.buffer.Write(toWrite); err != nil {
		return 0, err
	}

	return len(p), nil
}

func (c *collector) String() string {
	if c.isBinary {
		return "[Binary Content]"
	}
	return c.buffer.String()
}

func (c *collector) Truncated() bool {
	return c.truncated
}
