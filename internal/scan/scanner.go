// Package scan implements the destructive write/verify surface scan.
// It writes a sequence of fixed bit patterns across the addressable
// range of a device and reads every block back, recording blocks whose
// contents do not verify.
package scan

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Patterns are the four bit patterns written in fixed order. The
// alternating patterns exercise stuck bits and adjacent-bit coupling,
// the solid patterns exercise each cell state.
var Patterns = [4]byte{0xAA, 0x55, 0xFF, 0x00}

// Policy controls behavior once a bad block is found
type Policy int

const (
	// StopOnFirstError ends the scan at the first bad block; later
	// patterns are not written.
	StopOnFirstError Policy = iota
	// FullPass scans every pattern to completion so the complete
	// defect list is captured.
	FullPass
)

// Target is the device under scan. A block device satisfies it via
// *os.File.
type Target interface {
	io.ReaderAt
	io.WriterAt
}

// Config sizes the scan I/O
type Config struct {
	BlockSize   int   // bytes per block
	BatchBlocks int   // blocks per I/O request
	Limit       int64 // bytes to scan; 0 means the full device size
}

// Snapshot is a point-in-time view of scan progress, safe to read
// while the scan runs
type Snapshot struct {
	Percent         int
	PatternIndex    int // index into Patterns of the current sub-pass
	PatternsScanned int // fully completed sub-passes
	BadBlocks       int64
	Done            bool
}

// Scanner drives one write/verify scan over a target. The I/O loop
// runs in a single goroutine started by Start; Progress reads a
// guarded snapshot.
type Scanner struct {
	dev    Target
	size   int64
	cfg    Config
	policy Policy
	logf   func(format string, v ...any)

	mu      sync.Mutex
	snap    Snapshot
	badSet  map[int64]struct{}
	badList []int64
	doneCh  chan struct{}
}

// New creates a scanner over dev, whose addressable range is size
// bytes. logf may be nil.
func New(dev Target, size int64, cfg Config, policy Policy, logf func(format string, v ...any)) *Scanner {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Scanner{
		dev:    dev,
		size:   size,
		cfg:    cfg,
		policy: policy,
		logf:   logf,
		badSet: make(map[int64]struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the scan in a background goroutine
func (s *Scanner) Start() error {
	if s.cfg.BlockSize <= 0 || s.cfg.BatchBlocks <= 0 {
		return fmt.Errorf("invalid scan geometry: block size %d, batch %d", s.cfg.BlockSize, s.cfg.BatchBlocks)
	}
	if s.span() <= 0 {
		return fmt.Errorf("nothing to scan: device size %d", s.size)
	}
	go s.run()
	return nil
}

// Progress returns the current scan state
func (s *Scanner) Progress() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Wait blocks until the scan goroutine has finished
func (s *Scanner) Wait() {
	<-s.doneCh
}

// BadBlockList returns the sorted block numbers that failed
// verification. Call after the scan is done.
func (s *Scanner) BadBlockList() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.badList))
	copy(out, s.badList)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// span is the number of bytes actually scanned
func (s *Scanner) span() int64 {
	if s.cfg.Limit > 0 && s.cfg.Limit < s.size {
		return s.cfg.Limit
	}
	return s.size
}

func (s *Scanner) run() {
	defer close(s.doneCh)

	span := s.span()
	// Each pattern is one write pass plus one verify pass.
	totalBytes := span * int64(len(Patterns)) * 2
	var processed int64

	for idx, pattern := range Patterns {
		s.setPattern(idx)
		s.logf("Scan pattern 0x%02X (%d/%d): writing", pattern, idx+1, len(Patterns))

		stop := s.writePass(pattern, span, &processed, totalBytes)
		if !stop {
			s.logf("Scan pattern 0x%02X (%d/%d): verifying", pattern, idx+1, len(Patterns))
			stop = s.verifyPass(pattern, span, &processed, totalBytes)
		}
		if stop {
			s.finish()
			return
		}
		s.patternDone()
	}
	s.finish()
}

// writePass writes the pattern across the span. Returns true when the
// scan should stop early.
func (s *Scanner) writePass(pattern byte, span int64, processed *int64, total int64) bool {
	batch := s.patternBatch(pattern)
	for off := int64(0); off < span; off += int64(len(batch)) {
		chunk := batch
		if remaining := span - off; remaining < int64(len(batch)) {
			chunk = batch[:remaining]
		}
		if _, err := s.dev.WriteAt(chunk, off); err != nil {
			s.logf("Write error at offset %d: %v", off, err)
			if s.recordBatchBad(off, int64(len(chunk))) {
				return true
			}
		}
		*processed += int64(len(chunk))
		s.setPercent(*processed, total)
	}
	return false
}

// verifyPass reads the span back and compares each block against the
// pattern. Returns true when the scan should stop early.
func (s *Scanner) verifyPass(pattern byte, span int64, processed *int64, total int64) bool {
	want := s.patternBatch(pattern)
	buf := make([]byte, len(want))
	for off := int64(0); off < span; off += int64(len(buf)) {
		chunkLen := int64(len(buf))
		if remaining := span - off; remaining < chunkLen {
			chunkLen = remaining
		}
		chunk := buf[:chunkLen]

		if _, err := s.dev.ReadAt(chunk, off); err != nil {
			s.logf("Read error at offset %d: %v", off, err)
			if s.recordBatchBad(off, chunkLen) {
				return true
			}
			*processed += chunkLen
			s.setPercent(*processed, total)
			continue
		}

		if stop := s.verifyBlocks(chunk, want[:chunkLen], off); stop {
			return true
		}
		*processed += chunkLen
		s.setPercent(*processed, total)
	}
	return false
}

// verifyBlocks compares one batch block by block so bad blocks are
// reported at block granularity
func (s *Scanner) verifyBlocks(got, want []byte, batchOff int64) bool {
	bs := int64(s.cfg.BlockSize)
	for rel := int64(0); rel < int64(len(got)); rel += bs {
		end := rel + bs
		if end > int64(len(got)) {
			end = int64(len(got))
		}
		if !bytes.Equal(got[rel:end], want[rel:end]) {
			block := (batchOff + rel) / bs
			s.logf("Bad block %d (offset %d)", block, batchOff+rel)
			if s.recordBad(block) {
				return true
			}
		}
	}
	return false
}

// recordBatchBad marks every block in a failed batch bad. Returns true
// when the policy says to stop.
func (s *Scanner) recordBatchBad(off, length int64) bool {
	bs := int64(s.cfg.BlockSize)
	for rel := int64(0); rel < length; rel += bs {
		if s.recordBad((off + rel) / bs) {
			return true
		}
	}
	return false
}

// recordBad registers a bad block. Returns true when the policy says
// to stop scanning.
func (s *Scanner) recordBad(block int64) bool {
	s.mu.Lock()
	if _, seen := s.badSet[block]; !seen {
		s.badSet[block] = struct{}{}
		s.badList = append(s.badList, block)
		s.snap.BadBlocks = int64(len(s.badList))
	}
	stop := s.policy == StopOnFirstError
	s.mu.Unlock()
	return stop
}

func (s *Scanner) setPattern(idx int) {
	s.mu.Lock()
	s.snap.PatternIndex = idx
	s.mu.Unlock()
}

func (s *Scanner) patternDone() {
	s.mu.Lock()
	s.snap.PatternsScanned++
	s.mu.Unlock()
}

func (s *Scanner) setPercent(processed, total int64) {
	s.mu.Lock()
	s.snap.Percent = int(processed * 100 / total)
	s.mu.Unlock()
}

func (s *Scanner) finish() {
	s.mu.Lock()
	s.snap.Done = true
	s.mu.Unlock()
}

// patternBatch builds one I/O buffer filled with the pattern
func (s *Scanner) patternBatch(pattern byte) []byte {
	batch := make([]byte, s.cfg.BlockSize*s.cfg.BatchBlocks)
	for i := range batch {
		batch[i] = pattern
	}
	return batch
}
