/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package allocator

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// slowTier is a file-backed, memory-mapped arena standing in for the
// device-DAX / CXL-attached region the original system binds through a C
// allocator (original_source/src/allocator.rs, memkind's
// MEMKIND_DAX_KMEM). It is opened lazily, exactly once (spec §6.3), and
// serves allocations with a simple first-fit free list over the mapped
// bytes.
type slowTier struct {
	mu   sync.Mutex
	file *os.File
	data []byte
	bump int
	free []block
}

type block struct {
	offset int
	length int
}

// openSlowTier creates (if needed) and mmaps a fixed-capacity backing
// file at path. Capacity must be large enough to hold every slow-tier
// allocation for the life of the process; there is no growth.
func openSlowTier(path string, capacity int64) (*slowTier, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("allocator: open slow tier backing file: %w", err)
	}

	if err = f.Truncate(capacity); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("allocator: size slow tier backing file: %w", err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(capacity), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("allocator: mmap slow tier backing file: %w", err)
	}

	return &slowTier{file: f, data: data}, nil
}

// slowHeaderLen is the length of the header written before every slow-tier
// block: one tier-tag byte, then an 8-byte little-endian payload length
// used to reclaim the block on free. Padded to headerSize.
const slowHeaderLen = 9

func (s *slowTier) alloc(n uint32) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := headerSize + int(n)

	if off, ok := s.takeFree(total); ok {
		return s.writeHeader(off, n), nil
	}

	if s.bump+total > len(s.data) {
		return nil, fmt.Errorf("allocator: slow tier exhausted (capacity %d bytes)", len(s.data))
	}

	off := s.bump
	s.bump += total

	return s.writeHeader(off, n), nil
}

func (s *slowTier) writeHeader(off int, n uint32) []byte {
	s.data[off] = byte(tierSlow)
	binary.LittleEndian.PutUint64(s.data[off+1:off+1+8], uint64(n))
	return s.data[off+headerSize : off+headerSize+int(n)]
}

func (s *slowTier) takeFree(total int) (int, bool) {
	for i, b := range s.free {
		if b.length >= total {
			s.free = append(s.free[:i], s.free[i+1:]...)
			if b.length > total {
				s.free = append(s.free, block{offset: b.offset + total, length: b.length - total})
			}
			return b.offset, true
		}
	}
	return 0, false
}

func (s *slowTier) free(b []byte) {
	if len(b) == 0 {
		return
	}

	off := int(uintptr(unsafe.Pointer(&b[0])) - uintptr(unsafe.Pointer(&s.data[0]))) - headerSize
	n := binary.LittleEndian.Uint64(s.data[off+1 : off+1+8])

	s.mu.Lock()
	s.free = append(s.free, block{offset: off, length: headerSize + int(n)})
	s.coalesce()
	s.mu.Unlock()
}

// coalesce merges adjacent free blocks to keep fragmentation bounded.
func (s *slowTier) coalesce() {
	if len(s.free) < 2 {
		return
	}

	sort.Slice(s.free, func(i, j int) bool { return s.free[i].offset < s.free[j].offset })

	merged := s.free[:1]
	for _, b := range s.free[1:] {
		last := &merged[len(merged)-1]
		if last.offset+last.length == b.offset {
			last.length += b.length
		} else {
			merged = append(merged, b)
		}
	}

	s.free = merged
}

func (s *slowTier) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := unix.Munmap(s.data); err != nil {
		return fmt.Errorf("allocator: munmap slow tier: %w", err)
	}

	return s.file.Close()
}
