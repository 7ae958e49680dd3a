package pool

import (
	"cmp"
	"container/list"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Default layout of the DSP address space.
const (
	DefaultLog2PageSize uint64 = 12
	DefaultDSPBase      uint64 = 0x1_0000_0000
	DefaultDSPCapacity  uint64 = 0x1_0000_0000
)

var (
	// ErrInvalidRange is returned when mapping an empty or overflowing range.
	ErrInvalidRange = errors.New("invalid guest range")

	// ErrOutOfDSPSpace is returned when the DSP address space is exhausted.
	ErrOutOfDSPSpace = errors.New("DSP address space exhausted")

	// ErrPageNotMapped is returned when unmapping a page that is not mapped.
	ErrPageNotMapped = errors.New("page is not mapped")
)

// A Page is an entry of the page table. It links one guest page to one DSP
// page.
type Page struct {
	CPUAddress uint64
	DSPAddress uint64
}

// A PageTable is the DSP address space. Guest ranges are mapped page by page
// into a contiguous DSP range. Unmapped ranges are reused first-fit; fresh
// space is taken from the top only when no free extent is large enough.
type PageTable struct {
	sync.Mutex

	log2PageSize uint64
	base         uint64
	capacity     uint64
	next         uint64

	// free is sorted by start, coalesced, and always below next.
	free []extent

	entries      *list.List
	entriesTable map[uint64]*list.Element
}

// NewPageTable creates a DSP address space that starts at base and spans
// capacity bytes.
func NewPageTable(log2PageSize, base, capacity uint64) *PageTable {
	return &PageTable{
		log2PageSize: log2PageSize,
		base:         base,
		capacity:     capacity,
		next:         base,
		entries:      list.New(),
		entriesTable: make(map[uint64]*list.Element),
	}
}

// NewDefaultPageTable creates a DSP address space with the default layout.
func NewDefaultPageTable() *PageTable {
	return NewPageTable(DefaultLog2PageSize, DefaultDSPBase, DefaultDSPCapacity)
}

// PageSize returns the size of a page in bytes.
func (pt *PageTable) PageSize() uint64 {
	return 1 << pt.log2PageSize
}

func (pt *PageTable) alignDown(addr uint64) uint64 {
	return (addr >> pt.log2PageSize) << pt.log2PageSize
}

func (pt *PageTable) alignUp(addr uint64) uint64 {
	return pt.alignDown(addr + pt.PageSize() - 1)
}

// Map maps the guest range [cpuAddress, cpuAddress+size) and returns the DSP
// address of cpuAddress.
func (pt *PageTable) Map(cpuAddress, size uint64) (uint64, error) {
	end := cpuAddress + size
	if size == 0 || end < cpuAddress || end+pt.PageSize() < end {
		return 0, fmt.Errorf("%w: 0x%x+0x%x", ErrInvalidRange, cpuAddress, size)
	}

	pt.Lock()
	defer pt.Unlock()

	cpuStart := pt.alignDown(cpuAddress)
	cpuEnd := pt.alignUp(end)
	length := cpuEnd - cpuStart

	dspStart, ok := pt.reserve(length)
	if !ok {
		return 0, fmt.Errorf("%w: 0x%x bytes requested", ErrOutOfDSPSpace, length)
	}

	for offset := uint64(0); offset < length; offset += pt.PageSize() {
		page := Page{
			CPUAddress: cpuStart + offset,
			DSPAddress: dspStart + offset,
		}
		elem := pt.entries.PushBack(page)
		pt.entriesTable[page.DSPAddress] = elem
	}

	return dspStart + (cpuAddress - cpuStart), nil
}

type extent struct {
	start  uint64
	length uint64
}

func (e extent) end() uint64 {
	return e.start + e.length
}

func (pt *PageTable) reserve(length uint64) (uint64, bool) {
	for i, e := range pt.free {
		if e.length < length {
			continue
		}

		if e.length == length {
			pt.free = slices.Delete(pt.free, i, i+1)
		} else {
			pt.free[i] = extent{start: e.start + length, length: e.length - length}
		}

		return e.start, true
	}

	if pt.base+pt.capacity-pt.next < length {
		return 0, false
	}

	start := pt.next
	pt.next += length

	return start, true
}

func (pt *PageTable) release(start, length uint64) {
	i, _ := slices.BinarySearchFunc(pt.free, start,
		func(e extent, target uint64) int { return cmp.Compare(e.start, target) })
	pt.free = slices.Insert(pt.free, i, extent{start: start, length: length})

	if i+1 < len(pt.free) && pt.free[i].end() == pt.free[i+1].start {
		pt.free[i].length += pt.free[i+1].length
		pt.free = slices.Delete(pt.free, i+1, i+2)
	}

	if i > 0 && pt.free[i-1].end() == pt.free[i].start {
		pt.free[i-1].length += pt.free[i].length
		pt.free = slices.Delete(pt.free, i, i+1)
	}

	last := pt.free[len(pt.free)-1]
	if last.end() == pt.next {
		pt.next = last.start
		pt.free = pt.free[:len(pt.free)-1]
	}
}

// Unmap removes the pages that back [dspAddress, dspAddress+size) and makes
// their DSP range available again. Every page must be mapped; otherwise
// nothing is removed.
func (pt *PageTable) Unmap(dspAddress, size uint64) error {
	if size == 0 {
		size = 1
	}

	pt.Lock()
	defer pt.Unlock()

	start := pt.alignDown(dspAddress)
	end := pt.alignUp(dspAddress + size)

	for addr := start; addr < end; addr += pt.PageSize() {
		if _, found := pt.entriesTable[addr]; !found {
			return fmt.Errorf("%w: 0x%x", ErrPageNotMapped, addr)
		}
	}

	for addr := start; addr < end; addr += pt.PageSize() {
		elem := pt.entriesTable[addr]
		pt.entries.Remove(elem)
		delete(pt.entriesTable, addr)
	}

	pt.release(start, end-start)

	return nil
}

// Find returns the page that contains the given DSP address.
func (pt *PageTable) Find(dspAddress uint64) (Page, bool) {
	pt.Lock()
	defer pt.Unlock()

	elem, found := pt.entriesTable[pt.alignDown(dspAddress)]
	if !found {
		return Page{}, false
	}

	return elem.Value.(Page), true
}

// TranslateToCPU converts a DSP address back into the guest address it
// mirrors.
func (pt *PageTable) TranslateToCPU(dspAddress uint64) (uint64, bool) {
	page, found := pt.Find(dspAddress)
	if !found {
		return 0, false
	}

	return page.CPUAddress + (dspAddress - page.DSPAddress), true
}

// MappedPageCount returns the number of pages currently mapped.
func (pt *PageTable) MappedPageCount() int {
	pt.Lock()
	defer pt.Unlock()

	return pt.entries.Len()
}

// Pages returns a snapshot of all the mapped pages in mapping order.
func (pt *PageTable) Pages() []Page {
	pt.Lock()
	defer pt.Unlock()

	pages := make([]Page, 0, pt.entries.Len())
	for elem := pt.entries.Front(); elem != nil; elem = elem.Next() {
		pages = append(pages, elem.Value.(Page))
	}

	return pages
}
