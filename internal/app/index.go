package app

import (
	"sort"
	"time"
)

// AddressIndex groups event timestamps by source address for one scan.
//
// Timestamps are appended in arrival order. Sort must be called before the
// timelines are scanned; file order is not guaranteed to be time order.
type AddressIndex struct {
	timelines map[string][]time.Time
	sorted    bool
}

func NewAddressIndex() *AddressIndex {
	return &AddressIndex{timelines: make(map[string][]time.Time)}
}

// Insert appends a timestamp to the address's timeline. Duplicates are kept.
func (x *AddressIndex) Insert(address string, ts time.Time) {
	x.timelines[address] = append(x.timelines[address], ts)
	x.sorted = false
}

// Sort orders every timeline ascending.
func (x *AddressIndex) Sort() {
	for _, ts := range x.timelines {
		sort.SliceStable(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
	}
	x.sorted = true
}

func (x *AddressIndex) Sorted() bool {
	return x.sorted
}

// Len returns the number of unique addresses.
func (x *AddressIndex) Len() int {
	return len(x.timelines)
}

// Timeline returns the timestamps recorded for an address.
func (x *AddressIndex) Timeline(address string) []time.Time {
	return x.timelines[address]
}

// Addresses returns all indexed addresses in lexical order so that later
// stages visit them deterministically.
func (x *AddressIndex) Addresses() []string {
	out := make([]string, 0, len(x.timelines))
	for addr := range x.timelines {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}
