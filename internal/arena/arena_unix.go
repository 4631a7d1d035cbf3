//go:build linux || darwin || freebsd

package arena

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Reserve maps size bytes of zeroed, page-backed anonymous memory.
func Reserve(size int) (*Region, error) {
	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("arena: cannot map %d bytes: %w", size, err)
	}
	return &Region{data: data, mapped: true}, nil
}

// Release unmaps the region.
func (r *Region) Release() error {
	if !r.mapped {
		r.data = nil
		return nil
	}
	data := r.data
	r.data = nil
	r.mapped = false
	return unix.Munmap(data)
}
