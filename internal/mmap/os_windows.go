//go:build windows

package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

func osMap(f *os.File, size int, writable bool) ([]byte, func([]byte) error, error) {
	prot := uint32(windows.PAGE_READONLY)
	access := uint32(windows.FILE_MAP_READ)
	if writable {
		prot = windows.PAGE_READWRITE
		access = windows.FILE_MAP_WRITE
	}

	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, prot, 0, 0, nil)
	if err != nil {
		return nil, nil, err
	}
	// The view holds a reference, so the mapping handle can be closed now.
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, access, 0, 0, uintptr(size))
	if err != nil {
		return nil, nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)

	return data, func(b []byte) error {
		// Capture addr in the closure rather than reconstructing it from the
		// slice.
		return windows.UnmapViewOfFile(addr)
	}, nil
}

func osSync(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&data[0]))
	if err := windows.FlushViewOfFile(addr, uintptr(len(data))); err != nil {
		return err
	}
	return nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	// Windows has no direct madvise equivalent. PrefetchVirtualMemory could
	// back AccessWillNeed on Windows 8+, but the OS page cache already does
	// well for the engine's access patterns, so this is a no-op.
	_ = data
	_ = pattern
	return nil
}
