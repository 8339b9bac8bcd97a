//go:build unix || linux || darwin || freebsd || openbsd || netbsd

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

func osMap(f *os.File, size int, writable bool) ([]byte, func([]byte) error, error) {
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}

	// MAP_SHARED so stores through a writable mapping reach the file.
	data, err := unix.Mmap(int(f.Fd()), 0, size, prot, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}

	return data, unix.Munmap, nil
}

func osSync(data []byte) error {
	return unix.Msync(data, unix.MS_SYNC)
}

func osAdvise(data []byte, pattern AccessPattern) error {
	if len(data) == 0 {
		return nil
	}

	var advice int
	switch pattern {
	case AccessSequential:
		advice = unix.MADV_SEQUENTIAL
	case AccessRandom:
		advice = unix.MADV_RANDOM
	case AccessWillNeed:
		advice = unix.MADV_WILLNEED
	case AccessDontNeed:
		advice = unix.MADV_DONTNEED
	default:
		advice = unix.MADV_NORMAL
	}

	// madvise requires page-aligned addresses on Linux. mmap always returns
	// page-aligned regions, but if the hint is rejected we silently succeed
	// since it is advisory and non-critical.
	err := unix.Madvise(data, advice)
	if err == unix.EINVAL {
		return nil
	}
	return err
}
