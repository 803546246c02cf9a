package brew

import "codeberg.org/rwein/barpoll/internal/errors"

const (
	// DefaultListInitial is the starting capacity of the package list buffer.
	DefaultListInitial = 1024
	// DefaultListCeiling is the hard cap the buffer never grows beyond.
	DefaultListCeiling = 16384
)

// PackageList accumulates package names into a single comma-joined byte
// buffer. Capacity doubles on demand up to a hard ceiling; hitting the
// ceiling is a typed error, and the names appended so far stay intact.
type PackageList struct {
	data     []byte
	capacity int
	ceiling  int
}

func NewPackageList(initial, ceiling int) *PackageList {
	if initial <= 0 {
		initial = DefaultListInitial
	}
	if ceiling < initial {
		ceiling = DefaultListCeiling
	}

	return &PackageList{
		data:     make([]byte, 0, initial),
		capacity: initial,
		ceiling:  ceiling,
	}
}

// Append adds one package name, comma-separated from the previous one.
func (l *PackageList) Append(name string) error {
	errFactory := errors.New()

	needed := len(l.data) + len(name)
	if len(l.data) > 0 {
		needed++ // separator
	}

	if needed > l.ceiling {
		return errFactory.WithData(ErrBufferOverflow, name)
	}

	if needed > l.capacity {
		newCap := l.capacity
		for newCap < needed {
			if newCap > l.ceiling/2 {
				newCap = l.ceiling
				break
			}
			newCap *= 2
		}

		grown := make([]byte, len(l.data), newCap)
		copy(grown, l.data)
		l.data = grown
		l.capacity = newCap
	}

	if len(l.data) > 0 {
		l.data = append(l.data, ',')
	}
	l.data = append(l.data, name...)

	return nil
}

// Reset empties the list while keeping the allocated capacity.
func (l *PackageList) Reset() {
	l.data = l.data[:0]
}

// String returns the comma-joined name list.
func (l *PackageList) String() string {
	return string(l.data)
}

// Len returns the number of bytes in use.
func (l *PackageList) Len() int {
	return len(l.data)
}

// Cap returns the current buffer capacity.
func (l *PackageList) Cap() int {
	return l.capacity
}
