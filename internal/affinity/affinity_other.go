//go:build !linux

package affinity

func setAffinity(int) error {
	return ErrUnsupported
}

// Current returns ErrUnsupported on this platform.
func Current() ([]int, error) {
	return nil, ErrUnsupported
}
