package cu

import "fmt"

// New builds the named variant ("mm-0", "mm-1", "mm-2", "mm-3") for the
// given widths, the single switchboard the loader and CLI use so callers
// never construct a concrete variant type directly.
func New(name string, cfg Config) (Variant, error) {
	switch name {
	case "mm-0":
		return NewZeroAddress(cfg), nil
	case "mm-1":
		return NewOneAddress(cfg), nil
	case "mm-2":
		return NewTwoAddress(cfg), nil
	case "mm-3":
		return NewThreeAddress(cfg), nil
	default:
		return nil, fmt.Errorf("cu: unknown variant %q", name)
	}
}
