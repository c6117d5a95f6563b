package chat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// pairKeySeparator joins the two participant ids of a canonical room identifier.
const pairKeySeparator = "_"

var (
	ErrInvalidPairKey  = errors.New("invalid room identifier")
	ErrSameParticipant = errors.New("a room needs two distinct participants")
)

// PairKey is the order-independent identity of a two-party room.
// Low is always strictly smaller than High.
type PairKey struct {
	Low  int64
	High int64
}

// NewPairKey orders the two participant ids so that NewPairKey(a, b) == NewPairKey(b, a).
func NewPairKey(a, b int64) (PairKey, error) {
	if a == b {
		return PairKey{}, ErrSameParticipant
	}
	if a > b {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}, nil
}

// ParsePairKey parses the canonical "<low>_<high>" identifier.
// Reversed pairs ("12_7") are accepted and canonicalized; anything else is rejected.
func ParsePairKey(s string) (PairKey, error) {
	parts := strings.Split(strings.TrimSpace(s), pairKeySeparator)
	if len(parts) != 2 {
		return PairKey{}, fmt.Errorf("%w: %q", ErrInvalidPairKey, s)
	}

	a, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return PairKey{}, fmt.Errorf("%w: %q", ErrInvalidPairKey, s)
	}
	b, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return PairKey{}, fmt.Errorf("%w: %q", ErrInvalidPairKey, s)
	}

	key, err := NewPairKey(a, b)
	if err != nil {
		return PairKey{}, fmt.Errorf("%w: %q", ErrInvalidPairKey, s)
	}
	return key, nil
}

func (k PairKey) String() string {
	return strconv.FormatInt(k.Low, 10) + pairKeySeparator + strconv.FormatInt(k.High, 10)
}

// Has reports whether id is one of the two participants.
func (k PairKey) Has(id int64) bool {
	return k.Low == id || k.High == id
}

// Other returns the participant that is not id.
func (k PairKey) Other(id int64) int64 {
	if k.Low == id {
		return k.High
	}
	return k.Low
}
