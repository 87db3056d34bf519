package dispensa

import (
	"encoding/binary"
	"math/rand/v2"
)

// Chance reports true with the given probability, deterministic per seed.
func Chance(seed uint64, probability float64) bool {
	var seedBytes [32]byte
	binary.LittleEndian.PutUint64(seedBytes[0:8], seed)
	rand := rand.New(rand.NewChaCha8(seedBytes))

	return rand.Float64() < probability
}
