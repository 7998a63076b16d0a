package keypoints

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/robotics-cluedo/cluedo/vision/keypoints/descriptors"
)

// LSHConfig holds the parameters of the locality sensitive hashing index.
type LSHConfig struct {
	TableNumber     int `json:"table_number"`
	KeySize         int `json:"key_size"`
	MultiProbeLevel int `json:"multi_probe_level"`
}

// DefaultLSHConfig is the usual setting for 256 bit ORB descriptors.
var DefaultLSHConfig = LSHConfig{TableNumber: 6, KeySize: 12, MultiProbeLevel: 1}

// Validate ensures all parts of the LSHConfig are valid.
func (config *LSHConfig) Validate(path string) error {
	if config.TableNumber < 1 {
		return goutils.NewConfigValidationError(path, errors.New("table_number should be >= 1"))
	}
	if config.KeySize < 1 || config.KeySize > 32 {
		return goutils.NewConfigValidationError(path, errors.New("key_size should be in [1, 32]"))
	}
	if config.MultiProbeLevel < 0 || config.MultiProbeLevel > 2 {
		return goutils.NewConfigValidationError(path, errors.New("multi_probe_level should be in [0, 2]"))
	}
	return nil
}

type lshTable struct {
	bits    []int
	buckets map[uint32][]int
}

func (t *lshTable) key(d descriptors.Descriptor) uint32 {
	var k uint32
	for i, b := range t.bits {
		if d.Bit(b) {
			k |= 1 << i
		}
	}
	return k
}

// LSHIndex answers approximate Hamming nearest neighbor queries over a fixed descriptor set. Each
// table hashes descriptors on a random subset of their bits; neighbors are searched among the
// descriptors sharing a bucket with the query, or a bucket a few bits away when multi-probing.
type LSHIndex struct {
	cfg    LSHConfig
	descs  descriptors.Descriptors
	tables []*lshTable
	probes []uint32
}

// NewLSHIndex indexes descs. The hashed bits are drawn from rng.
func NewLSHIndex(descs descriptors.Descriptors, cfg LSHConfig, rng *rand.Rand) (*LSHIndex, error) {
	if err := cfg.Validate("lsh"); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("a random source is required")
	}
	idx := &LSHIndex{cfg: cfg, descs: descs, probes: probeMasks(cfg.KeySize, cfg.MultiProbeLevel)}
	if len(descs) == 0 {
		return idx, nil
	}
	nBits := descs[0].Bits()
	for i, d := range descs {
		if d.Bits() != nBits {
			return nil, errors.Errorf("descriptor %d has %d bits, expected %d", i, d.Bits(), nBits)
		}
	}
	if cfg.KeySize > nBits {
		return nil, errors.Errorf("key_size %d larger than descriptor size %d", cfg.KeySize, nBits)
	}
	for t := 0; t < cfg.TableNumber; t++ {
		table := &lshTable{bits: rng.Perm(nBits)[:cfg.KeySize], buckets: make(map[uint32][]int)}
		for i, d := range descs {
			k := table.key(d)
			table.buckets[k] = append(table.buckets[k], i)
		}
		idx.tables = append(idx.tables, table)
	}
	return idx, nil
}

// probeMasks lists the XOR masks of every key within level bit flips, starting with the exact key.
func probeMasks(keySize, level int) []uint32 {
	masks := []uint32{0}
	if level >= 1 {
		for i := 0; i < keySize; i++ {
			masks = append(masks, 1<<i)
		}
	}
	if level >= 2 {
		for i := 0; i < keySize; i++ {
			for j := i + 1; j < keySize; j++ {
				masks = append(masks, 1<<i|1<<j)
			}
		}
	}
	return masks
}

// Len returns the number of indexed descriptors.
func (idx *LSHIndex) Len() int {
	return len(idx.descs)
}

// KnnSearch returns up to k approximate nearest neighbors of query, by increasing distance then index.
// Idx1 of the returned matches is queryIdx.
func (idx *LSHIndex) KnnSearch(queryIdx int, query descriptors.Descriptor, k int) ([]DescriptorMatch, error) {
	if k < 1 {
		return nil, errors.New("k should be >= 1")
	}
	if len(idx.descs) == 0 {
		return []DescriptorMatch{}, nil
	}
	if query.Bits() != idx.descs[0].Bits() {
		return nil, errors.Errorf("query has %d bits, index holds %d bit descriptors", query.Bits(), idx.descs[0].Bits())
	}
	seen := make(map[int]struct{})
	candidates := make([]DescriptorMatch, 0, 16)
	for _, table := range idx.tables {
		key := table.key(query)
		for _, mask := range idx.probes {
			for _, i := range table.buckets[key^mask] {
				if _, ok := seen[i]; ok {
					continue
				}
				seen[i] = struct{}{}
				dist, err := descriptors.HammingDistance(query, idx.descs[i])
				if err != nil {
					return nil, err
				}
				candidates = append(candidates, DescriptorMatch{Idx1: queryIdx, Idx2: i, Distance: dist})
			}
		}
	}
	sortMatches(candidates)
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// KnnMatch runs KnnSearch for every query descriptor.
func (idx *LSHIndex) KnnMatch(queries descriptors.Descriptors, k int) ([][]DescriptorMatch, error) {
	out := make([][]DescriptorMatch, len(queries))
	for i, q := range queries {
		neighbors, err := idx.KnnSearch(i, q, k)
		if err != nil {
			return nil, err
		}
		out[i] = neighbors
	}
	return out, nil
}
