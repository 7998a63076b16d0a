package keypoints

import (
	"math/rand/v2"
	"testing"

	"go.viam.com/test"

	"github.com/robotics-cluedo/cluedo/vision/keypoints/descriptors"
)

func randomDescriptors(rng *rand.Rand, n int) descriptors.Descriptors {
	descs := make(descriptors.Descriptors, n)
	for i := range descs {
		descs[i] = descriptors.Descriptor{rng.Uint64(), rng.Uint64(), rng.Uint64(), rng.Uint64()}
	}
	return descs
}

// flipBits returns a copy of d with its first n bits flipped.
func flipBits(d descriptors.Descriptor, n int) descriptors.Descriptor {
	out := make(descriptors.Descriptor, len(d))
	copy(out, d)
	for i := 0; i < n; i++ {
		out[i/64] ^= 1 << (i % 64)
	}
	return out
}

func TestKnnMatchAndRatioTest(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	train := randomDescriptors(rng, 20)
	// query 1 is ambiguous: two train descriptors are equally close
	train[5] = flipBits(train[4], 2)
	query := descriptors.Descriptors{flipBits(train[9], 2), flipBits(train[4], 1)}

	knn, err := KnnMatch(query, train, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(knn), test.ShouldEqual, 2)
	test.That(t, knn[0][0], test.ShouldResemble, DescriptorMatch{Idx1: 0, Idx2: 9, Distance: 2})
	test.That(t, knn[1][0].Distance, test.ShouldEqual, 1)
	test.That(t, knn[1][1].Distance, test.ShouldEqual, 1)

	good := RatioTest(knn, 0.75)
	test.That(t, good, test.ShouldResemble, []DescriptorMatch{{Idx1: 0, Idx2: 9, Distance: 2}})

	// a single neighbor cannot be disambiguated
	test.That(t, RatioTest([][]DescriptorMatch{{{Idx2: 1}}}, 0.75), test.ShouldBeEmpty)

	_, err = KnnMatch(query, train, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLSHIndex(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	train := randomDescriptors(rng, 200)
	idx, err := NewLSHIndex(train, DefaultLSHConfig, rand.New(rand.NewPCG(1, 0)))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, idx.Len(), test.ShouldEqual, 200)

	// an exact copy always shares every bucket
	for _, i := range []int{0, 57, 199} {
		neighbors, err := idx.KnnSearch(0, train[i], 2)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(neighbors), test.ShouldBeGreaterThanOrEqualTo, 1)
		test.That(t, neighbors[0].Idx2, test.ShouldEqual, i)
		test.That(t, neighbors[0].Distance, test.ShouldEqual, 0)
	}

	// a single flipped bit is always within one probe
	neighbors, err := idx.KnnSearch(3, flipBits(train[42], 1), 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, neighbors, test.ShouldResemble, []DescriptorMatch{{Idx1: 3, Idx2: 42, Distance: 1}})

	knn, err := idx.KnnMatch(descriptors.Descriptors{train[1], train[2]}, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, knn[0][0].Idx2, test.ShouldEqual, 1)
	test.That(t, knn[1][0].Idx2, test.ShouldEqual, 2)
	test.That(t, knn[1][0].Idx1, test.ShouldEqual, 1)

	// same seed, same index
	idx2, err := NewLSHIndex(train, DefaultLSHConfig, rand.New(rand.NewPCG(1, 0)))
	test.That(t, err, test.ShouldBeNil)
	knn2, err := idx2.KnnMatch(descriptors.Descriptors{train[1], train[2]}, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, knn2, test.ShouldResemble, knn)

	_, err = idx.KnnSearch(0, descriptors.Descriptor{1}, 2)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = idx.KnnSearch(0, train[0], 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLSHIndexErrors(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 0))
	empty, err := NewLSHIndex(nil, DefaultLSHConfig, rng)
	test.That(t, err, test.ShouldBeNil)
	neighbors, err := empty.KnnSearch(0, descriptors.Descriptor{1}, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, neighbors, test.ShouldBeEmpty)

	_, err = NewLSHIndex(descriptors.Descriptors{{1}, {1, 2}}, DefaultLSHConfig, rng)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewLSHIndex(nil, LSHConfig{TableNumber: 0, KeySize: 12}, rng)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewLSHIndex(nil, DefaultLSHConfig, nil)
	test.That(t, err, test.ShouldNotBeNil)

	test.That(t, len(probeMasks(12, 0)), test.ShouldEqual, 1)
	test.That(t, len(probeMasks(12, 1)), test.ShouldEqual, 13)
	test.That(t, len(probeMasks(12, 2)), test.ShouldEqual, 79)
}
