package merkle_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"github.com/ChainSafe/utopia-relay/relayer/merkle"
)

func addressesGen(min, max int) *rapid.Generator[[]common.Address] {
	raw := rapid.SliceOfNDistinct(rapid.SliceOfN(rapid.Byte(), common.AddressLength, common.AddressLength), min, max, func(b []byte) string {
		return string(b)
	})
	return rapid.Map(raw, func(bs [][]byte) []common.Address {
		addrs := make([]common.Address, len(bs))
		for i, b := range bs {
			addrs[i] = common.BytesToAddress(b)
		}
		return addrs
	})
}

type MerkleTestSuite struct {
	suite.Suite
}

func TestRunMerkleTestSuite(t *testing.T) {
	suite.Run(t, new(MerkleTestSuite))
}

func (s *MerkleTestSuite) Test_EveryMemberProves() {
	rapid.Check(s.T(), func(t *rapid.T) {
		addrs := addressesGen(1, 40).Draw(t, "addrs")
		tree, err := merkle.NewTree(addrs)
		if err != nil {
			t.Fatalf("tree: %v", err)
		}

		for _, addr := range addrs {
			proof, err := tree.Proof(addr)
			if err != nil {
				t.Fatalf("proof for %s: %v", addr, err)
			}
			if !merkle.Verify(tree.Root(), merkle.Leaf(addr), proof) {
				t.Fatalf("proof for %s does not verify", addr)
			}
		}
	})
}

func (s *MerkleTestSuite) Test_RootIndependentOfInputOrder() {
	rapid.Check(s.T(), func(t *rapid.T) {
		addrs := addressesGen(1, 20).Draw(t, "addrs")
		shuffled := rapid.Permutation(addrs).Draw(t, "shuffled")

		a, err := merkle.NewTree(addrs)
		if err != nil {
			t.Fatalf("tree: %v", err)
		}
		b, err := merkle.NewTree(shuffled)
		if err != nil {
			t.Fatalf("tree: %v", err)
		}
		if a.Root() != b.Root() {
			t.Fatalf("roots differ: %s != %s", a.Root(), b.Root())
		}
	})
}

func (s *MerkleTestSuite) Test_OutsiderDoesNotProve() {
	rapid.Check(s.T(), func(t *rapid.T) {
		addrs := addressesGen(2, 20).Draw(t, "addrs")
		members, outsider := addrs[1:], addrs[0]
		tree, err := merkle.NewTree(members)
		if err != nil {
			t.Fatalf("tree: %v", err)
		}

		proof, err := tree.Proof(members[0])
		if err != nil {
			t.Fatalf("proof: %v", err)
		}
		if merkle.Verify(tree.Root(), merkle.Leaf(outsider), proof) {
			t.Fatalf("outsider %s verified with a member proof", outsider)
		}
		if _, err := tree.Proof(outsider); err == nil {
			t.Fatalf("proof for outsider %s", outsider)
		}
	})
}

func (s *MerkleTestSuite) Test_EmptyProofFailsForMultipleMembers() {
	rapid.Check(s.T(), func(t *rapid.T) {
		addrs := addressesGen(2, 40).Draw(t, "addrs")
		tree, err := merkle.NewTree(addrs)
		if err != nil {
			t.Fatalf("tree: %v", err)
		}

		for _, addr := range addrs {
			if merkle.Verify(tree.Root(), merkle.Leaf(addr), nil) {
				t.Fatalf("member %s verified without a proof in a set of %d", addr, len(addrs))
			}
		}
	})
}

func (s *MerkleTestSuite) Test_SingleLeafRoot() {
	addr := common.HexToAddress("0x1")
	tree, err := merkle.NewTree([]common.Address{addr})

	s.Nil(err)
	s.Equal(merkle.Leaf(addr), tree.Root())
	proof, err := tree.Proof(addr)
	s.Nil(err)
	s.Empty(proof)
}

func (s *MerkleTestSuite) Test_OddNodeIsPromoted() {
	leaves := []common.Hash{
		merkle.Leaf(common.HexToAddress("0x1")),
		merkle.Leaf(common.HexToAddress("0x2")),
		merkle.Leaf(common.HexToAddress("0x3")),
	}

	root, err := merkle.Root(leaves)

	s.Nil(err)
	s.Equal(merkle.HashPair(merkle.HashPair(leaves[0], leaves[1]), leaves[2]), root)
	proof, err := merkle.Proof(leaves, 2)
	s.Nil(err)
	s.Equal([]common.Hash{merkle.HashPair(leaves[0], leaves[1])}, proof)
}

func (s *MerkleTestSuite) Test_Errors() {
	_, err := merkle.Root(nil)
	s.ErrorIs(err, merkle.ErrEmptyTree)

	_, err = merkle.Proof([]common.Hash{{}}, 1)
	s.ErrorIs(err, merkle.ErrIndexOutOfRange)

	_, err = merkle.Leaves([]common.Address{common.HexToAddress("0x2"), common.HexToAddress("0x1")})
	s.ErrorIs(err, merkle.ErrUnsortedLeaves)

	_, err = merkle.NewTree(nil)
	s.ErrorIs(err, merkle.ErrEmptyTree)
}

func (s *MerkleTestSuite) Test_SortAddressesDeduplicates() {
	a, b := common.HexToAddress("0x1"), common.HexToAddress("0x2")

	s.Equal([]common.Address{a, b}, merkle.SortAddresses([]common.Address{b, a, b}))
}
