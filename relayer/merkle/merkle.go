// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

// Package merkle builds validator set trees. Internal nodes hash their two
// children in ascending numeric order, so proofs carry no left/right flags, and
// a node left without a sibling is promoted to the next level unchanged.
package merkle

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/exp/slices"
)

var (
	ErrEmptyTree       = errors.New("tree has no leaves")
	ErrIndexOutOfRange = errors.New("leaf index out of range")
	ErrUnsortedLeaves  = errors.New("addresses must be unique and sorted ascending")
)

// Leaf is the address left padded to 32 bytes.
func Leaf(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

// HashPair combines two nodes independently of their position.
func HashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a.Bytes(), b.Bytes())
}

func nextLevel(level []common.Hash) []common.Hash {
	next := make([]common.Hash, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		if i+1 == len(level) {
			next = append(next, level[i])
			continue
		}
		next = append(next, HashPair(level[i], level[i+1]))
	}
	return next
}

// Root computes the root over the leaves in the given order.
func Root(leaves []common.Hash) (common.Hash, error) {
	if len(leaves) == 0 {
		return common.Hash{}, ErrEmptyTree
	}
	level := leaves
	for len(level) > 1 {
		level = nextLevel(level)
	}
	return level[0], nil
}

// Proof returns the sibling path from leaves[index] to the root. Levels where
// the node is promoted contribute no sibling.
func Proof(leaves []common.Hash, index int) ([]common.Hash, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}
	if index < 0 || index >= len(leaves) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	proof := make([]common.Hash, 0)
	level := leaves
	for len(level) > 1 {
		sibling := index ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		level = nextLevel(level)
		index /= 2
	}
	return proof, nil
}

// Verify recomputes the root from leaf and proof and compares it to root.
func Verify(root common.Hash, leaf common.Hash, proof []common.Hash) bool {
	node := leaf
	for _, sibling := range proof {
		node = HashPair(node, sibling)
	}
	return node == root
}

// Leaves converts sorted addresses into leaves, rejecting unsorted or duplicated input.
func Leaves(addrs []common.Address) ([]common.Hash, error) {
	leaves := make([]common.Hash, len(addrs))
	for i, addr := range addrs {
		if i > 0 && bytes.Compare(addrs[i-1].Bytes(), addr.Bytes()) >= 0 {
			return nil, ErrUnsortedLeaves
		}
		leaves[i] = Leaf(addr)
	}
	return leaves, nil
}

// SortAddresses returns a sorted, deduplicated copy of addrs.
func SortAddresses(addrs []common.Address) []common.Address {
	sorted := slices.Clone(addrs)
	slices.SortFunc(sorted, func(a, b common.Address) int {
		return bytes.Compare(a.Bytes(), b.Bytes())
	})
	return slices.Compact(sorted)
}

// Tree is a validator set tree over sorted addresses.
type Tree struct {
	addrs  []common.Address
	leaves []common.Hash
	root   common.Hash
}

func NewTree(addrs []common.Address) (*Tree, error) {
	sorted := SortAddresses(addrs)
	leaves, err := Leaves(sorted)
	if err != nil {
		return nil, err
	}
	root, err := Root(leaves)
	if err != nil {
		return nil, err
	}
	return &Tree{addrs: sorted, leaves: leaves, root: root}, nil
}

func (t *Tree) Root() common.Hash {
	return t.root
}

func (t *Tree) Addresses() []common.Address {
	return slices.Clone(t.addrs)
}

func (t *Tree) Proof(addr common.Address) ([]common.Hash, error) {
	index, found := slices.BinarySearchFunc(t.addrs, addr, func(a, b common.Address) int {
		return bytes.Compare(a.Bytes(), b.Bytes())
	})
	if !found {
		return nil, fmt.Errorf("address %s is not part of the tree", addr)
	}
	return Proof(t.leaves, index)
}
