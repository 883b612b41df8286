package validators_test

import (
	"bytes"
	"crypto/ecdsa"
	"sort"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/suite"

	"github.com/ChainSafe/utopia-relay/lvldb"
	"github.com/ChainSafe/utopia-relay/relayer/merkle"
	"github.com/ChainSafe/utopia-relay/relayer/message"
	"github.com/ChainSafe/utopia-relay/relayer/signature"
	"github.com/ChainSafe/utopia-relay/relayer/validators"
	"github.com/ChainSafe/utopia-relay/store"
)

type validator struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

func newValidators(n int) []validator {
	vals := make([]validator, n)
	for i := range vals {
		key, err := crypto.GenerateKey()
		if err != nil {
			panic(err)
		}
		vals[i] = validator{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
	}
	sort.Slice(vals, func(i, j int) bool {
		return bytes.Compare(vals[i].addr.Bytes(), vals[j].addr.Bytes()) < 0
	})
	return vals
}

func addresses(vals []validator) []common.Address {
	addrs := make([]common.Address, len(vals))
	for i, v := range vals {
		addrs[i] = v.addr
	}
	return addrs
}

func sign(hash common.Hash, v validator) []byte {
	sig, err := signature.SignHash(hash, v.key)
	if err != nil {
		panic(err)
	}
	return sig
}

type RegistryTestSuite struct {
	suite.Suite
	db         *lvldb.LVLDB
	registry   *validators.Registry
	validators []validator
	hash       common.Hash
}

func TestRunRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (s *RegistryTestSuite) SetupTest() {
	db, err := lvldb.NewMemLvlDB()
	s.Nil(err)
	s.db = db
	verifier, err := signature.NewVerifier(signature.DefaultCacheSize)
	s.Nil(err)
	s.registry = validators.NewRegistry(verifier)
	s.validators = newValidators(3)
	s.hash = crypto.Keccak256Hash([]byte("message"))

	s.Nil(s.registry.Initialize(s.db, addresses(s.validators), 2))
}

func (s *RegistryTestSuite) Test_Initialize() {
	count, err := s.registry.Count(s.db)
	s.Nil(err)
	s.Equal(uint64(3), count)

	all, err := s.registry.Validators(s.db)
	s.Nil(err)
	s.ElementsMatch(addresses(s.validators), all)

	s.ErrorIs(s.registry.Initialize(s.db, addresses(s.validators), 1), validators.ErrAlreadyInitialized)
}

func (s *RegistryTestSuite) Test_AddValidator() {
	extra := newValidators(1)[0]

	s.Nil(s.registry.AddValidator(s.db, extra.addr))

	ok, err := s.registry.IsValidator(s.db, extra.addr)
	s.Nil(err)
	s.True(ok)
	s.ErrorIs(s.registry.AddValidator(s.db, extra.addr), validators.ErrAlreadyValidator)
	s.ErrorIs(s.registry.AddValidator(s.db, common.Address{}), validators.ErrZeroAddress)
}

func (s *RegistryTestSuite) Test_RemoveValidator_KeepsThreshold() {
	s.Nil(s.registry.RemoveValidator(s.db, s.validators[0].addr))

	err := s.registry.RemoveValidator(s.db, s.validators[1].addr)
	s.ErrorIs(err, validators.ErrInvalidThreshold)

	err = s.registry.RemoveValidator(s.db, s.validators[0].addr)
	s.ErrorIs(err, validators.ErrNotValidator)

	all, err := s.registry.Validators(s.db)
	s.Nil(err)
	s.ElementsMatch(addresses(s.validators[1:]), all)
}

func (s *RegistryTestSuite) Test_SetRequiredSignatures() {
	s.ErrorIs(s.registry.SetRequiredSignatures(s.db, 0), validators.ErrInvalidThreshold)
	s.ErrorIs(s.registry.SetRequiredSignatures(s.db, 4), validators.ErrInvalidThreshold)

	s.Nil(s.registry.SetRequiredSignatures(s.db, 3))
	required, err := s.registry.RequiredSignatures(s.db)
	s.Nil(err)
	s.Equal(uint64(3), required)
}

func (s *RegistryTestSuite) Test_VerifySignatures() {
	blob := signature.Pack(sign(s.hash, s.validators[0]), sign(s.hash, s.validators[2]))

	signers, err := s.registry.VerifySignatures(s.db, s.hash, blob, time.Now())

	s.Nil(err)
	s.Equal([]common.Address{s.validators[0].addr, s.validators[2].addr}, signers)
}

func (s *RegistryTestSuite) Test_VerifySignatures_ReadsLiveThreshold() {
	blob := signature.Pack(sign(s.hash, s.validators[0]), sign(s.hash, s.validators[2]))
	s.Nil(s.registry.SetRequiredSignatures(s.db, 3))

	_, err := s.registry.VerifySignatures(s.db, s.hash, blob, time.Now())

	s.ErrorIs(err, signature.ErrInsufficientSignatures)
}

func (s *RegistryTestSuite) Test_VerifySignatures_RemovedValidator() {
	blob := signature.Pack(sign(s.hash, s.validators[0]), sign(s.hash, s.validators[2]))
	s.Nil(s.registry.RemoveValidator(s.db, s.validators[2].addr))

	_, err := s.registry.VerifySignatures(s.db, s.hash, blob, time.Now())

	s.ErrorIs(err, signature.ErrNotValidator)
}

func (s *RegistryTestSuite) Test_StagedChangesVisibleThroughTx() {
	extra := newValidators(1)[0]
	tx := store.NewTx(s.db)

	s.Nil(s.registry.AddValidator(tx, extra.addr))

	inTx, err := s.registry.IsValidator(tx, extra.addr)
	s.Nil(err)
	s.True(inTx)
	inDB, err := s.registry.IsValidator(s.db, extra.addr)
	s.Nil(err)
	s.False(inDB)
}

type MerkleSetTestSuite struct {
	suite.Suite
	db         *lvldb.LVLDB
	set        *validators.MerkleSet
	validators []validator
	tree       *merkle.Tree
	now        time.Time
	hash       common.Hash
}

func TestRunMerkleSetTestSuite(t *testing.T) {
	suite.Run(t, new(MerkleSetTestSuite))
}

func (s *MerkleSetTestSuite) SetupTest() {
	db, err := lvldb.NewMemLvlDB()
	s.Nil(err)
	s.db = db
	verifier, err := signature.NewVerifier(signature.DefaultCacheSize)
	s.Nil(err)
	s.set = validators.NewMerkleSet(verifier)
	s.validators = newValidators(4)
	s.tree, err = merkle.NewTree(addresses(s.validators))
	s.Nil(err)
	s.now = time.Unix(1700000000, 0)
	s.hash = crypto.Keccak256Hash([]byte("message"))

	s.Nil(s.set.Initialize(s.db, message.ValidatorSetUpdate{
		Root:       s.tree.Root(),
		Threshold:  3,
		Expiration: uint64(s.now.Unix()) + 3600,
	}, s.now))
}

func (s *MerkleSetTestSuite) interleaved(hash common.Hash, signers ...int) []byte {
	sigs := map[common.Address][]byte{}
	for _, i := range signers {
		sigs[s.validators[i].addr] = sign(hash, s.validators[i])
	}
	return signature.PackInterleaved(addresses(s.validators), sigs)
}

func (s *MerkleSetTestSuite) Test_Initialize_Twice() {
	err := s.set.Initialize(s.db, message.ValidatorSetUpdate{
		Root:       s.tree.Root(),
		Threshold:  1,
		Expiration: uint64(s.now.Unix()) + 10,
	}, s.now)

	s.ErrorIs(err, validators.ErrAlreadyInitialized)
}

func (s *MerkleSetTestSuite) Test_IsMember() {
	proof, err := s.tree.Proof(s.validators[1].addr)
	s.Nil(err)

	ok, err := s.set.IsMember(s.db, s.validators[1].addr, proof)
	s.Nil(err)
	s.True(ok)

	ok, err = s.set.IsMember(s.db, newValidators(1)[0].addr, proof)
	s.Nil(err)
	s.False(ok)

	for _, v := range s.validators {
		ok, err = s.set.IsMember(s.db, v.addr, nil)
		s.Nil(err)
		s.False(ok)
	}
}

func (s *MerkleSetTestSuite) Test_VerifySignatures_Threshold() {
	_, err := s.set.VerifySignatures(s.db, s.hash, s.interleaved(s.hash, 0, 2), s.now)
	s.ErrorIs(err, signature.ErrInsufficientSignatures)

	signers, err := s.set.VerifySignatures(s.db, s.hash, s.interleaved(s.hash, 0, 1, 3), s.now)
	s.Nil(err)
	s.Equal([]common.Address{s.validators[0].addr, s.validators[1].addr, s.validators[3].addr}, signers)

	signers, err = s.set.VerifySignatures(s.db, s.hash, s.interleaved(s.hash, 0, 1, 2, 3), s.now)
	s.Nil(err)
	s.Len(signers, 4)
}

func (s *MerkleSetTestSuite) Test_VerifySignatures_RootMismatch() {
	sigs := map[common.Address][]byte{}
	for _, v := range s.validators[:3] {
		sigs[v.addr] = sign(s.hash, v)
	}
	blob := signature.PackInterleaved(addresses(s.validators[:3]), sigs)

	_, err := s.set.VerifySignatures(s.db, s.hash, blob, s.now)

	s.ErrorIs(err, validators.ErrRootMismatch)
}

func (s *MerkleSetTestSuite) Test_VerifySignatures_Expired() {
	_, err := s.set.VerifySignatures(s.db, s.hash, s.interleaved(s.hash, 0, 1, 2), s.now.Add(time.Hour))

	s.ErrorIs(err, validators.ErrValidatorSetExpired)
}

func (s *MerkleSetTestSuite) Test_Update() {
	next := newValidators(2)
	tree, err := merkle.NewTree(addresses(next))
	s.Nil(err)
	update := message.ValidatorSetUpdate{Root: tree.Root(), Threshold: 2, Expiration: uint64(s.now.Unix()) + 7200}

	err = s.set.Update(s.db, update, s.interleaved(update.Hash(), 0, 1), s.now)
	s.ErrorIs(err, signature.ErrInsufficientSignatures)

	s.Nil(s.set.Update(s.db, update, s.interleaved(update.Hash(), 0, 1, 2), s.now))
	current, err := s.set.Current(s.db)
	s.Nil(err)
	s.Equal(update, current)
}

func (s *MerkleSetTestSuite) Test_Update_InvalidTriples() {
	blob := s.interleaved(s.hash, 0, 1, 2)

	err := s.set.Update(s.db, message.ValidatorSetUpdate{Threshold: 1, Expiration: uint64(s.now.Unix()) + 1}, blob, s.now)
	s.ErrorIs(err, validators.ErrZeroRoot)

	err = s.set.Update(s.db, message.ValidatorSetUpdate{Root: s.tree.Root(), Expiration: uint64(s.now.Unix()) + 1}, blob, s.now)
	s.ErrorIs(err, validators.ErrInvalidThreshold)

	err = s.set.Update(s.db, message.ValidatorSetUpdate{Root: s.tree.Root(), Threshold: 1, Expiration: uint64(s.now.Unix())}, blob, s.now)
	s.ErrorIs(err, validators.ErrStaleExpiration)
}

func (s *MerkleSetTestSuite) Test_ForceUpdate() {
	update := message.ValidatorSetUpdate{Root: common.HexToHash("0x1"), Threshold: 1, Expiration: uint64(s.now.Unix()) + 1}

	s.Nil(s.set.ForceUpdate(s.db, update, s.now))

	current, err := s.set.Current(s.db)
	s.Nil(err)
	s.Equal(update, current)
}

func (s *MerkleSetTestSuite) Test_Current_NotInitialized() {
	db, err := lvldb.NewMemLvlDB()
	s.Nil(err)

	_, err = s.set.Current(db)

	s.ErrorIs(err, validators.ErrNoValidatorSet)
}
