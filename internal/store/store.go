// Package store keeps a local history of submitted registrations so the
// batch and auto-register flows can report what was already paid for, even
// after the process restarts.
package store

import (
	"encoding/binary"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pirskij/bittensor-quick-register/internal/crypto"
	"github.com/pirskij/bittensor-quick-register/pkg/db"
	"github.com/pirskij/bittensor-quick-register/pkg/log"
	"github.com/pirskij/bittensor-quick-register/pkg/serialization/codec"
)

// keyPrefix namespaces registration records inside the shared key-value
// store. Keys order by subnet, then transaction hash.
var keyPrefix = []byte("reg/")

// Record is one accepted registration submission.
type Record struct {
	NetUID      uint16
	Hotkey      crypto.AccountID
	Coldkey     crypto.AccountID
	Burn        uint64
	Block       uint64
	TxHash      crypto.Hash
	SubmittedAt uint64 // unix seconds
}

// Store persists registration records in a key-value store.
type Store struct {
	kv    db.KVStore
	codec codec.Codec
	log   zerolog.Logger
}

func New(kv db.KVStore) *Store {
	return &Store{kv: kv, codec: &codec.SCALECodec{}, log: log.Store}
}

func recordKey(netuid uint16, tx crypto.Hash) []byte {
	key := make([]byte, 0, len(keyPrefix)+2+len(tx))
	key = append(key, keyPrefix...)
	key = binary.BigEndian.AppendUint16(key, netuid)
	key = append(key, tx[:]...)
	return key
}

// subnetBounds returns the key range holding one subnet's records.
func subnetBounds(netuid uint16) (start, end []byte) {
	start = append(append([]byte{}, keyPrefix...), byte(netuid>>8), byte(netuid))
	if netuid == 0xffff {
		return start, prefixEnd(keyPrefix)
	}
	next := netuid + 1
	end = append(append([]byte{}, keyPrefix...), byte(next>>8), byte(next))
	return start, end
}

func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	end[len(end)-1]++
	return end
}

// Add persists one record. Re-adding the same transaction overwrites it.
func (s *Store) Add(rec Record) error {
	value, err := s.codec.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding registration record: %w", err)
	}
	if err := s.kv.Put(recordKey(rec.NetUID, rec.TxHash), value); err != nil {
		return fmt.Errorf("storing registration record: %w", err)
	}
	s.log.Debug().Uint16("netuid", rec.NetUID).Str("tx", rec.TxHash.Hex()).Msg("registration recorded")
	return nil
}

// BySubnet returns every recorded registration for one subnet.
func (s *Store) BySubnet(netuid uint16) ([]Record, error) {
	start, end := subnetBounds(netuid)
	return s.scan(start, end)
}

// All returns every recorded registration across subnets.
func (s *Store) All() ([]Record, error) {
	return s.scan(keyPrefix, prefixEnd(keyPrefix))
}

func (s *Store) scan(start, end []byte) ([]Record, error) {
	iter, err := s.kv.NewIterator(start, end)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var records []Record
	for iter.Next() {
		value, err := iter.Value()
		if err != nil {
			return nil, err
		}
		var rec Record
		if err := s.codec.Unmarshal(value, &rec); err != nil {
			return nil, fmt.Errorf("decoding registration record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) Close() error {
	return s.kv.Close()
}
