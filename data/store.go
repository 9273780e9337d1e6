package data

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/cznic/kv"
	"github.com/pkg/errors"
	"gopkg.in/vmihailenco/msgpack.v2"
)

const snapshotPrefix = "snapshot:"

var (
	// ErrSnapshotNotFound is returned by Load for unknown networks.
	ErrSnapshotNotFound = errors.New("data: snapshot not found")
)

// Store keeps the last snapshot of every network in a kv database.
type Store struct {
	db *kv.DB

	protect sync.Mutex
}

// NewStore initializes a store type.
func NewStore(dbCreate func() (*kv.DB, error)) (*Store, error) {
	db, err := dbCreate()
	if err != nil {
		return nil, errors.Wrap(err, "data: open store")
	}

	return &Store{db: db}, nil
}

// MemStoreProvider is a dbCreate function for an in memory store.
func MemStoreProvider() (*kv.DB, error) {
	return kv.CreateMem(&kv.Options{})
}

// FileStoreProvider returns a dbCreate function that opens the database at
// filename, creating it if it does not exist yet.
func FileStoreProvider(filename string) func() (*kv.DB, error) {
	return func() (*kv.DB, error) {
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			return kv.Create(filename, &kv.Options{})
		}
		return kv.Open(filename, &kv.Options{})
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.protect.Lock()
	defer s.protect.Unlock()
	return s.db.Close()
}

// Save stores a snapshot, replacing the previous one for the network.
func (s *Store) Save(snap *Snapshot) error {
	serialized, err := msgpack.Marshal(snap)
	if err != nil {
		return errors.Wrapf(err, "data: encode snapshot %s", snap.Network)
	}

	s.protect.Lock()
	defer s.protect.Unlock()
	err = s.db.Set([]byte(snapshotPrefix+snap.Network), serialized)
	return errors.Wrapf(err, "data: save snapshot %s", snap.Network)
}

// Load fetches the last snapshot saved for a network.
func (s *Store) Load(network string) (*Snapshot, error) {
	s.protect.Lock()
	serialized, err := s.db.Get(nil, []byte(snapshotPrefix+network))
	s.protect.Unlock()

	if err != nil {
		return nil, errors.Wrapf(err, "data: load snapshot %s", network)
	}
	if serialized == nil {
		return nil, ErrSnapshotNotFound
	}

	snap := &Snapshot{}
	if err = msgpack.Unmarshal(serialized, snap); err != nil {
		return nil, errors.Wrapf(err, "data: decode snapshot %s", network)
	}
	return snap, nil
}

// Delete removes the snapshot for a network.
func (s *Store) Delete(network string) error {
	s.protect.Lock()
	defer s.protect.Unlock()
	return s.db.Delete([]byte(snapshotPrefix + network))
}

// Networks lists the networks that have a snapshot, in key order.
func (s *Store) Networks() ([]string, error) {
	s.protect.Lock()
	defer s.protect.Unlock()

	enum, err := s.db.SeekFirst()
	if err == io.EOF {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "data: list snapshots")
	}

	var networks []string
	for {
		key, _, err := enum.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrap(err, "data: list snapshots")
		}

		if k := string(key); strings.HasPrefix(k, snapshotPrefix) {
			networks = append(networks, strings.TrimPrefix(k, snapshotPrefix))
		}
	}
	return networks, nil
}
