package slatedb

import "github.com/eigerco/slatedb-go/internal/ffi"

// Get returns the value stored at key. ok is false when the key is absent.
func (r *readable) Get(key []byte) ([]byte, bool, error) {
	return r.getWith(key, nil)
}

func (r *readable) GetWithOptions(key []byte, opts ReadOptions) ([]byte, bool, error) {
	return r.getWith(key, opts.native())
}

func (r *readable) GetString(key string) (string, bool, error) {
	v, ok, err := r.Get(EncodeString(key))
	if err != nil || !ok {
		return "", ok, err
	}
	return DecodeString(v), true, nil
}

func (r *readable) getWith(key []byte, opts *ffi.ReadOptions) ([]byte, bool, error) {
	t, err := r.h.acquire()
	if err != nil {
		return nil, false, err
	}
	v, res := r.get(t, key, opts)
	found, err := checkFound(r.b, res)
	if err != nil || !found {
		return nil, false, err
	}
	return consumeValue(r.b, v), true, nil
}

// GetValue reads key and decodes it as T.
func GetValue[T Value](r Readable, key string) (T, bool, error) {
	var zero T
	raw, ok, err := r.Get(EncodeString(key))
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := Decode[T](raw)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Put stores value at key with the engine's default TTL and durability.
func (db *DB) Put(key, value []byte) error {
	return db.put(key, value, nil, nil)
}

func (db *DB) PutWithOptions(key, value []byte, put PutOptions, write WriteOptions) error {
	return db.put(key, value, put.native(), write.native())
}

// PutValue encodes v and stores it at key.
func (db *DB) PutValue(key string, v any) error {
	value, err := Encode(v)
	if err != nil {
		return err
	}
	return db.Put(EncodeString(key), value)
}

func (db *DB) put(key, value []byte, put *ffi.PutOptions, write *ffi.WriteOptions) error {
	t, err := db.h.acquire()
	if err != nil {
		return err
	}
	return check(db.b, db.b.Put(t, key, value, put, write))
}

// Delete removes key. Deleting an absent key is not an error.
func (db *DB) Delete(key []byte) error {
	return db.delete(key, nil)
}

func (db *DB) DeleteWithOptions(key []byte, write WriteOptions) error {
	return db.delete(key, write.native())
}

func (db *DB) delete(key []byte, write *ffi.WriteOptions) error {
	t, err := db.h.acquire()
	if err != nil {
		return err
	}
	return check(db.b, db.b.Delete(t, key, write))
}

// Write commits batch atomically. nil opts waits for durability. The batch
// is consumed whether or not the write succeeds.
func (db *DB) Write(batch *WriteBatch, opts *WriteOptions) error {
	t, err := db.h.acquire()
	if err != nil {
		return err
	}
	bt, err := batch.h.acquire()
	if err != nil {
		return err
	}
	writeErr := check(db.b, db.b.WriteBatchWrite(t, bt, opts.native()))
	closeErr := batch.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}
