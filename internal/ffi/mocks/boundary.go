package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/eigerco/slatedb-go/internal/ffi"
)

// MockBoundary mocks ffi.Boundary for testing the client's handling of
// engine results without an engine.
type MockBoundary struct {
	mock.Mock
}

var _ ffi.Boundary = (*MockBoundary)(nil)

func NewMockBoundary() *MockBoundary {
	return &MockBoundary{}
}

func (m *MockBoundary) InitLogging(level string) ffi.Result {
	args := m.Called(level)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) SettingsDefault() uintptr {
	args := m.Called()
	return args.Get(0).(uintptr)
}

func (m *MockBoundary) SettingsFromFile(path string) uintptr {
	args := m.Called(path)
	return args.Get(0).(uintptr)
}

func (m *MockBoundary) SettingsFromEnv(prefix string) uintptr {
	args := m.Called(prefix)
	return args.Get(0).(uintptr)
}

func (m *MockBoundary) SettingsLoad() uintptr {
	args := m.Called()
	return args.Get(0).(uintptr)
}

func (m *MockBoundary) Open(path, url, envFile string) ffi.HandleResult {
	args := m.Called(path, url, envFile)
	return args.Get(0).(ffi.HandleResult)
}

func (m *MockBoundary) Close(db ffi.Handle) ffi.Result {
	args := m.Called(db)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) Flush(db ffi.Handle) ffi.Result {
	args := m.Called(db)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) Metrics(db ffi.Handle) (ffi.Value, ffi.Result) {
	args := m.Called(db)
	return args.Get(0).(ffi.Value), args.Get(1).(ffi.Result)
}

func (m *MockBoundary) Put(db ffi.Handle, key, value []byte, put *ffi.PutOptions, write *ffi.WriteOptions) ffi.Result {
	args := m.Called(db, key, value, put, write)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) Delete(db ffi.Handle, key []byte, write *ffi.WriteOptions) ffi.Result {
	args := m.Called(db, key, write)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) Get(db ffi.Handle, key []byte, read *ffi.ReadOptions) (ffi.Value, ffi.Result) {
	args := m.Called(db, key, read)
	return args.Get(0).(ffi.Value), args.Get(1).(ffi.Result)
}

func (m *MockBoundary) Scan(db ffi.Handle, start, end []byte, opts *ffi.ScanOptions) (ffi.Handle, ffi.Result) {
	args := m.Called(db, start, end, opts)
	return args.Get(0).(ffi.Handle), args.Get(1).(ffi.Result)
}

func (m *MockBoundary) ScanPrefix(db ffi.Handle, prefix []byte, opts *ffi.ScanOptions) (ffi.Handle, ffi.Result) {
	args := m.Called(db, prefix, opts)
	return args.Get(0).(ffi.Handle), args.Get(1).(ffi.Result)
}

func (m *MockBoundary) WriteBatchNew() (ffi.Handle, ffi.Result) {
	args := m.Called()
	return args.Get(0).(ffi.Handle), args.Get(1).(ffi.Result)
}

func (m *MockBoundary) WriteBatchPut(batch ffi.Handle, key, value []byte) ffi.Result {
	args := m.Called(batch, key, value)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) WriteBatchPutWithOptions(batch ffi.Handle, key, value []byte, opts *ffi.PutOptions) ffi.Result {
	args := m.Called(batch, key, value, opts)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) WriteBatchDelete(batch ffi.Handle, key []byte) ffi.Result {
	args := m.Called(batch, key)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) WriteBatchWrite(db, batch ffi.Handle, opts *ffi.WriteOptions) ffi.Result {
	args := m.Called(db, batch, opts)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) WriteBatchClose(batch ffi.Handle) ffi.Result {
	args := m.Called(batch)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) BuilderNew(path, url, envFile string) ffi.HandleResult {
	args := m.Called(path, url, envFile)
	return args.Get(0).(ffi.HandleResult)
}

func (m *MockBoundary) BuilderWithSettings(builder ffi.Handle, settingsJSON string) ffi.Result {
	args := m.Called(builder, settingsJSON)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) BuilderWithSstBlockSize(builder ffi.Handle, size uint8) ffi.Result {
	args := m.Called(builder, size)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) BuilderBuild(builder ffi.Handle) ffi.HandleResult {
	args := m.Called(builder)
	return args.Get(0).(ffi.HandleResult)
}

func (m *MockBoundary) BuilderFree(builder ffi.Handle) {
	m.Called(builder)
}

func (m *MockBoundary) ReaderOpen(path, url, envFile, checkpointID string, opts *ffi.ReaderOptions) ffi.HandleResult {
	args := m.Called(path, url, envFile, checkpointID, opts)
	return args.Get(0).(ffi.HandleResult)
}

func (m *MockBoundary) ReaderGet(reader ffi.Handle, key []byte, read *ffi.ReadOptions) (ffi.Value, ffi.Result) {
	args := m.Called(reader, key, read)
	return args.Get(0).(ffi.Value), args.Get(1).(ffi.Result)
}

func (m *MockBoundary) ReaderScan(reader ffi.Handle, start, end []byte, opts *ffi.ScanOptions) (ffi.Handle, ffi.Result) {
	args := m.Called(reader, start, end, opts)
	return args.Get(0).(ffi.Handle), args.Get(1).(ffi.Result)
}

func (m *MockBoundary) ReaderScanPrefix(reader ffi.Handle, prefix []byte, opts *ffi.ScanOptions) (ffi.Handle, ffi.Result) {
	args := m.Called(reader, prefix, opts)
	return args.Get(0).(ffi.Handle), args.Get(1).(ffi.Result)
}

func (m *MockBoundary) ReaderClose(reader ffi.Handle) ffi.Result {
	args := m.Called(reader)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) IteratorNext(iter ffi.Handle) (ffi.KeyValue, ffi.Result) {
	args := m.Called(iter)
	return args.Get(0).(ffi.KeyValue), args.Get(1).(ffi.Result)
}

func (m *MockBoundary) IteratorSeek(iter ffi.Handle, key []byte) ffi.Result {
	args := m.Called(iter, key)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) IteratorClose(iter ffi.Handle) ffi.Result {
	args := m.Called(iter)
	return args.Get(0).(ffi.Result)
}

func (m *MockBoundary) FreeResult(r ffi.Result) {
	m.Called(r)
}

func (m *MockBoundary) FreeValue(v ffi.Value) {
	m.Called(v)
}

func (m *MockBoundary) FreeString(s uintptr) {
	m.Called(s)
}

func (m *MockBoundary) Load(v ffi.Value) []byte {
	args := m.Called(v)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]byte)
}

func (m *MockBoundary) LoadString(s uintptr) string {
	args := m.Called(s)
	return args.String(0)
}
