//go:build darwin

package native

import (
	"runtime"
	"unsafe"

	"github.com/eigerco/slatedb-go/internal/ffi"
)

// Byte slices cross as uintptr + length, like the other purego bindings in
// this project; purego on ARM64 does not marshal slices. Every method keeps its
// Go buffers alive with runtime.KeepAlive until the call returns.
var (
	sdbInitLogging      func(level *byte) ffi.Result
	sdbSettingsDefault  func() uintptr
	sdbSettingsFromFile func(path *byte) uintptr
	sdbSettingsFromEnv  func(prefix *byte) uintptr
	sdbSettingsLoad     func() uintptr

	sdbOpen    func(path, url, envFile *byte) ffi.HandleResult
	sdbClose   func(db ffi.Handle) ffi.Result
	sdbFlush   func(db ffi.Handle) ffi.Result
	sdbMetrics func(db ffi.Handle, out *ffi.Value) ffi.Result

	sdbPut func(db ffi.Handle, key uintptr, keyLen uintptr, value uintptr, valueLen uintptr,
		put *ffi.PutOptions, write *ffi.WriteOptions) ffi.Result
	sdbDelete func(db ffi.Handle, key uintptr, keyLen uintptr, write *ffi.WriteOptions) ffi.Result
	sdbGet    func(db ffi.Handle, key uintptr, keyLen uintptr, read *ffi.ReadOptions, out *ffi.Value) ffi.Result
	sdbScan   func(db ffi.Handle, start uintptr, startLen uintptr, end uintptr, endLen uintptr,
		opts *ffi.ScanOptions, iterOut *ffi.Handle) ffi.Result
	sdbScanPrefix func(db ffi.Handle, prefix uintptr, prefixLen uintptr,
		opts *ffi.ScanOptions, iterOut *ffi.Handle) ffi.Result

	sdbWriteBatchNew            func(out *ffi.Handle) ffi.Result
	sdbWriteBatchPut            func(batch ffi.Handle, key uintptr, keyLen uintptr, value uintptr, valueLen uintptr) ffi.Result
	sdbWriteBatchPutWithOptions func(batch ffi.Handle, key uintptr, keyLen uintptr, value uintptr, valueLen uintptr,
		opts *ffi.PutOptions) ffi.Result
	sdbWriteBatchDelete func(batch ffi.Handle, key uintptr, keyLen uintptr) ffi.Result
	sdbWriteBatchWrite  func(db ffi.Handle, batch ffi.Handle, opts *ffi.WriteOptions) ffi.Result
	sdbWriteBatchClose  func(batch ffi.Handle) ffi.Result

	sdbBuilderNew              func(path, url, envFile *byte) ffi.HandleResult
	sdbBuilderWithSettings     func(builder ffi.Handle, settingsJSON *byte) ffi.Result
	sdbBuilderWithSstBlockSize func(builder ffi.Handle, size uint8) ffi.Result
	sdbBuilderBuild            func(builder ffi.Handle) ffi.HandleResult
	sdbBuilderFree             func(builder ffi.Handle)

	sdbReaderOpen func(path, url, envFile, checkpointID *byte, opts *ffi.ReaderOptions) ffi.HandleResult
	sdbReaderGet  func(reader ffi.Handle, key uintptr, keyLen uintptr, read *ffi.ReadOptions, out *ffi.Value) ffi.Result
	sdbReaderScan func(reader ffi.Handle, start uintptr, startLen uintptr, end uintptr, endLen uintptr,
		opts *ffi.ScanOptions, iterOut *ffi.Handle) ffi.Result
	sdbReaderScanPrefix func(reader ffi.Handle, prefix uintptr, prefixLen uintptr,
		opts *ffi.ScanOptions, iterOut *ffi.Handle) ffi.Result
	sdbReaderClose func(reader ffi.Handle) ffi.Result

	sdbIteratorNext  func(iter ffi.Handle, out *ffi.KeyValue) ffi.Result
	sdbIteratorSeek  func(iter ffi.Handle, key uintptr, keyLen uintptr) ffi.Result
	sdbIteratorClose func(iter ffi.Handle) ffi.Result

	sdbFreeResult func(code uintptr, message uintptr)
	sdbFreeValue  func(data uintptr, length uintptr)

	// cFree is libc free, which releases the settings documents.
	cFree func(ptr uintptr)
)

// Library implements ffi.Boundary over the loaded slatedb_c library.
type Library struct {
	path string
}

var _ ffi.Boundary = (*Library)(nil)

// Path returns the location the library was loaded from.
func (l *Library) Path() string { return l.path }

func (l *Library) InitLogging(level string) ffi.Result {
	lv := cString(level)
	r := sdbInitLogging(lv)
	runtime.KeepAlive(lv)
	return r
}

func (l *Library) SettingsDefault() uintptr { return sdbSettingsDefault() }

func (l *Library) SettingsFromFile(path string) uintptr {
	p := cString(path)
	r := sdbSettingsFromFile(p)
	runtime.KeepAlive(p)
	return r
}

func (l *Library) SettingsFromEnv(prefix string) uintptr {
	p := cString(prefix)
	r := sdbSettingsFromEnv(p)
	runtime.KeepAlive(p)
	return r
}

func (l *Library) SettingsLoad() uintptr { return sdbSettingsLoad() }

func (l *Library) Open(path, url, envFile string) ffi.HandleResult {
	p, u, e := cString(path), cString(url), cString(envFile)
	r := sdbOpen(p, u, e)
	runtime.KeepAlive(p)
	runtime.KeepAlive(u)
	runtime.KeepAlive(e)
	return r
}

func (l *Library) Close(db ffi.Handle) ffi.Result { return sdbClose(db) }

func (l *Library) Flush(db ffi.Handle) ffi.Result { return sdbFlush(db) }

func (l *Library) Metrics(db ffi.Handle) (ffi.Value, ffi.Result) {
	var out ffi.Value
	r := sdbMetrics(db, &out)
	return out, r
}

func (l *Library) Put(db ffi.Handle, key, value []byte, put *ffi.PutOptions, write *ffi.WriteOptions) ffi.Result {
	r := sdbPut(db, slicePtr(key), uintptr(len(key)), slicePtr(value), uintptr(len(value)), put, write)
	runtime.KeepAlive(key)
	runtime.KeepAlive(value)
	return r
}

func (l *Library) Delete(db ffi.Handle, key []byte, write *ffi.WriteOptions) ffi.Result {
	r := sdbDelete(db, slicePtr(key), uintptr(len(key)), write)
	runtime.KeepAlive(key)
	return r
}

func (l *Library) Get(db ffi.Handle, key []byte, read *ffi.ReadOptions) (ffi.Value, ffi.Result) {
	var out ffi.Value
	r := sdbGet(db, slicePtr(key), uintptr(len(key)), read, &out)
	runtime.KeepAlive(key)
	return out, r
}

func (l *Library) Scan(db ffi.Handle, start, end []byte, opts *ffi.ScanOptions) (ffi.Handle, ffi.Result) {
	var iter ffi.Handle
	r := sdbScan(db, optionalPtr(start), uintptr(len(start)), optionalPtr(end), uintptr(len(end)), opts, &iter)
	runtime.KeepAlive(start)
	runtime.KeepAlive(end)
	return iter, r
}

func (l *Library) ScanPrefix(db ffi.Handle, prefix []byte, opts *ffi.ScanOptions) (ffi.Handle, ffi.Result) {
	var iter ffi.Handle
	r := sdbScanPrefix(db, slicePtr(prefix), uintptr(len(prefix)), opts, &iter)
	runtime.KeepAlive(prefix)
	return iter, r
}

func (l *Library) WriteBatchNew() (ffi.Handle, ffi.Result) {
	var batch ffi.Handle
	r := sdbWriteBatchNew(&batch)
	return batch, r
}

func (l *Library) WriteBatchPut(batch ffi.Handle, key, value []byte) ffi.Result {
	r := sdbWriteBatchPut(batch, slicePtr(key), uintptr(len(key)), slicePtr(value), uintptr(len(value)))
	runtime.KeepAlive(key)
	runtime.KeepAlive(value)
	return r
}

func (l *Library) WriteBatchPutWithOptions(batch ffi.Handle, key, value []byte, opts *ffi.PutOptions) ffi.Result {
	r := sdbWriteBatchPutWithOptions(batch, slicePtr(key), uintptr(len(key)), slicePtr(value), uintptr(len(value)), opts)
	runtime.KeepAlive(key)
	runtime.KeepAlive(value)
	return r
}

func (l *Library) WriteBatchDelete(batch ffi.Handle, key []byte) ffi.Result {
	r := sdbWriteBatchDelete(batch, slicePtr(key), uintptr(len(key)))
	runtime.KeepAlive(key)
	return r
}

func (l *Library) WriteBatchWrite(db, batch ffi.Handle, opts *ffi.WriteOptions) ffi.Result {
	return sdbWriteBatchWrite(db, batch, opts)
}

func (l *Library) WriteBatchClose(batch ffi.Handle) ffi.Result { return sdbWriteBatchClose(batch) }

func (l *Library) BuilderNew(path, url, envFile string) ffi.HandleResult {
	p, u, e := cString(path), cString(url), cString(envFile)
	r := sdbBuilderNew(p, u, e)
	runtime.KeepAlive(p)
	runtime.KeepAlive(u)
	runtime.KeepAlive(e)
	return r
}

func (l *Library) BuilderWithSettings(builder ffi.Handle, settingsJSON string) ffi.Result {
	s := cString(settingsJSON)
	r := sdbBuilderWithSettings(builder, s)
	runtime.KeepAlive(s)
	return r
}

func (l *Library) BuilderWithSstBlockSize(builder ffi.Handle, size uint8) ffi.Result {
	return sdbBuilderWithSstBlockSize(builder, size)
}

func (l *Library) BuilderBuild(builder ffi.Handle) ffi.HandleResult { return sdbBuilderBuild(builder) }

func (l *Library) BuilderFree(builder ffi.Handle) { sdbBuilderFree(builder) }

func (l *Library) ReaderOpen(path, url, envFile, checkpointID string, opts *ffi.ReaderOptions) ffi.HandleResult {
	p, u, e, c := cString(path), cString(url), cString(envFile), cString(checkpointID)
	r := sdbReaderOpen(p, u, e, c, opts)
	runtime.KeepAlive(p)
	runtime.KeepAlive(u)
	runtime.KeepAlive(e)
	runtime.KeepAlive(c)
	return r
}

func (l *Library) ReaderGet(reader ffi.Handle, key []byte, read *ffi.ReadOptions) (ffi.Value, ffi.Result) {
	var out ffi.Value
	r := sdbReaderGet(reader, slicePtr(key), uintptr(len(key)), read, &out)
	runtime.KeepAlive(key)
	return out, r
}

func (l *Library) ReaderScan(reader ffi.Handle, start, end []byte, opts *ffi.ScanOptions) (ffi.Handle, ffi.Result) {
	var iter ffi.Handle
	r := sdbReaderScan(reader, optionalPtr(start), uintptr(len(start)), optionalPtr(end), uintptr(len(end)), opts, &iter)
	runtime.KeepAlive(start)
	runtime.KeepAlive(end)
	return iter, r
}

func (l *Library) ReaderScanPrefix(reader ffi.Handle, prefix []byte, opts *ffi.ScanOptions) (ffi.Handle, ffi.Result) {
	var iter ffi.Handle
	r := sdbReaderScanPrefix(reader, slicePtr(prefix), uintptr(len(prefix)), opts, &iter)
	runtime.KeepAlive(prefix)
	return iter, r
}

func (l *Library) ReaderClose(reader ffi.Handle) ffi.Result { return sdbReaderClose(reader) }

func (l *Library) IteratorNext(iter ffi.Handle) (ffi.KeyValue, ffi.Result) {
	var kv ffi.KeyValue
	r := sdbIteratorNext(iter, &kv)
	return kv, r
}

func (l *Library) IteratorSeek(iter ffi.Handle, key []byte) ffi.Result {
	r := sdbIteratorSeek(iter, slicePtr(key), uintptr(len(key)))
	runtime.KeepAlive(key)
	return r
}

func (l *Library) IteratorClose(iter ffi.Handle) ffi.Result { return sdbIteratorClose(iter) }

func (l *Library) FreeResult(r ffi.Result) {
	sdbFreeResult(uintptr(uint32(r.Code)), r.Message)
}

func (l *Library) FreeValue(v ffi.Value) {
	if v.Data == 0 {
		return
	}
	sdbFreeValue(v.Data, v.Len)
}

// FreeString releases a settings document, which the engine allocates with
// the C allocator.
func (l *Library) FreeString(s uintptr) {
	if s == 0 {
		return
	}
	cFree(s)
}

func (l *Library) Load(v ffi.Value) []byte {
	if v.Data == 0 || v.Len == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(pointer(v.Data)), int(v.Len))
}

func (l *Library) LoadString(s uintptr) string {
	if s == 0 {
		return ""
	}
	n := cStringLen(s)
	return string(unsafe.Slice((*byte)(pointer(s)), n))
}
