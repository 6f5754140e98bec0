package ffi

// Boundary is the complete set of calls the client makes into the engine.
//
// Optional string arguments use "" for absent (NULL on the native side);
// optional records use nil. Returned Value buffers and Result messages are
// engine-owned and must be released exactly once with FreeValue / FreeResult.
type Boundary interface {
	InitLogging(level string) Result

	// Settings documents are returned as engine-owned NUL-terminated JSON strings
	// (zero on failure). Release them with FreeString.
	SettingsDefault() uintptr
	SettingsFromFile(path string) uintptr
	SettingsFromEnv(prefix string) uintptr
	SettingsLoad() uintptr

	Open(path, url, envFile string) HandleResult
	Close(db Handle) Result
	Flush(db Handle) Result
	Metrics(db Handle) (Value, Result)

	Put(db Handle, key, value []byte, put *PutOptions, write *WriteOptions) Result
	Delete(db Handle, key []byte, write *WriteOptions) Result
	Get(db Handle, key []byte, read *ReadOptions) (Value, Result)
	Scan(db Handle, start, end []byte, opts *ScanOptions) (Handle, Result)
	ScanPrefix(db Handle, prefix []byte, opts *ScanOptions) (Handle, Result)

	WriteBatchNew() (Handle, Result)
	WriteBatchPut(batch Handle, key, value []byte) Result
	WriteBatchPutWithOptions(batch Handle, key, value []byte, opts *PutOptions) Result
	WriteBatchDelete(batch Handle, key []byte) Result
	WriteBatchWrite(db, batch Handle, opts *WriteOptions) Result
	WriteBatchClose(batch Handle) Result

	BuilderNew(path, url, envFile string) HandleResult
	BuilderWithSettings(builder Handle, settingsJSON string) Result
	BuilderWithSstBlockSize(builder Handle, size uint8) Result
	// BuilderBuild consumes the builder whatever the outcome.
	BuilderBuild(builder Handle) HandleResult
	BuilderFree(builder Handle)

	ReaderOpen(path, url, envFile, checkpointID string, opts *ReaderOptions) HandleResult
	ReaderGet(reader Handle, key []byte, read *ReadOptions) (Value, Result)
	ReaderScan(reader Handle, start, end []byte, opts *ScanOptions) (Handle, Result)
	ReaderScanPrefix(reader Handle, prefix []byte, opts *ScanOptions) (Handle, Result)
	ReaderClose(reader Handle) Result

	IteratorNext(iter Handle) (KeyValue, Result)
	IteratorSeek(iter Handle, key []byte) Result
	IteratorClose(iter Handle) Result

	FreeResult(r Result)
	FreeValue(v Value)
	FreeString(s uintptr)

	// Load returns a view over an engine-owned buffer. The view is only valid
	// until the buffer is freed; callers copy before freeing.
	Load(v Value) []byte
	// LoadString copies an engine-owned NUL-terminated string.
	LoadString(s uintptr) string
}
