package cache

import "github.com/KOMKZ/go-yogan-boot/errcode"

// ModuleCode cache module code
const ModuleCode = 70

const (
	CodeCacheMiss = iota + 1
	CodeSerialize
	CodeDeserialize
	CodeStoreGet
	CodeStoreSet
	CodeStoreDelete
	CodeConfigInvalid
	CodeWarmup
)

var (
	// ErrCacheMiss the key is absent or expired
	ErrCacheMiss = errcode.Register(errcode.New(ModuleCode, CodeCacheMiss,
		"cache", "error.cache.miss", "cache miss"))

	// ErrSerialize value could not be encoded
	ErrSerialize = errcode.Register(errcode.New(ModuleCode, CodeSerialize,
		"cache", "error.cache.serialize", "serialize failed"))

	// ErrDeserialize stored bytes could not be decoded
	ErrDeserialize = errcode.Register(errcode.New(ModuleCode, CodeDeserialize,
		"cache", "error.cache.deserialize", "deserialize failed"))

	// ErrStoreGet backend read failed
	ErrStoreGet = errcode.Register(errcode.New(ModuleCode, CodeStoreGet,
		"cache", "error.cache.store_get", "store get failed"))

	// ErrStoreSet backend write failed
	ErrStoreSet = errcode.Register(errcode.New(ModuleCode, CodeStoreSet,
		"cache", "error.cache.store_set", "store set failed"))

	// ErrStoreDelete backend delete failed
	ErrStoreDelete = errcode.Register(errcode.New(ModuleCode, CodeStoreDelete,
		"cache", "error.cache.store_delete", "store delete failed"))

	// ErrConfigInvalid invalid cache section
	ErrConfigInvalid = errcode.Register(errcode.New(ModuleCode, CodeConfigInvalid,
		"cache", "error.cache.config_invalid", "invalid cache config"))

	// ErrWarmup a warmer failed during asynchronous start
	ErrWarmup = errcode.Register(errcode.New(ModuleCode, CodeWarmup,
		"cache", "error.cache.warmup", "cache warm-up failed"))
)
