// Package storage defines the contracts shared by the storage clients of
// sentinel-mongo.
//
// A storage client is anything that can report its name, answer a ping and
// release its connections:
//
//	var c storage.Client = mongoClient
//	if err := c.Ping(ctx); err != nil {
//	    logger.Warnw("storage unavailable", "storage", c.Name(), "error", err)
//	}
//	defer c.Close()
//
// # Errors
//
// Failures are reported as *StorageError values carrying a machine readable
// code. Two errors match under errors.Is when their codes are equal, so the
// package level sentinels can be used for comparison even after they have
// been enriched with a message, a cause or context:
//
//	err := storage.ErrInvalidConfig.WithCause(parseErr)
//	errors.Is(err, storage.ErrInvalidConfig) // true
//	errors.Is(err, parseErr)                 // true
package storage
