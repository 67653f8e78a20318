// Package mongodb provides the managed MongoDB client of sentinel-mongo.
//
// A Client is built from a Definition (a name used in diagnostics and a
// standard connection URL) and an Options value that tunes the driver:
//
//	def := mongodb.Definition{Name: "test", URL: "mongodb://localhost"}
//	client, err := mongodb.NewWithContext(ctx, def, mongodb.NewOptions())
//	if err != nil {
//	    // errors.Is(err, storage.ErrInvalidConfig)
//	    return err
//	}
//	defer client.Close()
//
// The client implements storage.Client. Connection pooling, wire protocol
// and retries are left to the official driver.
//
// Applications normally do not build clients directly: the pkg/mongodb
// extension registers a Factory with the datasource manager, which builds
// the client on first use and closes it at shutdown.
package mongodb
